// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/pharmasage/internal/export"
	"github.com/pdiddy/pharmasage/internal/logging"
	"github.com/pdiddy/pharmasage/internal/server"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Serve starts the PharmaSage REST API. The catalog database is created
on first start and seeded with sample data when catalog.seed is set.

Changes to the log level in the config file take effect without a restart.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		viper.Set("server.port", port)
	}

	cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return err
	}

	logger, level, err := logging.Build(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	watchLogLevel(viper.GetViper(), level, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openCatalog(ctx, cfg.Catalog, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer store.Close()

	researcher, err := newResearchService(cfg, store, prometheus.DefaultRegisterer, logger)
	if err != nil {
		return err
	}

	exporter, err := export.New(cfg.Export)
	if err != nil {
		return err
	}

	srv := server.NewServer(store, researcher, exporter, prometheus.DefaultGatherer, cfg.Server, logger)

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

// watchLogLevel applies log.level changes from the config file at runtime.
// Other settings need a restart.
func watchLogLevel(v *viper.Viper, level zap.AtomicLevel, logger *zap.Logger) {
	if v.ConfigFileUsed() == "" {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		lvl, err := logging.ParseLevel(v.GetString("log.level"))
		if err != nil {
			logger.Warn("ignoring config change", zap.String("file", e.Name), zap.Error(err))
			return
		}
		if lvl != level.Level() {
			level.SetLevel(lvl)
			logger.Info("log level changed", zap.String("level", lvl.String()))
		}
	})
	v.WatchConfig()
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}
