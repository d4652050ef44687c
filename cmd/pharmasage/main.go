// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pharmasage CLI: the API server,
// deep research from the command line, catalog maintenance, and exports.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pharmasage/internal/secrets"
	"github.com/pdiddy/pharmasage/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets secrets.Secrets

// rootCmd is the base command for the pharmasage CLI.
var rootCmd = &cobra.Command{
	Use:   "pharmasage",
	Short: "Pharmaceutical B2B intelligence backend",
	Long: `pharmasage serves the PharmaSage REST API: product and company search,
prospect matching, contact tracking, exports, and AI-assisted deep research
that turns an LLM's markdown report into structured buyer records.

Subcommands run the server, research a company from the command line, parse
a saved research report, seed the catalog, and export data.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pharmasage.yaml or ~/.config/pharmasage/config.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets/", "directory of secret files (perplexity-api-key, gemini-api-key, redis-password)")
	rootCmd.PersistentFlags().String("data-dir", "", "catalog data directory (overrides catalog.data_dir)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (overrides log.level)")

	viper.BindPFlag("catalog.data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pharmasage")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pharmasage"))
		}
	}

	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers every setting so that PHARMASAGE_* environment
// variables reach nested keys during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetEnvPrefix("PHARMASAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.request_timeout", 10*time.Minute)
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000", "http://localhost:5173"})

	v.SetDefault("research.provider", string(types.ProviderPerplexity))
	v.SetDefault("research.model", "")
	v.SetDefault("research.api_key", "")
	v.SetDefault("research.max_retries", 3)
	v.SetDefault("research.timeout", 10*time.Minute)
	v.SetDefault("research.user_agent", "pharmasage/"+version)
	v.SetDefault("research.max_tokens", 0)
	v.SetDefault("research.use_mock", false)

	v.SetDefault("cache.backend", string(types.CacheMemory))
	v.SetDefault("cache.ttl", 24*time.Hour)
	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.prefix", "")

	v.SetDefault("catalog.data_dir", "data")
	v.SetDefault("catalog.max_results", 10)
	v.SetDefault("catalog.seed", true)

	v.SetDefault("export.dir", filepath.Join("data", "exports"))

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("log.output_paths", []string{"stderr"})
}

// loadConfig decodes v into a Config and fills empty credentials from
// secrets.
func loadConfig(v *viper.Viper, s secrets.Secrets) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	s.Apply(&cfg)
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
