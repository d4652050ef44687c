// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/pdiddy/pharmasage/internal/cache"
	"github.com/pdiddy/pharmasage/internal/catalog"
	"github.com/pdiddy/pharmasage/internal/research"
	"github.com/pdiddy/pharmasage/pkg/types"
)

// newBackend selects the research backend for cfg.
func newBackend(cfg types.ResearchConfig) research.Backend {
	if cfg.UseMock {
		return research.MockBackend{}
	}
	switch cfg.Provider {
	case types.ProviderMock:
		return research.MockBackend{}
	case types.ProviderGemini:
		return &research.GeminiBackend{APIKey: cfg.APIKey, Model: cfg.Model}
	default:
		return &research.PerplexityBackend{
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			MaxRetries: cfg.MaxRetries,
			UserAgent:  cfg.UserAgent,
			Client:     &http.Client{Timeout: cfg.Timeout},
		}
	}
}

// openCatalog opens the catalog store and loads the sample data into an
// empty database when cfg.Seed is set.
func openCatalog(ctx context.Context, cfg types.CatalogConfig, w io.Writer) (*catalog.Store, error) {
	store, err := catalog.NewStore(cfg)
	if err != nil {
		return nil, err
	}
	if !cfg.Seed {
		return store, nil
	}
	empty, err := store.IsEmpty(ctx)
	if err == nil && empty {
		err = store.Seed(ctx, w)
	}
	if err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// newResearchService wires the backend, cache, run store and metrics.
// runs may be nil; registerer may be nil to skip metrics.
func newResearchService(cfg types.Config, runs research.RunStore, registerer prometheus.Registerer, logger *zap.Logger) (*research.Service, error) {
	c, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, err
	}

	opts := []research.Option{
		research.WithCache(c),
		research.WithLogger(logger),
		research.WithMaxTokens(cfg.Research.MaxTokens),
	}
	if runs != nil {
		opts = append(opts, research.WithRunStore(runs))
	}
	if registerer != nil {
		metrics, err := research.NewMetrics(registerer)
		if err != nil {
			return nil, err
		}
		opts = append(opts, research.WithMetrics(metrics))
	}

	backend := newBackend(cfg.Research)
	logger.Info("research backend",
		zap.String("provider", backend.Name()),
		zap.Bool("configured", backend.Configured()),
		zap.String("cache", string(cfg.Cache.Backend)),
	)
	return research.NewService(backend, opts...), nil
}
