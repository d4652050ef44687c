// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pharmasage/internal/research"
	"github.com/pdiddy/pharmasage/internal/secrets"
	"github.com/pdiddy/pharmasage/pkg/types"
)

func TestLoadConfigDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg, err := loadConfig(v, nil)
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 10*time.Minute, cfg.Server.RequestTimeout)
	assert.Equal(t, types.ProviderPerplexity, cfg.Research.Provider)
	assert.Equal(t, 3, cfg.Research.MaxRetries)
	assert.Equal(t, types.CacheMemory, cfg.Cache.Backend)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "data", cfg.Catalog.DataDir)
	assert.True(t, cfg.Catalog.Seed)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, []string{"stderr"}, cfg.Log.OutputPaths)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("PHARMASAGE_SERVER_PORT", "9100")
	t.Setenv("PHARMASAGE_RESEARCH_PROVIDER", "gemini")
	t.Setenv("PHARMASAGE_RESEARCH_USE_MOCK", "true")
	t.Setenv("PHARMASAGE_CACHE_TTL", "90m")

	v := viper.New()
	setDefaults(v)

	cfg, err := loadConfig(v, nil)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, types.ProviderGemini, cfg.Research.Provider)
	assert.True(t, cfg.Research.UseMock)
	assert.Equal(t, 90*time.Minute, cfg.Cache.TTL)
}

func TestLoadConfigSecrets(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		apiKey   string
		want     string
	}{
		{"perplexity key from secrets", "perplexity", "", "pplx-secret"},
		{"gemini key from secrets", "gemini", "", "gemini-secret"},
		{"configured key wins", "perplexity", "from-config", "from-config"},
	}

	s := secrets.Secrets{
		secrets.PerplexityAPIKey: "pplx-secret",
		secrets.GeminiAPIKey:     "gemini-secret",
		secrets.RedisPassword:    "hunter2",
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			setDefaults(v)
			v.Set("research.provider", tt.provider)
			v.Set("research.api_key", tt.apiKey)

			cfg, err := loadConfig(v, s)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Research.APIKey)
			assert.Equal(t, "hunter2", cfg.Cache.RedisPassword)
		})
	}
}

func TestNewBackend(t *testing.T) {
	tests := []struct {
		name string
		cfg  types.ResearchConfig
		want string
	}{
		{"default is perplexity", types.ResearchConfig{}, "perplexity"},
		{"gemini", types.ResearchConfig{Provider: types.ProviderGemini}, "gemini"},
		{"mock provider", types.ResearchConfig{Provider: types.ProviderMock}, "mock"},
		{"use_mock overrides provider", types.ResearchConfig{Provider: types.ProviderGemini, UseMock: true}, "mock"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, newBackend(tt.cfg).Name())
		})
	}
}

func TestOpenCatalogSeedsOnce(t *testing.T) {
	cfg := types.CatalogConfig{DataDir: t.TempDir(), Seed: true}
	ctx := context.Background()

	var out bytes.Buffer
	store, err := openCatalog(ctx, cfg, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "seeded")
	require.NoError(t, store.Close())

	out.Reset()
	store, err = openCatalog(ctx, cfg, &out)
	require.NoError(t, err)
	defer store.Close()
	assert.Empty(t, out.String())
}

func TestWriteOutput(t *testing.T) {
	result := research.Compose("## Overview\n\nMakes generics.\n", "Acme", "https://acme.example")

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeOutput(&buf, "json", result))
		assert.Contains(t, buf.String(), `"name": "Acme"`)
		assert.Contains(t, buf.String(), `"overview": "Makes generics."`)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeOutput(&buf, "yaml", result))
		assert.Contains(t, buf.String(), "source_company:")
		assert.Contains(t, buf.String(), "overview: Makes generics.")
	})

	t.Run("unknown", func(t *testing.T) {
		err := writeOutput(&bytes.Buffer{}, "xml", result)
		assert.Error(t, err)
	})
}
