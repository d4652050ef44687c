// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pharmasage/pkg/types"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  Secrets
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, PerplexityAPIKey, "  pplx-abc123  \n")
				writeFile(t, dir, GeminiAPIKey, "gm_xyz789")
				writeFile(t, dir, RedisPassword, "hunter2\n")
				return dir
			},
			want: Secrets{
				PerplexityAPIKey: "pplx-abc123",
				GeminiAPIKey:     "gm_xyz789",
				RedisPassword:    "hunter2",
			},
		},
		{
			name: "returns empty secrets for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: Secrets{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, PerplexityAPIKey, "valid-key")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: Secrets{PerplexityAPIKey: "valid-key"},
		},
		{
			name: "skips dotfiles and subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, GeminiAPIKey, "gm_real")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: Secrets{GeminiAPIKey: "gm_real"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced for root")
	}

	var warnings bytes.Buffer
	old := Warnings
	Warnings = &warnings
	defer func() { Warnings = old }()

	dir := t.TempDir()
	writeFile(t, dir, "good-key", "value123")

	badPath := filepath.Join(dir, "bad-key")
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	got, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "value123", got["good-key"])
	assert.NotContains(t, got, "bad-key")
	assert.Contains(t, warnings.String(), "bad-key")
}

func TestApply(t *testing.T) {
	s := Secrets{
		PerplexityAPIKey: "pplx-file",
		GeminiAPIKey:     "gm-file",
		RedisPassword:    "redis-file",
	}

	t.Run("fills empty values for the configured provider", func(t *testing.T) {
		var cfg types.Config
		cfg.Research.Provider = types.ProviderGemini
		s.Apply(&cfg)
		assert.Equal(t, "gm-file", cfg.Research.APIKey)
		assert.Equal(t, "redis-file", cfg.Cache.RedisPassword)
	})

	t.Run("defaults to the perplexity key", func(t *testing.T) {
		var cfg types.Config
		s.Apply(&cfg)
		assert.Equal(t, "pplx-file", cfg.Research.APIKey)
	})

	t.Run("keeps configured values", func(t *testing.T) {
		var cfg types.Config
		cfg.Research.Provider = types.ProviderPerplexity
		cfg.Research.APIKey = "pplx-config"
		cfg.Cache.RedisPassword = "redis-config"
		s.Apply(&cfg)
		assert.Equal(t, "pplx-config", cfg.Research.APIKey)
		assert.Equal(t, "redis-config", cfg.Cache.RedisPassword)
	})
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
