// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file holds one secret: the filename is the key name and the trimmed
// contents are the value. Secrets fill in configuration values that were
// left empty, so config files can be committed without keys.
package secrets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/pharmasage/pkg/types"
)

// Key file names understood by Apply.
const (
	PerplexityAPIKey = "perplexity-api-key"
	GeminiAPIKey     = "gemini-api-key"
	RedisPassword    = "redis-password"
)

// Secrets maps key names to values.
type Secrets map[string]string

// Warnings receives one line per secret file that could not be read.
var Warnings io.Writer = os.Stderr

// Load reads all files in dir. A missing directory is not an error and yields
// empty Secrets. Dotfiles, subdirectories and empty files are skipped;
// unreadable files are reported to Warnings and skipped.
func Load(dir string) (Secrets, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(Secrets)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(Warnings, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Or returns value when it is set, otherwise the secret named key.
func (s Secrets) Or(value, key string) string {
	if value != "" {
		return value
	}
	return s[key]
}

// Apply fills empty credentials in cfg from s. The research API key is taken
// from the file matching the configured provider.
func (s Secrets) Apply(cfg *types.Config) {
	switch cfg.Research.Provider {
	case types.ProviderGemini:
		cfg.Research.APIKey = s.Or(cfg.Research.APIKey, GeminiAPIKey)
	default:
		cfg.Research.APIKey = s.Or(cfg.Research.APIKey, PerplexityAPIKey)
	}
	cfg.Cache.RedisPassword = s.Or(cfg.Cache.RedisPassword, RedisPassword)
}
