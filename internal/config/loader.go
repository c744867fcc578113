// Package config provides configuration loading and validation.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/coral-mesh/futurescope/internal/constants"
	"github.com/coral-mesh/futurescope/internal/safe"
)

// Loader locates and loads the configuration file.
type Loader struct {
	baseDir string
}

// NewLoader creates a config loader. The config directory is resolved in
// this order:
//  1. FUTURESCOPE_CONFIG environment variable (used as is).
//  2. ~/.futurescope.
//  3. A temp directory fallback when no home directory exists, so Load still
//     returns defaults with env overrides applied.
func NewLoader() *Loader {
	if dir := os.Getenv(constants.ConfigDirEnv); dir != "" {
		return &Loader{baseDir: dir}
	}
	if home, err := os.UserHomeDir(); err == nil {
		return &Loader{baseDir: filepath.Join(home, constants.DefaultDir)}
	}
	return &Loader{baseDir: filepath.Join(os.TempDir(), "futurescope-fallback")}
}

// NewLoaderAt creates a loader rooted at dir.
func NewLoaderAt(dir string) *Loader {
	return &Loader{baseDir: dir}
}

// Path returns the default config file path.
func (l *Loader) Path() string {
	return filepath.Join(l.baseDir, constants.ConfigFile)
}

// Load builds the configuration in layers: defaults, then the config file,
// then environment variables. An explicit path must exist; the default path
// may be missing. The result is not validated.
func (l *Loader) Load(explicitPath string) (*Config, error) {
	cfg := Default()

	path, required := l.Path(), false
	if explicitPath != "" {
		path, required = explicitPath, true
	}

	if err := mergeFile(cfg, path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || required {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
	}

	if err := LoadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}
	return cfg, nil
}

// mergeFile decodes the YAML file at path over cfg. Unknown keys are errors.
func mergeFile(cfg *Config, path string) error {
	data, err := safe.ReadFile(path, &safe.ReadOptions{
		MaxSize:       constants.MaxConfigSize,
		AllowSymlinks: true,
	})
	if err != nil {
		return err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

// Marshal renders cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return buf.Bytes(), nil
}
