// Package helpers holds plumbing shared by futurescope subcommands: config
// and logger setup, store access, flags and listing formatters.
package helpers

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/coral-mesh/futurescope/internal/config"
	"github.com/coral-mesh/futurescope/internal/logging"
	"github.com/coral-mesh/futurescope/internal/store"
)

// LoadConfig loads the layered configuration honoring the global --config
// and --log-level flags. Callers apply their own flag overrides and then
// validate.
func LoadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString(FlagConfig)

	cfg, err := config.NewLoader().Load(path)
	if err != nil {
		return nil, err
	}

	if f := cmd.Flags().Lookup(FlagLogLevel); f != nil && f.Changed {
		cfg.Logging.Level = f.Value.String()
	}
	return cfg, nil
}

// NewLogger builds the command logger. Logs go to the command's stderr.
func NewLogger(cmd *cobra.Command, cfg *config.Config) zerolog.Logger {
	return logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Pretty: cfg.Logging.Pretty,
		Output: cmd.ErrOrStderr(),
	})
}

// OpenStore opens the configured database read-only. dbOverride, when set,
// replaces storage.database.
func OpenStore(cmd *cobra.Command, dbOverride string) (*store.Store, zerolog.Logger, error) {
	cfg, err := LoadConfig(cmd)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if dbOverride != "" {
		cfg.Storage.Database = dbOverride
	}
	logger := NewLogger(cmd, cfg)

	if !cfg.StorageEnabled() {
		return nil, logger, fmt.Errorf("no database configured: set storage.database or pass --db")
	}

	st, err := store.OpenReadOnly(cfg.Storage.Database, logger)
	if err != nil {
		return nil, logger, err
	}
	return st, logger, nil
}

// ResolveRun returns runID, or the latest stored run when it is empty.
func ResolveRun(ctx context.Context, st *store.Store, runID string) (string, error) {
	if runID != "" {
		return runID, nil
	}
	latest, err := st.LatestRun(ctx)
	if errors.Is(err, store.ErrNoRuns) {
		return "", fmt.Errorf("no runs stored yet: run 'futurescope analyze' with a database first")
	}
	return latest, err
}
