// Package commands implements the sqlgate subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/sqlgate/internal/cli/config"
	"github.com/leapstack-labs/sqlgate/internal/state"
	"github.com/leapstack-labs/sqlgate/pkg/adapter"
	"github.com/leapstack-labs/sqlgate/pkg/validate"
	"github.com/spf13/cobra"
)

// ConfigKey is the context key for the loaded config.
type ConfigKey struct{}

// LoggerKey is the context key for the CLI logger.
type LoggerKey struct{}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(ConfigKey{}).(*config.Config); ok {
		return c
	}
	return &config.Config{
		StatePath:    config.DefaultStateFile,
		ProbeTimeout: config.DefaultProbeTimeout,
		Listen:       config.DefaultListenAddr,
		Output:       config.DefaultOutput,
	}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(LoggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

// gate bundles everything a validating command needs: the connected
// adapter, the validator over it, and the history store.
type gate struct {
	SourceName string
	Conn       adapter.Adapter
	Validator  *validate.Validator
	Store      *state.Store
	Logger     *slog.Logger
}

// openGate connects to the selected source, reflects its schema, and opens
// the history store. Callers must Close the returned gate.
func openGate(cmd *cobra.Command) (*gate, error) {
	ctx := cmd.Context()
	cfg := GetConfig(ctx)
	logger := GetLogger(ctx)

	sourceFlag, _ := cmd.Root().PersistentFlags().GetString("source")
	name, sc, err := cfg.Source(sourceFlag)
	if err != nil {
		return nil, err
	}

	conn, err := adapter.New(sc.AdapterConfig(), logger)
	if err != nil {
		return nil, err
	}
	if err := conn.Connect(ctx, sc.AdapterConfig()); err != nil {
		return nil, fmt.Errorf("failed to connect to source %q: %w", name, err)
	}

	validator, err := validate.New(ctx, conn,
		validate.WithLogger(logger),
		validate.WithProbeTimeout(cfg.ProbeTimeout),
	)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to build validator for source %q: %w", name, err)
	}

	store, err := openHistoryStore(cfg, logger)
	if err != nil {
		// History is best-effort; validation proceeds without it.
		logger.Warn("validation history unavailable", slog.String("error", err.Error()))
	}

	return &gate{
		SourceName: name,
		Conn:       conn,
		Validator:  validator,
		Store:      store,
		Logger:     logger,
	}, nil
}

// Close releases the gate's connections.
func (g *gate) Close() {
	if g.Store != nil {
		_ = g.Store.Close()
	}
	if g.Conn != nil {
		_ = g.Conn.Close()
	}
}

// openHistoryStore opens the state database, creating its directory when
// needed.
func openHistoryStore(cfg *config.Config, logger *slog.Logger) (*state.Store, error) {
	path := cfg.StatePath
	if path == "" {
		path = config.DefaultStateFile
	}
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create state directory: %w", err)
			}
		}
	}
	return state.Open(path, logger)
}
