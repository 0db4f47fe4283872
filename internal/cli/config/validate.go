package config

import (
	"fmt"

	"github.com/leapstack-labs/sqlgate/pkg/adapter"
)

// ValidateSources checks every configured source for a usable adapter type
// and the connection fields that type requires.
func ValidateSources(cfg *Config) error {
	for name, sc := range cfg.Sources {
		if err := validateSource(name, sc); err != nil {
			return err
		}
	}
	if cfg.DefaultSource != "" {
		if _, ok := cfg.Sources[cfg.DefaultSource]; !ok {
			return fmt.Errorf("default_source %q is not a configured source", cfg.DefaultSource)
		}
	}
	return nil
}

func validateSource(name string, sc *SourceConfig) error {
	if sc == nil {
		return fmt.Errorf("source %q: empty configuration", name)
	}
	if sc.Type == "" {
		return fmt.Errorf("source %q: type is required", name)
	}
	if !adapter.IsRegistered(sc.Type) {
		return fmt.Errorf("source %q: %w", name, &adapter.UnknownAdapterError{
			Type:      sc.Type,
			Available: adapter.List(),
		})
	}

	switch sc.Type {
	case "postgres":
		if sc.Database == "" {
			return fmt.Errorf("source %q: database is required for postgres", name)
		}
	case "sqlite", "duckdb":
		// Path defaults to Database, then to :memory:; nothing required.
	}
	return nil
}
