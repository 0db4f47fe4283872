// Package config provides configuration management for the sqlgate CLI.
//
// Data sources are declared as a map keyed by source identifier and
// resolved at startup into explicit structs; nothing is loaded
// reflectively at runtime.
package config

import (
	"fmt"
	"time"

	"github.com/leapstack-labs/sqlgate/pkg/adapter"
)

// Defaults applied before any config file, env var, or flag.
const (
	DefaultStateFile    = ".sqlgate/state.db"
	DefaultOutput       = "text"
	DefaultListenAddr   = ":8745"
	DefaultProbeTimeout = 5 * time.Second
)

// SourceConfig holds the connection settings for one named data source.
type SourceConfig struct {
	Type     string            `koanf:"type"`
	Path     string            `koanf:"path"`
	Host     string            `koanf:"host"`
	Port     int               `koanf:"port"`
	Database string            `koanf:"database"`
	Username string            `koanf:"username"`
	Password string            `koanf:"password"`
	Schema   string            `koanf:"schema"`
	Options  map[string]string `koanf:"options"`
}

// AdapterConfig converts the source settings into the adapter contract's
// config struct.
func (sc *SourceConfig) AdapterConfig() adapter.Config {
	return adapter.Config{
		Type:     sc.Type,
		Path:     sc.Path,
		Host:     sc.Host,
		Port:     sc.Port,
		Database: sc.Database,
		Username: sc.Username,
		Password: sc.Password,
		Schema:   sc.Schema,
		Options:  sc.Options,
	}
}

// Config holds all CLI configuration options.
type Config struct {
	DefaultSource string                   `koanf:"default_source"`
	Sources       map[string]*SourceConfig `koanf:"sources"`
	StatePath     string                   `koanf:"state_path"`
	ProbeTimeout  time.Duration            `koanf:"probe_timeout"`
	Listen        string                   `koanf:"listen"`
	Verbose       bool                     `koanf:"verbose"`
	Output        string                   `koanf:"output"`

	// ProjectRoot is the directory the config file was found in (or the
	// working directory); relative paths resolve against it.
	ProjectRoot string `koanf:"-"`
}

// Source resolves a source by name, falling back to the configured
// default. An empty name with exactly one configured source selects that
// source.
func (c *Config) Source(name string) (string, *SourceConfig, error) {
	if name == "" {
		name = c.DefaultSource
	}
	if name == "" && len(c.Sources) == 1 {
		for only := range c.Sources {
			name = only
		}
	}
	if name == "" {
		return "", nil, fmt.Errorf("no source selected: set default_source in sqlgate.yaml or pass --source")
	}
	sc, ok := c.Sources[name]
	if !ok {
		return "", nil, fmt.Errorf("unknown source %q (configured sources: %v)", name, sourceNames(c.Sources))
	}
	return name, sc, nil
}

func sourceNames(sources map[string]*SourceConfig) []string {
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	return names
}
