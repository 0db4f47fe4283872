package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// maxUpwardSearchLevels limits how far up the directory tree to search for
// config files.
const maxUpwardSearchLevels = 10

var configFileNames = []string{"sqlgate.yaml", "sqlgate.yml"}

// Package-level koanf instance and config file tracking.
var (
	k              = koanf.New(".")
	configFileUsed string
)

// configExistsIn checks if a sqlgate config file exists in the directory,
// returning its path.
func configExistsIn(dir string) string {
	for _, name := range configFileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// findConfigFile searches upward from the working directory for a config
// file. Returns empty string if none is found.
func findConfigFile() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if found := configExistsIn(dir); found != "" {
			return found
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
}

// LoadConfig loads configuration from file, environment variables, and
// flags. Precedence (highest to lowest): flags > env vars > config file >
// defaults.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k = koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"state_path":    DefaultStateFile,
		"probe_timeout": DefaultProbeTimeout,
		"listen":        DefaultListenAddr,
		"output":        DefaultOutput,
		"verbose":       false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file: explicit path, or upward search from CWD
	if cfgFile == "" {
		cfgFile = findConfigFile()
	}
	configFileUsed = cfgFile
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Environment variables (SQLGATE_ prefix)
	// Transform: SQLGATE_STATE_PATH -> state_path
	if err := k.Load(env.Provider("SQLGATE_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "SQLGATE_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			// --state maps onto the state_path config key
			if key == "state" {
				return "state_path", posflag.FlagVal(flags, f)
			}
			// --source selects, it doesn't configure
			if key == "source" {
				return "default_source", posflag.FlagVal(flags, f)
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// 6. Resolve project root and relative paths
	cfg.ProjectRoot = projectRootFor(configFileUsed)
	cfg.StatePath = resolvePathRelativeTo(cfg.StatePath, cfg.ProjectRoot)
	for _, sc := range cfg.Sources {
		expandSourceEnvVars(sc)
		if sc.Type == "sqlite" || sc.Type == "duckdb" {
			if sc.Path != "" && sc.Path != ":memory:" {
				sc.Path = resolvePathRelativeTo(sc.Path, cfg.ProjectRoot)
			}
		}
	}

	if err := ValidateSources(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// projectRootFor returns the directory of the config file, or the working
// directory when no config file was found.
func projectRootFor(cfgFile string) string {
	if cfgFile != "" {
		if abs, err := filepath.Abs(cfgFile); err == nil {
			return filepath.Dir(abs)
		}
	}
	cwd, _ := os.Getwd()
	if cwd == "" {
		cwd = "."
	}
	return cwd
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not
// absolute. Returns the path unchanged if it's empty or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// expandEnvVars expands ${VAR} patterns in a string with environment
// variable values.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})
}

// expandSourceEnvVars expands environment variables in sensitive source
// fields.
func expandSourceEnvVars(sc *SourceConfig) {
	if sc == nil {
		return
	}
	sc.Host = expandEnvVars(sc.Host)
	sc.Database = expandEnvVars(sc.Database)
	sc.Username = expandEnvVars(sc.Username)
	sc.Password = expandEnvVars(sc.Password)
}
