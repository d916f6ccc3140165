// Package config loads hackbright settings from defaults, an optional YAML
// file, HACKBRIGHT_* environment variables and command-line flags.
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/andrejsstepanovs/hackbright/db"
	"github.com/andrejsstepanovs/hackbright/shell"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	DefaultConfigFile = "hackbright.yaml"
	DefaultDriver     = db.DriverPostgres
	DefaultDSN        = "postgresql:///hackbright"
	DefaultPrompt     = "HBA Database> "
	DefaultOutput     = string(shell.FormatText)

	envPrefix = "HACKBRIGHT_"
)

// Flags whose names differ from their config key.
var flagKeys = map[string]string{
	"driver":       "database.driver",
	"dsn":          "database.dsn",
	"history-file": "history_file",
}

type DatabaseConfig struct {
	Driver string `koanf:"driver"`
	DSN    string `koanf:"dsn"`
}

type Config struct {
	Database    DatabaseConfig `koanf:"database"`
	Output      string         `koanf:"output"`
	Prompt      string         `koanf:"prompt"`
	HistoryFile string         `koanf:"history_file"`
	Verbose     bool           `koanf:"verbose"`

	// FileUsed is the config file that was read, empty when none was found.
	FileUsed string `koanf:"-"`
}

// Load builds a Config. Precedence, highest first: flags that were set
// explicitly, environment variables, config file, defaults.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]any{
		"database.driver": DefaultDriver,
		"database.dsn":    DefaultDSN,
		"output":          DefaultOutput,
		"prompt":          DefaultPrompt,
		"history_file":    "",
		"verbose":         false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if cfgFile == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			cfgFile = DefaultConfigFile
		}
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	// HACKBRIGHT_DATABASE_DSN -> database.dsn, HACKBRIGHT_HISTORY_FILE -> history_file
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.FileUsed = cfgFile

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	if rest, ok := strings.CutPrefix(key, "database_"); ok {
		return "database." + rest
	}
	return key
}

// Validate checks values that cannot be defaulted sensibly.
func (c *Config) Validate() error {
	if drivers := db.Drivers(); !slices.Contains(drivers, c.Database.Driver) {
		return fmt.Errorf("unsupported database driver %q (want one of %s)", c.Database.Driver, strings.Join(drivers, ", "))
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("database dsn cannot be empty")
	}
	if formats := shell.Formats(); !slices.Contains(formats, shell.Format(c.Output)) {
		return fmt.Errorf("unsupported output format %q (want one of %v)", c.Output, formats)
	}
	return nil
}
