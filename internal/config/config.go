// Package config loads server settings from, in increasing priority:
// defaults, a taskboard.{yaml,toml,json} file, a .env file, environment
// variables (TASKBOARD_*, plus the bare PORT, DATABASE_URL and WASM_DIR
// names), and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the server settings.
type Config struct {
	Addr        string `mapstructure:"addr"`
	DatabaseURL string `mapstructure:"database_url"`
	SeedFile    string `mapstructure:"seed_file"`
	WebDir      string `mapstructure:"web_dir"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
}

const (
	defaultPort   = "8080"
	defaultWebDir = "web"
)

// BindFlags registers the server flags on fs.
func BindFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (default ./taskboard.{yaml,toml,json})")
	fs.String("addr", "", "listen address (default :$PORT or :8080)")
	fs.String("database-url", "", "PostgreSQL URL for the activity log (in-memory when empty)")
	fs.String("seed-file", "", "YAML or JSON file with the initial tasks")
	fs.String("web-dir", "", "directory served at / (default ./web)")
	fs.String("log-level", "info", "debug|info|warn|error")
	fs.String("log-format", "text", "text|json|logfmt")
}

// Load resolves the configuration. fs must have been set up by BindFlags
// and parsed.
func Load(fs *pflag.FlagSet) (*Config, error) {
	// A missing .env is fine; a malformed one is not.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("TASKBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("database_url", "TASKBOARD_DATABASE_URL", "DATABASE_URL"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("web_dir", "TASKBOARD_WEB_DIR", "WASM_DIR"); err != nil {
		return nil, err
	}

	for _, name := range []string{"addr", "database-url", "seed-file", "web-dir", "log-level", "log-format"} {
		if err := v.BindPFlag(strings.ReplaceAll(name, "-", "_"), fs.Lookup(name)); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	if err := readConfigFile(v, fs); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Addr == "" {
		port := os.Getenv("PORT")
		if port == "" {
			port = defaultPort
		}
		cfg.Addr = ":" + port
	}
	if cfg.WebDir == "" {
		cfg.WebDir = defaultWebDir
	}
	return &cfg, nil
}

func readConfigFile(v *viper.Viper, fs *pflag.FlagSet) error {
	path, _ := fs.GetString("config")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName("taskboard")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}
