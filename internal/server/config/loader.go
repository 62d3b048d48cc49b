package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering sources, low to high precedence:
//  1. defaults (LoadDefaults)
//  2. .env file in the working directory, if present
//  3. YAML file named by RJ_CONFIG, if set
//  4. environment variables with the RJ_ prefix (RJ_ADDR, RJ_DATABASE_DSN, ...)
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	// .env only seeds the process environment; the env provider below picks
	// the values up. Missing file is not an error.
	_ = godotenv.Load()

	k := koanf.New(".")

	if path := os.Getenv("RJ_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	envProvider := env.Provider("RJ_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "rj_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return errors.New("addr must not be empty")
	}
	if c.DatabaseDSN == "" {
		return errors.New("database_dsn must not be empty")
	}
	if c.SecretKey == "" {
		return errors.New("secret_key must not be empty")
	}
	return nil
}
