package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

// Storage backends selectable with TTB_STORE.
const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
)

// Env holds settings read from the environment.
type Env struct {
	Home      string `envconfig:"TTB_HOME"`
	Store     string `envconfig:"TTB_STORE" default:"json"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"warn"`
}

// LoadEnv reads Env from environment variables. Home defaults to ~/.ttb.
func LoadEnv() (Env, error) {
	var env Env
	if err := envconfig.Process("", &env); err != nil {
		return env, fmt.Errorf("reading environment: %w", err)
	}
	if env.Home == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return env, fmt.Errorf("cannot determine home directory: %w", err)
		}
		env.Home = filepath.Join(home, ".ttb")
	}
	switch env.Store {
	case StoreJSON, StoreSQLite:
	default:
		return env, fmt.Errorf("TTB_STORE must be %q or %q, got %q", StoreJSON, StoreSQLite, env.Store)
	}
	return env, nil
}
