package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds runtime settings that may be supplied through the process
// environment. Command-line flags take precedence over these values.
type Env struct {
	ConfigPath string `env:"HANDVOX_CONFIG" envDefault:"config/tuning.defaults.json"`
	LogDir     string `env:"HANDVOX_LOG_DIR"`
	SessionDB  string `env:"HANDVOX_SESSION_DB"`
	Headless   bool   `env:"HANDVOX_HEADLESS" envDefault:"false"`
}

// ParseEnv reads Env from the process environment.
func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse environment: %w", err)
	}
	return e, nil
}
