package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds defaults taken from the environment. Command-line flags
// override them.
type Env struct {
	Database string `env:"IPR_DB"`
	Spin     string `env:"IPR_SPIN" envDefault:"up"`
	Verbose  bool   `env:"IPR_VERBOSE"`
}

// LoadEnv parses Env from the process environment.
func LoadEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}
