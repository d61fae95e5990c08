// Package config reads run defaults from the environment. Command-line flags
// take precedence over every value loaded here.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Env holds the environment-provided defaults of the run command.
type Env struct {
	Cutoff      string `env:"MOVIE_BUCKETS_CUTOFF"`
	Format      string `env:"MOVIE_BUCKETS_FORMAT" envDefault:"table"`
	Years       int    `env:"MOVIE_BUCKETS_YEARS" envDefault:"5"`
	Workers     int    `env:"MOVIE_BUCKETS_WORKERS" envDefault:"1"`
	MetricsFile string `env:"MOVIE_BUCKETS_METRICS_FILE"`
}

// Load reads Env from the process environment. When envFile is non-empty
// it is loaded first; variables already set in the environment win.
func Load(envFile string) (Env, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Env{}, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	var cfg Env
	if err := env.Parse(&cfg); err != nil {
		return Env{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
