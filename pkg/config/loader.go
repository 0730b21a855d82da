package config

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var defaultEnvLoaded sync.Once

// LoadEnv loads variables from the given .env files into the process
// environment. Without arguments it loads ./.env. Variables that are already
// set are not overridden.
func LoadEnv(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil {
		return errors.Join(ErrLoadingEnvFile, err)
	}
	return nil
}

// Load parses environment variables into v based on its `env` struct tags.
// The default .env file is loaded once per process before the first parse;
// a missing file is not an error.
//
// Example:
//
//	type RelayConfig struct {
//		MaxInFlightMsgs int    `env:"RELAY_MAX_IN_FLIGHT_MSGS" envDefault:"1024"`
//		Motd            string `env:"RELAY_MOTD"`
//	}
//
//	var cfg RelayConfig
//	if err := config.Load(&cfg); err != nil {
//		// Handle error
//	}
func Load[T any](v *T) error {
	defaultEnvLoaded.Do(func() {
		_ = godotenv.Load()
	})
	if v == nil {
		return ErrNilPointer
	}
	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// LoadFile decodes the YAML file at path into v. Fields absent from the file
// keep the values v already holds, so a file can be layered over env defaults.
func LoadFile[T any](path string, v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Join(ErrReadingFile, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return errors.Join(ErrParsingFile, fmt.Errorf("%s: %w", path, err))
	}
	return nil
}
