// Package config loads configuration from the environment and from YAML files.
//
// It wraps `github.com/joho/godotenv` (.env files), `github.com/caarlos0/env/v11`
// (struct tags) and `gopkg.in/yaml.v3` (config files):
//
//   - LoadEnv reads one or more .env files into the process environment
//     (./.env when called without arguments).
//   - Load parses the environment into a struct using `env` tags.
//     The default ./.env is tried once, silently, before the first parse.
//   - LoadFile decodes a YAML file over an already populated struct, so the
//     file only needs to mention what it changes.
//
// # Usage
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//
//	if cfg.ConfigFile != "" {
//	    if err := config.LoadFile(cfg.ConfigFile, &cfg.Relay); err != nil {
//	        return err
//	    }
//	}
//
// # Error Handling
//
// Sentinel errors can be compared with errors.Is: ErrParsingConfig,
// ErrLoadingEnvFile, ErrReadingFile, ErrParsingFile and ErrNilPointer. The
// underlying library error is joined to the sentinel.
package config
