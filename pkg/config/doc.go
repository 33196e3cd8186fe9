// Package config loads typed configuration structs from environment
// variables.
//
// It wraps `github.com/joho/godotenv` and `github.com/caarlos0/env/v11`: the
// default .env file (if any) is loaded once per process, then the environment
// is parsed into any annotated struct.
//
//	type LogConfig struct {
//	    Level  string `env:"LOG_LEVEL" envDefault:"info"`
//	    Format string `env:"LOG_FORMAT" envDefault:"json"`
//	}
//
//	var cfg LogConfig
//	config.MustLoad(&cfg)
//
// MustLoad panics on failure for configuration the process cannot run
// without.
package config
