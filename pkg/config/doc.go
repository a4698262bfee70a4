// Package config loads application configuration from environment variables
// into tagged structs.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11: the
// default .env file is loaded once per process (when present), then env.Parse
// populates any struct annotated with `env` tags. Each configuration type is
// parsed at most once and cached for the lifetime of the process.
//
// Usage:
//
//	type PostgresConfig struct {
//	    ConnectionString string `env:"POSTGRES_URL,required"`
//	}
//
//	var cfg PostgresConfig
//	if err := config.Load(&cfg); err != nil {
//	    log.Fatal(err)
//	}
//
// Use Reset in tests that mutate the process environment between loads.
package config
