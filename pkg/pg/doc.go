// Package pg provides utilities for interacting with PostgreSQL using the
// pgx/v5 driver: connection pooling with retry, embedded goose migrations,
// a health check and common error helpers.
//
// Config fields are populated from environment variables via
// github.com/caarlos0/env. Connect opens a *pgxpool.Pool and retries until
// the database is reachable; Migrate applies embedded migrations before the
// service starts serving traffic.
package pg
