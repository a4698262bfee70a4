// Package redis provides a small wrapper around go-redis/v9: environment
// driven configuration, connection establishment with retry and a health
// check closure for readiness endpoints.
package redis
