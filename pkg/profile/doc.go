// Package profile owns the durable per-user billing and usage record and the
// Store contract it lives behind.
//
// The profile is mutated from two independent call paths (interactive usage
// consumption and asynchronous billing webhooks), so the Store interface is
// built around single atomic operations: counter increments are native
// atomic adds, the monthly rollover is a compare-and-set on the reset
// timestamp, and billing changes are conditional on an ordering token. The
// core never caches a profile copy it later writes back.
//
// Three implementations ship with the package: an in-memory store for tests
// and development, a Postgres store (pgx, single-statement updates, embedded
// goose migrations) and a Redis store (hash per profile, HINCRBY counters,
// Lua-guarded conditional updates).
package profile
