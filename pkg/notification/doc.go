// Package notification sends transactional email for billing lifecycle
// events. The only message the entitlement core sends today is the
// cancellation email; it is fire-and-forget, so callers log failures and
// move on.
//
// Two implementations are provided: a Postmark-backed sender for production
// and a log-only dev sender.
package notification
