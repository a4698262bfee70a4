// Package billing reconciles asynchronous billing processor events against
// persisted plan state.
//
// The processor delivers events at-least-once and not necessarily in order.
// The reconciler therefore treats reconciliation as a last-writer-wins merge
// guarded by the event's own creation timestamp: a change only applies when
// its OccurredAt is strictly newer than the last applied event for that
// customer, which makes replays idempotent and keeps a late "updated" event
// from resurrecting a cancelled subscription.
//
// Price identifiers are opaque; a static PriceMap (environment config or
// YAML file) resolves them to the starter/pro tiers with billing interval
// metadata. Unrecognized prices and unmatched customers are logged for
// operator visibility and skipped, never retried.
package billing
