// Package entitlement mounts the consumer-facing entitlements API and the
// billing webhook ingest boundary as a chi router.
//
// Routes:
//
//	GET  /{userID}          current entitlements for the user
//	POST /{userID}/consume  consume quota, 200 allowed or 402 denied
//	POST /webhooks/billing  billing processor events, always acknowledged
//
// The webhook route assumes signature verification happened upstream and
// responds 200 unconditionally so the processor does not retry events the
// reconciler has already decided to skip.
package entitlement
