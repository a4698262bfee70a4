// Package usage enforces per-tier consumption quotas and performs the
// consumption accounting against the profile store.
//
// The Accountant evaluates a pure predicate over (effective tier, usage,
// limits) and, on success, dispatches the increment to the physical counter
// a static tier-indexed table selects: trial-lifetime counters while the
// trial is in force, monthly counters afterwards. Tiers a resource does not
// enumerate are denied by default.
//
// Monthly counters roll over lazily: before any monthly-scoped check the
// accountant compares now against the profile's reset boundary and performs
// a store-side compare-and-set rollover, so exactly one concurrent caller
// zeroes the counters per boundary.
//
// Failure policy is fail closed: a store timeout or a missing profile
// resolves to a denied decision, never an allowed one.
//
// Basic usage:
//
//	acct, err := usage.NewAccountant(plan.DefaultCatalog(), store)
//	decision, err := acct.CheckAndConsume(ctx, userID, plan.ResourceLeads, 5)
//	if !decision.Allowed {
//	    // decision.Reason and decision.Tier identify the gate for the
//	    // upgrade prompt
//	}
package usage
