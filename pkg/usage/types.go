package usage

import (
	"github.com/leadflowhq/leadflow/pkg/plan"
	"github.com/leadflowhq/leadflow/pkg/profile"
)

// DenialReason identifies which gate a denied check hit, so the caller can
// render a targeted upgrade prompt instead of a generic error.
type DenialReason string

const (
	// ReasonLimitReached means the tier's quota for the resource is exhausted.
	ReasonLimitReached DenialReason = "limit_reached"
	// ReasonFeatureNotInPlan means the tier lacks the feature flag gating the resource.
	ReasonFeatureNotInPlan DenialReason = "feature_not_in_plan"
	// ReasonTierNotEligible means the tier has no allowance for the resource
	// at all (cancelled, expired trial). Deny is the default for any tier a
	// resource does not enumerate.
	ReasonTierNotEligible DenialReason = "tier_not_eligible"
	// ReasonProfileNotFound means no profile exists for the user. Fails closed.
	ReasonProfileNotFound DenialReason = "profile_not_found"
	// ReasonStoreUnavailable means the profile store could not answer in
	// time. Fails closed: quota integrity wins over availability.
	ReasonStoreUnavailable DenialReason = "store_unavailable"
	// ReasonInvalidAmount means the requested batch size was not positive.
	ReasonInvalidAmount DenialReason = "invalid_amount"
)

// Decision is the outcome of a check or check-and-consume call.
type Decision struct {
	Allowed  bool          `json:"allowed"`
	Reason   DenialReason  `json:"reason,omitempty"`
	Resource plan.Resource `json:"resource"`
	Tier     plan.Tier     `json:"tier"`
}

func allowed(res plan.Resource, tier plan.Tier) Decision {
	return Decision{Allowed: true, Resource: res, Tier: tier}
}

func denied(res plan.Resource, tier plan.Tier, reason DenialReason) Decision {
	return Decision{Allowed: false, Reason: reason, Resource: res, Tier: tier}
}

// Entitlements is the consumer-facing snapshot of what a user may do right now.
type Entitlements struct {
	EffectiveTier      plan.Tier               `json:"effective_tier"`
	Limits             map[plan.Resource]int64 `json:"limits"`
	Features           []plan.Feature          `json:"features"`
	Usage              profile.Usage           `json:"usage"`
	TrialDaysRemaining int                     `json:"trial_days_remaining"`
}
