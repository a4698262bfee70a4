package plan

import "time"

// TrialDuration is how long a fresh signup keeps the trial tier.
const TrialDuration = 7 * 24 * time.Hour

// TrialEndsAt returns the trial expiry for a signup timestamp.
func TrialEndsAt(signedUpAt time.Time) time.Time {
	return signedUpAt.UTC().Add(TrialDuration)
}

// EffectiveTier derives the tier actually in force at a given instant.
// It is a pure function of (rawTier, trialEnd, now) and is recomputed on
// every read; the result is never persisted.
//
// Non-trial raw tiers pass through verbatim. A trial profile resolves to
// TierTrial while the window is open and to TierExpired once now reaches
// trialEnd.
func EffectiveTier(raw Tier, trialEnd time.Time, now time.Time) Tier {
	if raw != TierTrial {
		return raw
	}
	if now.Before(trialEnd) {
		return TierTrial
	}
	return TierExpired
}

// TrialDaysRemaining returns the whole-day ceiling of trialEnd − now,
// floored at zero. It never goes negative.
func TrialDaysRemaining(trialEnd time.Time, now time.Time) int {
	remaining := trialEnd.Sub(now)
	if remaining <= 0 {
		return 0
	}
	days := int(remaining / (24 * time.Hour))
	if remaining%(24*time.Hour) > 0 {
		days++
	}
	return days
}
