// Package plan defines the subscription tier catalog and the effective-tier
// resolver.
//
// The catalog is a static table: per tier, numeric quotas for every countable
// resource plus a set of feature flags. Unlimited quotas use the Unlimited
// sentinel rather than a large integer. The resolver derives the tier
// actually in force from the persisted raw tier and the trial window; the
// result is always recomputed, never stored.
//
// Key concepts:
//
//   - Tier: trial, starter, pro, cancelled, plus the derived-only expired
//     fallback a trial collapses into once its window closes
//   - Resource: countable consumables (leads, emails, voice calls, ...)
//   - Feature: tier-gated capabilities (AI voice agent, deal pipeline, ...)
//
// Basic usage:
//
//	catalog := plan.DefaultCatalog()
//
//	tier := plan.EffectiveTier(profile.RawTier, profile.TrialEnd, time.Now())
//	if catalog.HasFeature(tier, plan.FeatureAIVoiceAgent) {
//	    // enable voice calling
//	}
//	days := plan.TrialDaysRemaining(profile.TrialEnd, time.Now())
package plan
