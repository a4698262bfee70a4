package usage

import (
	"errors"
	"fmt"

	"github.com/leadflowhq/leadflow/pkg/plan"
	"github.com/leadflowhq/leadflow/pkg/profile"
)

// tierRule describes how one tier consumes one resource. An empty counter
// means the tier is eligible but uncapped, so nothing is counted.
type tierRule struct {
	counter profile.Counter
}

// resourceRule gates a resource behind an optional feature flag and
// enumerates which tiers may consume it. A tier absent from the map is
// denied outright; deny is the default, never the silent pass.
type resourceRule struct {
	feature plan.Feature // "" when the resource is not feature-gated
	tiers   map[plan.Tier]tierRule
}

// defaultRules is the tier-indexed dispatch table. It is resolved here at
// definition time so an unmapped (tier, resource) combination can never be
// consumed at runtime.
//
// Voice calls, AI emails and campaigns have no monthly counterpart: past the
// trial they are either feature-gated off the plan or uncapped, so nothing
// is incremented for starter/pro.
func defaultRules() map[plan.Resource]resourceRule {
	return map[plan.Resource]resourceRule{
		plan.ResourceLeads: {
			tiers: map[plan.Tier]tierRule{
				plan.TierTrial:   {counter: profile.CounterTrialLeads},
				plan.TierStarter: {counter: profile.CounterMonthlyLeads},
				plan.TierPro:     {counter: profile.CounterMonthlyLeads},
			},
		},
		plan.ResourceEmails: {
			tiers: map[plan.Tier]tierRule{
				plan.TierTrial:   {counter: profile.CounterTrialEmails},
				plan.TierStarter: {counter: profile.CounterMonthlyEmails},
				plan.TierPro:     {counter: profile.CounterMonthlyEmails},
			},
		},
		plan.ResourceVoiceCalls: {
			feature: plan.FeatureAIVoiceAgent,
			tiers: map[plan.Tier]tierRule{
				plan.TierTrial: {counter: profile.CounterTrialVoiceCalls},
				plan.TierPro:   {},
			},
		},
		plan.ResourceAIEmails: {
			feature: plan.FeatureAIEmailGeneration,
			tiers: map[plan.Tier]tierRule{
				plan.TierTrial: {counter: profile.CounterTrialAIEmails},
				plan.TierPro:   {},
			},
		},
		plan.ResourceKeywordSearches: {
			tiers: map[plan.Tier]tierRule{
				plan.TierTrial:   {counter: profile.CounterTrialKeywordSearches},
				plan.TierStarter: {counter: profile.CounterMonthlyKeywordSearches},
				plan.TierPro:     {counter: profile.CounterMonthlyKeywordSearches},
			},
		},
		plan.ResourceCampaigns: {
			tiers: map[plan.Tier]tierRule{
				plan.TierTrial:   {counter: profile.CounterTrialCampaigns},
				plan.TierStarter: {},
				plan.TierPro:     {},
			},
		},
	}
}

// validateRules rejects a dispatch table that references unknown resources
// or counters, or leaves a known resource without a rule.
func validateRules(rules map[plan.Resource]resourceRule) error {
	for _, res := range plan.Resources {
		if _, ok := rules[res]; !ok {
			return errors.Join(ErrInvalidRules, fmt.Errorf("resource %s has no rule", res))
		}
	}
	for res, rule := range rules {
		for tier, tr := range rule.tiers {
			if tr.counter != "" && !tr.counter.Valid() {
				return errors.Join(ErrInvalidRules,
					fmt.Errorf("resource %s tier %s references unknown counter %s", res, tier, tr.counter))
			}
		}
	}
	return nil
}
