package plan

// Default quota constants. Trial quotas are lifetime caps consumed once;
// starter quotas renew every calendar month.
const (
	TrialMaxLeads           int64 = 50
	TrialMaxEmails          int64 = 25
	TrialMaxVoiceCalls      int64 = 5
	TrialMaxAIEmails        int64 = 10
	TrialMaxKeywordSearches int64 = 10
	TrialMaxCampaigns       int64 = 2

	StarterMaxLeadsPerMonth   int64 = 100
	StarterMaxKeywordSearches int64 = 50
)

var allFeatures = []Feature{
	FeatureGlobalDemand,
	FeatureDealPipeline,
	FeatureInbox,
	FeatureAIVoiceAgent,
	FeatureAIEmailGeneration,
}

// zeroLimits denies every counted resource. Used by the tiers that exist
// only to block consumption (expired trial, cancelled).
func zeroLimits() map[Resource]int64 {
	limits := make(map[Resource]int64, len(Resources))
	for _, res := range Resources {
		limits[res] = 0
	}
	return limits
}

// DefaultCatalog returns the production tier table.
//
// Starter has no voice-call or AI-email quota because those capabilities are
// feature-gated off the plan entirely; the zero limit is a backstop should
// the flag check ever be bypassed.
func DefaultCatalog() *Catalog {
	return MustNewCatalog(map[Tier]Entry{
		TierTrial: {
			Limits: map[Resource]int64{
				ResourceLeads:           TrialMaxLeads,
				ResourceEmails:          TrialMaxEmails,
				ResourceVoiceCalls:      TrialMaxVoiceCalls,
				ResourceAIEmails:        TrialMaxAIEmails,
				ResourceKeywordSearches: TrialMaxKeywordSearches,
				ResourceCampaigns:       TrialMaxCampaigns,
			},
			Features: allFeatures,
		},
		TierStarter: {
			Limits: map[Resource]int64{
				ResourceLeads:           StarterMaxLeadsPerMonth,
				ResourceEmails:          Unlimited,
				ResourceVoiceCalls:      0,
				ResourceAIEmails:        0,
				ResourceKeywordSearches: StarterMaxKeywordSearches,
				ResourceCampaigns:       Unlimited,
			},
			Features: []Feature{
				FeatureGlobalDemand,
				FeatureDealPipeline,
				FeatureInbox,
			},
		},
		TierPro: {
			Limits: map[Resource]int64{
				ResourceLeads:           Unlimited,
				ResourceEmails:          Unlimited,
				ResourceVoiceCalls:      Unlimited,
				ResourceAIEmails:        Unlimited,
				ResourceKeywordSearches: Unlimited,
				ResourceCampaigns:       Unlimited,
			},
			Features: allFeatures,
		},
		TierExpired: {
			Limits:   zeroLimits(),
			Features: []Feature{},
		},
		TierCancelled: {
			Limits:   zeroLimits(),
			Features: []Feature{},
		},
	})
}
