package plan

// Tier identifies a subscription plan tier.
type Tier string

const (
	// TierTrial is the signup default, time-boxed by the profile's trial window.
	TierTrial Tier = "trial"
	// TierStarter is the entry paid plan with monthly renewable quotas.
	TierStarter Tier = "starter"
	// TierPro is the top paid plan, unlimited on all counted resources.
	TierPro Tier = "pro"
	// TierCancelled is written by billing reconciliation when a subscription ends.
	TierCancelled Tier = "cancelled"
	// TierExpired is the expired-trial fallback. It is derived by the resolver
	// and never persisted as a raw tier.
	TierExpired Tier = "expired"
)

// PersistableTiers are the tiers billing reconciliation may write to a profile.
var PersistableTiers = []Tier{TierTrial, TierStarter, TierPro, TierCancelled}

// Resource represents a countable consumable resource type.
type Resource string

const (
	ResourceLeads           Resource = "leads"
	ResourceEmails          Resource = "emails"
	ResourceVoiceCalls      Resource = "voice_calls"
	ResourceAIEmails        Resource = "ai_emails"
	ResourceKeywordSearches Resource = "keyword_searches"
	ResourceCampaigns       Resource = "campaigns"
)

// Resources lists every known resource kind.
var Resources = []Resource{
	ResourceLeads,
	ResourceEmails,
	ResourceVoiceCalls,
	ResourceAIEmails,
	ResourceKeywordSearches,
	ResourceCampaigns,
}

const (
	// Unlimited indicates no limit for a resource (-1 chosen for SQL compatibility)
	Unlimited int64 = -1
)

// Feature represents a tier-specific capability that can be enabled/disabled.
type Feature string

const (
	FeatureGlobalDemand      Feature = "global_demand"
	FeatureDealPipeline      Feature = "deal_pipeline"
	FeatureInbox             Feature = "inbox"
	FeatureAIVoiceAgent      Feature = "ai_voice_agent"
	FeatureAIEmailGeneration Feature = "ai_email_generation"
)
