package profile

import (
	"time"

	"github.com/google/uuid"

	"github.com/leadflowhq/leadflow/pkg/plan"
)

// Profile is the durable per-user billing and usage record.
// It is mutated only by the usage accountant (counter increments, monthly
// resets) and the billing reconciler (tier transitions, customer linkage).
type Profile struct {
	UserID    uuid.UUID
	Email     string
	FirstName string

	// RawTier is the tier as last written by billing reconciliation.
	// The tier actually in force is always derived via plan.EffectiveTier.
	RawTier  plan.Tier
	TrialEnd time.Time // set at signup, immutable thereafter

	BillingCustomerID string // set on first successful checkout, never cleared by reconciliation
	BillingInterval   BillingInterval

	// LastBillingEventAt is the ordering token for webhook reconciliation.
	// A billing change only applies when its event timestamp is strictly
	// newer than this value.
	LastBillingEventAt time.Time

	Usage Usage

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BillingInterval is informational billing frequency metadata.
type BillingInterval string

const (
	BillingIntervalNone    BillingInterval = ""
	BillingIntervalMonthly BillingInterval = "monthly"
	BillingIntervalAnnual  BillingInterval = "annual"
)

// Usage holds the consumption counters. Trial counters are lifetime values
// that only ever grow; monthly counters are zeroed at each calendar-month
// rollover.
type Usage struct {
	TrialLeads           int64
	TrialEmails          int64
	TrialVoiceCalls      int64
	TrialAIEmails        int64
	TrialKeywordSearches int64
	TrialCampaigns       int64

	MonthlyLeads           int64
	MonthlyEmails          int64
	MonthlyKeywordSearches int64
	MonthlyResetAt         time.Time
}

// Counter identifies a physical usage counter on the profile record.
type Counter string

const (
	CounterTrialLeads           Counter = "trial_leads"
	CounterTrialEmails          Counter = "trial_emails"
	CounterTrialVoiceCalls      Counter = "trial_voice_calls"
	CounterTrialAIEmails        Counter = "trial_ai_emails"
	CounterTrialKeywordSearches Counter = "trial_keyword_searches"
	CounterTrialCampaigns       Counter = "trial_campaigns"

	CounterMonthlyLeads           Counter = "monthly_leads"
	CounterMonthlyEmails          Counter = "monthly_emails"
	CounterMonthlyKeywordSearches Counter = "monthly_keyword_searches"
)

// Counters lists every known counter.
var Counters = []Counter{
	CounterTrialLeads,
	CounterTrialEmails,
	CounterTrialVoiceCalls,
	CounterTrialAIEmails,
	CounterTrialKeywordSearches,
	CounterTrialCampaigns,
	CounterMonthlyLeads,
	CounterMonthlyEmails,
	CounterMonthlyKeywordSearches,
}

// Monthly reports whether c is zeroed at the calendar-month rollover.
func (c Counter) Monthly() bool {
	switch c {
	case CounterMonthlyLeads, CounterMonthlyEmails, CounterMonthlyKeywordSearches:
		return true
	}
	return false
}

// Valid reports whether c names a known counter.
func (c Counter) Valid() bool {
	for _, known := range Counters {
		if c == known {
			return true
		}
	}
	return false
}

// Value returns the current value of counter c.
func (u Usage) Value(c Counter) int64 {
	switch c {
	case CounterTrialLeads:
		return u.TrialLeads
	case CounterTrialEmails:
		return u.TrialEmails
	case CounterTrialVoiceCalls:
		return u.TrialVoiceCalls
	case CounterTrialAIEmails:
		return u.TrialAIEmails
	case CounterTrialKeywordSearches:
		return u.TrialKeywordSearches
	case CounterTrialCampaigns:
		return u.TrialCampaigns
	case CounterMonthlyLeads:
		return u.MonthlyLeads
	case CounterMonthlyEmails:
		return u.MonthlyEmails
	case CounterMonthlyKeywordSearches:
		return u.MonthlyKeywordSearches
	}
	return 0
}

// NextMonthlyReset returns the first instant of the calendar month after now, in UTC.
func NextMonthlyReset(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, time.UTC)
}

// New creates a signup-state profile: trial tier, a fresh trial window,
// all counters zero and the monthly reset pointing at the next month boundary.
func New(userID uuid.UUID, email, firstName string, now time.Time) *Profile {
	now = now.UTC()
	return &Profile{
		UserID:    userID,
		Email:     email,
		FirstName: firstName,
		RawTier:   plan.TierTrial,
		TrialEnd:  plan.TrialEndsAt(now),
		Usage: Usage{
			MonthlyResetAt: NextMonthlyReset(now),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
