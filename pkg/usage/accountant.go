package usage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/leadflowhq/leadflow/pkg/plan"
	"github.com/leadflowhq/leadflow/pkg/profile"
)

// Accountant answers "can this user consume resource R right now" and
// performs the consumption against the profile store. It holds no mutable
// state of its own; the store is the single serialization point.
type Accountant struct {
	catalog *plan.Catalog
	store   profile.Store
	rules   map[plan.Resource]resourceRule
	now     func() time.Time
}

// Option configures the Accountant.
type Option func(*Accountant)

// WithClock replaces the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(a *Accountant) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAccountant creates an Accountant. Panics on nil required dependencies
// to fail fast during initialization.
func NewAccountant(catalog *plan.Catalog, store profile.Store, opts ...Option) (*Accountant, error) {
	if catalog == nil {
		panic("usage: plan catalog is required")
	}
	if store == nil {
		panic("usage: profile store is required")
	}

	rules := defaultRules()
	if err := validateRules(rules); err != nil {
		return nil, err
	}

	a := &Accountant{
		catalog: catalog,
		store:   store,
		rules:   rules,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Check reports whether the user may consume amount units of the resource,
// without consuming anything. Store failures fail closed: the decision is
// Denied and the error carries the cause.
func (a *Accountant) Check(ctx context.Context, userID uuid.UUID, res plan.Resource, amount int64) (Decision, error) {
	decision, _, err := a.evaluate(ctx, userID, res, amount)
	return decision, err
}

// CheckAndConsume checks the quota and, when allowed, atomically increments
// the counter the (tier, resource) pair dispatches to. Resources a tier is
// uncapped on consume nothing.
func (a *Accountant) CheckAndConsume(ctx context.Context, userID uuid.UUID, res plan.Resource, amount int64) (Decision, error) {
	decision, counter, err := a.evaluate(ctx, userID, res, amount)
	if err != nil || !decision.Allowed {
		return decision, err
	}
	if counter == "" {
		return decision, nil
	}

	if _, err := a.store.IncrementCounter(ctx, userID, counter, amount); err != nil {
		// The check passed but the consumption did not happen; report the
		// denial so the caller does not act on unrecorded usage.
		return denied(res, decision.Tier, storeReason(err)), err
	}
	return decision, nil
}

// evaluate runs the full predicate: effective tier, feature gate, monthly
// rollover, quota compare. It returns the counter to increment on success.
func (a *Accountant) evaluate(ctx context.Context, userID uuid.UUID, res plan.Resource, amount int64) (Decision, profile.Counter, error) {
	if amount <= 0 {
		return denied(res, "", ReasonInvalidAmount), "", ErrInvalidAmount
	}

	rule, ok := a.rules[res]
	if !ok {
		return denied(res, "", ReasonTierNotEligible), "", ErrUnknownResource
	}

	p, err := a.store.Get(ctx, userID)
	if err != nil {
		return denied(res, "", storeReason(err)), "", err
	}

	now := a.now()
	tier := plan.EffectiveTier(p.RawTier, p.TrialEnd, now)

	if rule.feature != "" && !a.catalog.HasFeature(tier, rule.feature) {
		return denied(res, tier, ReasonFeatureNotInPlan), "", nil
	}

	tr, ok := rule.tiers[tier]
	if !ok {
		return denied(res, tier, ReasonTierNotEligible), "", nil
	}

	limit, ok := a.catalog.Limit(tier, res)
	if !ok {
		return denied(res, tier, ReasonTierNotEligible), "", nil
	}

	if tr.counter.Monthly() {
		if p, err = a.rollover(ctx, p, now); err != nil {
			return denied(res, tier, storeReason(err)), "", err
		}
	}

	if limit == plan.Unlimited {
		return allowed(res, tier), tr.counter, nil
	}
	if tr.counter == "" {
		// Eligible, capped, but nothing to count against: treat the limit as
		// a hard gate (only reachable with a zero backstop limit).
		if limit > 0 {
			return allowed(res, tier), "", nil
		}
		return denied(res, tier, ReasonLimitReached), "", nil
	}

	if p.Usage.Value(tr.counter)+amount > limit {
		return denied(res, tier, ReasonLimitReached), "", nil
	}
	return allowed(res, tier), tr.counter, nil
}

// rollover zeroes the monthly counters when now has passed the profile's
// reset boundary. The store-side compare-and-set guarantees only one
// concurrent caller performs the zero-and-advance; losers re-read the
// refreshed state.
func (a *Accountant) rollover(ctx context.Context, p *profile.Profile, now time.Time) (*profile.Profile, error) {
	if now.Before(p.Usage.MonthlyResetAt) {
		return p, nil
	}

	next := profile.NextMonthlyReset(now)
	won, err := a.store.ResetMonthlyUsage(ctx, p.UserID, p.Usage.MonthlyResetAt, next)
	if err != nil {
		return nil, err
	}
	if won {
		p.Usage.MonthlyLeads = 0
		p.Usage.MonthlyEmails = 0
		p.Usage.MonthlyKeywordSearches = 0
		p.Usage.MonthlyResetAt = next
		return p, nil
	}
	// Another caller performed the rollover between our read and the CAS.
	return a.store.Get(ctx, p.UserID)
}

// GetEntitlements returns the consumer-facing snapshot: effective tier, its
// limits and features, current usage and days left on the trial. Monthly
// rollover is applied first so the UI never shows stale counters.
func (a *Accountant) GetEntitlements(ctx context.Context, userID uuid.UUID) (*Entitlements, error) {
	p, err := a.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := a.now()
	if p, err = a.rollover(ctx, p, now); err != nil {
		return nil, err
	}

	tier := plan.EffectiveTier(p.RawTier, p.TrialEnd, now)

	return &Entitlements{
		EffectiveTier:      tier,
		Limits:             a.catalog.LimitsFor(tier),
		Features:           a.catalog.FeaturesFor(tier),
		Usage:              p.Usage,
		TrialDaysRemaining: plan.TrialDaysRemaining(p.TrialEnd, now),
	}, nil
}

// storeReason maps a store error to the matching denial reason.
func storeReason(err error) DenialReason {
	if errors.Is(err, profile.ErrNotFound) {
		return ReasonProfileNotFound
	}
	return ReasonStoreUnavailable
}
