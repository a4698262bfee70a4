package usage_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadflowhq/leadflow/pkg/plan"
	"github.com/leadflowhq/leadflow/pkg/profile"
	"github.com/leadflowhq/leadflow/pkg/usage"
)

var signup = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

// fixture seeds one profile and returns an accountant whose clock is pinned
// to the given instant.
func fixture(t *testing.T, now time.Time) (*usage.Accountant, profile.Store, *profile.Profile) {
	t.Helper()

	store := profile.NewMemoryStore()
	p := profile.New(uuid.New(), "alex@example.com", "Alex", signup)
	require.NoError(t, store.Create(context.Background(), p))

	acct, err := usage.NewAccountant(plan.DefaultCatalog(), store,
		usage.WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	return acct, store, p
}

func consume(t *testing.T, store profile.Store, userID uuid.UUID, counter profile.Counter, n int64) {
	t.Helper()
	_, err := store.IncrementCounter(context.Background(), userID, counter, n)
	require.NoError(t, err)
}

func TestCheckAndConsumeTrialLeads(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := signup.Add(3 * 24 * time.Hour)
	acct, store, p := fixture(t, now)

	consume(t, store, p.UserID, profile.CounterTrialLeads, 10)

	decision, err := acct.CheckAndConsume(ctx, p.UserID, plan.ResourceLeads, 5)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, plan.TierTrial, decision.Tier)

	got, err := store.Get(ctx, p.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(15), got.Usage.TrialLeads)
	assert.Zero(t, got.Usage.MonthlyLeads, "trial consumption must not touch monthly counters")

	t.Run("batch over the trial cap denied", func(t *testing.T) {
		decision, err := acct.CheckAndConsume(ctx, p.UserID, plan.ResourceLeads, plan.TrialMaxLeads)
		require.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.Equal(t, usage.ReasonLimitReached, decision.Reason)

		got, err := store.Get(ctx, p.UserID)
		require.NoError(t, err)
		assert.Equal(t, int64(15), got.Usage.TrialLeads, "denied check must not consume")
	})
}

func TestExpiredTrialDeniesEverything(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := signup.Add(8 * 24 * time.Hour)
	acct, _, p := fixture(t, now)

	for _, res := range plan.Resources {
		decision, err := acct.Check(ctx, p.UserID, res, 1)
		require.NoError(t, err)
		assert.False(t, decision.Allowed, "resource %s must be denied after trial expiry", res)
		assert.Equal(t, plan.TierExpired, decision.Tier)
	}
}

func TestCancelledDeniesEverything(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	acct, store, p := fixture(t, signup.Add(24*time.Hour))

	tier := plan.TierCancelled
	require.NoError(t, store.Update(ctx, p.UserID, profile.Changes{RawTier: &tier}))

	for _, res := range plan.Resources {
		decision, err := acct.Check(ctx, p.UserID, res, 1)
		require.NoError(t, err)
		assert.False(t, decision.Allowed)
	}
}

func TestStarterMonthlyLeadsQuota(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	acct, store, p := fixture(t, signup.Add(24*time.Hour))

	tier := plan.TierStarter
	require.NoError(t, store.Update(ctx, p.UserID, profile.Changes{RawTier: &tier}))
	consume(t, store, p.UserID, profile.CounterMonthlyLeads, 95)

	decision, err := acct.Check(ctx, p.UserID, plan.ResourceLeads, 10)
	require.NoError(t, err)
	assert.False(t, decision.Allowed, "95+10 > 100")
	assert.Equal(t, usage.ReasonLimitReached, decision.Reason)

	decision, err = acct.CheckAndConsume(ctx, p.UserID, plan.ResourceLeads, 5)
	require.NoError(t, err)
	assert.True(t, decision.Allowed, "95+5 <= 100")

	got, err := store.Get(ctx, p.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), got.Usage.MonthlyLeads)
}

func TestFeatureGates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("starter lacks AI voice agent", func(t *testing.T) {
		t.Parallel()

		acct, store, p := fixture(t, signup.Add(24*time.Hour))
		tier := plan.TierStarter
		require.NoError(t, store.Update(ctx, p.UserID, profile.Changes{RawTier: &tier}))

		for _, res := range []plan.Resource{plan.ResourceVoiceCalls, plan.ResourceAIEmails} {
			decision, err := acct.Check(ctx, p.UserID, res, 1)
			require.NoError(t, err)
			assert.False(t, decision.Allowed)
			assert.Equal(t, usage.ReasonFeatureNotInPlan, decision.Reason)
		}
	})

	t.Run("trial voice calls capped but allowed", func(t *testing.T) {
		t.Parallel()

		acct, store, p := fixture(t, signup.Add(24*time.Hour))
		consume(t, store, p.UserID, profile.CounterTrialVoiceCalls, plan.TrialMaxVoiceCalls-1)

		decision, err := acct.CheckAndConsume(ctx, p.UserID, plan.ResourceVoiceCalls, 1)
		require.NoError(t, err)
		assert.True(t, decision.Allowed)

		decision, err = acct.Check(ctx, p.UserID, plan.ResourceVoiceCalls, 1)
		require.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.Equal(t, usage.ReasonLimitReached, decision.Reason)
	})

	t.Run("pro voice calls uncapped and uncounted", func(t *testing.T) {
		t.Parallel()

		acct, store, p := fixture(t, signup.Add(24*time.Hour))
		tier := plan.TierPro
		require.NoError(t, store.Update(ctx, p.UserID, profile.Changes{RawTier: &tier}))

		decision, err := acct.CheckAndConsume(ctx, p.UserID, plan.ResourceVoiceCalls, 1)
		require.NoError(t, err)
		assert.True(t, decision.Allowed)

		got, err := store.Get(ctx, p.UserID)
		require.NoError(t, err)
		assert.Zero(t, got.Usage.TrialVoiceCalls, "pro consumption has no counter")
	})
}

func TestMonthlyRollover(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("past boundary resets before the check", func(t *testing.T) {
		t.Parallel()

		// monthlyResetAt is 2025-04-01; check in mid-April
		now := time.Date(2025, 4, 15, 10, 0, 0, 0, time.UTC)
		acct, store, p := fixture(t, now)
		tier := plan.TierStarter
		require.NoError(t, store.Update(ctx, p.UserID, profile.Changes{RawTier: &tier}))
		consume(t, store, p.UserID, profile.CounterMonthlyLeads, 100)

		decision, err := acct.CheckAndConsume(ctx, p.UserID, plan.ResourceLeads, 100)
		require.NoError(t, err)
		assert.True(t, decision.Allowed, "freshly reset counters admit a full batch")

		got, err := store.Get(ctx, p.UserID)
		require.NoError(t, err)
		assert.Equal(t, int64(100), got.Usage.MonthlyLeads)
		assert.Equal(t, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), got.Usage.MonthlyResetAt)
	})

	t.Run("concurrent callers reset exactly once", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2025, 4, 15, 10, 0, 0, 0, time.UTC)
		acct, store, p := fixture(t, now)
		tier := plan.TierStarter
		require.NoError(t, store.Update(ctx, p.UserID, profile.Changes{RawTier: &tier}))
		consume(t, store, p.UserID, profile.CounterMonthlyLeads, 50)

		const goroutines = 20
		var wg sync.WaitGroup
		wg.Add(goroutines)
		for range goroutines {
			go func() {
				defer wg.Done()
				_, err := acct.CheckAndConsume(ctx, p.UserID, plan.ResourceLeads, 1)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := store.Get(ctx, p.UserID)
		require.NoError(t, err)
		// Exactly one rollover zeroed the pre-existing 50; all 20 increments landed after it.
		assert.Equal(t, int64(goroutines), got.Usage.MonthlyLeads)
	})
}

func TestGetEntitlements(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := signup.Add(2 * 24 * time.Hour)
	acct, store, p := fixture(t, now)
	consume(t, store, p.UserID, profile.CounterTrialLeads, 12)

	ent, err := acct.GetEntitlements(ctx, p.UserID)
	require.NoError(t, err)
	assert.Equal(t, plan.TierTrial, ent.EffectiveTier)
	assert.Equal(t, plan.TrialMaxLeads, ent.Limits[plan.ResourceLeads])
	assert.Contains(t, ent.Features, plan.FeatureAIVoiceAgent)
	assert.Equal(t, int64(12), ent.Usage.TrialLeads)
	assert.Equal(t, 5, ent.TrialDaysRemaining)

	t.Run("unknown user", func(t *testing.T) {
		_, err := acct.GetEntitlements(ctx, uuid.New())
		assert.ErrorIs(t, err, profile.ErrNotFound)
	})
}

func TestInvalidInput(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	acct, _, p := fixture(t, signup.Add(24*time.Hour))

	decision, err := acct.Check(ctx, p.UserID, plan.ResourceLeads, 0)
	assert.ErrorIs(t, err, usage.ErrInvalidAmount)
	assert.False(t, decision.Allowed)
	assert.Equal(t, usage.ReasonInvalidAmount, decision.Reason)

	decision, err = acct.Check(ctx, p.UserID, plan.Resource("widgets"), 1)
	assert.ErrorIs(t, err, usage.ErrUnknownResource)
	assert.False(t, decision.Allowed)
}

// unavailableStore fails every call to exercise the fail-closed path.
type unavailableStore struct {
	profile.Store
}

func (unavailableStore) Get(ctx context.Context, userID uuid.UUID) (*profile.Profile, error) {
	return nil, profile.ErrUnavailable
}

func TestStoreFailuresFailClosed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	acct, err := usage.NewAccountant(plan.DefaultCatalog(), unavailableStore{})
	require.NoError(t, err)

	decision, err := acct.CheckAndConsume(ctx, uuid.New(), plan.ResourceLeads, 1)
	assert.ErrorIs(t, err, profile.ErrUnavailable)
	assert.False(t, decision.Allowed, "a store failure must never resolve to Allowed")
	assert.Equal(t, usage.ReasonStoreUnavailable, decision.Reason)

	t.Run("missing profile denies", func(t *testing.T) {
		acct, err := usage.NewAccountant(plan.DefaultCatalog(), profile.NewMemoryStore())
		require.NoError(t, err)

		decision, err := acct.Check(ctx, uuid.New(), plan.ResourceEmails, 1)
		assert.ErrorIs(t, err, profile.ErrNotFound)
		assert.False(t, decision.Allowed)
		assert.Equal(t, usage.ReasonProfileNotFound, decision.Reason)
	})
}
