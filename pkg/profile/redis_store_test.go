package profile_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadflowhq/leadflow/pkg/plan"
	"github.com/leadflowhq/leadflow/pkg/profile"
)

func newRedisStore(t *testing.T) profile.Store {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return profile.NewRedisStore(client)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newRedisStore(t)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	p := seedProfile(t, store, now)

	got, err := store.Get(ctx, p.UserID)
	require.NoError(t, err)
	assert.Equal(t, p.UserID, got.UserID)
	assert.Equal(t, p.Email, got.Email)
	assert.Equal(t, plan.TierTrial, got.RawTier)
	assert.True(t, got.TrialEnd.Equal(p.TrialEnd), "timestamps must survive the round trip")
	assert.True(t, got.Usage.MonthlyResetAt.Equal(p.Usage.MonthlyResetAt))

	t.Run("duplicate rejected", func(t *testing.T) {
		assert.ErrorIs(t, store.Create(ctx, p), profile.ErrAlreadyExists)
	})

	t.Run("missing profile", func(t *testing.T) {
		_, err := store.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, profile.ErrNotFound)
	})

	t.Run("find by email", func(t *testing.T) {
		found, err := store.FindByEmail(ctx, p.Email)
		require.NoError(t, err)
		assert.Equal(t, p.UserID, found.UserID)
	})
}

func TestRedisStoreIncrementCounter(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newRedisStore(t)
	p := seedProfile(t, store, time.Now().UTC())

	v, err := store.IncrementCounter(ctx, p.UserID, profile.CounterTrialEmails, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	v, err = store.IncrementCounter(ctx, p.UserID, profile.CounterTrialEmails, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), v)

	_, err = store.IncrementCounter(ctx, uuid.New(), profile.CounterTrialEmails, 1)
	assert.ErrorIs(t, err, profile.ErrNotFound)

	t.Run("concurrent increments", func(t *testing.T) {
		const goroutines = 25
		var wg sync.WaitGroup
		wg.Add(goroutines)
		for range goroutines {
			go func() {
				defer wg.Done()
				_, err := store.IncrementCounter(ctx, p.UserID, profile.CounterMonthlyLeads, 2)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := store.Get(ctx, p.UserID)
		require.NoError(t, err)
		assert.Equal(t, int64(2*goroutines), got.Usage.MonthlyLeads)
	})
}

func TestRedisStoreResetMonthlyUsage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newRedisStore(t)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	p := seedProfile(t, store, now)

	_, err := store.IncrementCounter(ctx, p.UserID, profile.CounterMonthlyKeywordSearches, 9)
	require.NoError(t, err)

	observed := p.Usage.MonthlyResetAt
	next := profile.NextMonthlyReset(observed)

	ok, err := store.ResetMonthlyUsage(ctx, p.UserID, observed, next)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := store.Get(ctx, p.UserID)
	require.NoError(t, err)
	assert.Zero(t, got.Usage.MonthlyKeywordSearches)
	assert.True(t, got.Usage.MonthlyResetAt.Equal(next))

	ok, err = store.ResetMonthlyUsage(ctx, p.UserID, observed, next)
	require.NoError(t, err)
	assert.False(t, ok, "second caller with a stale observation must lose")
}

func TestRedisStoreApplyBillingChange(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newRedisStore(t)
	p := seedProfile(t, store, time.Now().UTC())

	occurred := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)

	applied, err := store.ApplyBillingChange(ctx, p.UserID, occurred, profile.BillingChange{
		RawTier:           plan.TierPro,
		BillingCustomerID: "cus_redis",
		BillingInterval:   profile.BillingIntervalAnnual,
	})
	require.NoError(t, err)
	assert.True(t, applied)

	got, err := store.Get(ctx, p.UserID)
	require.NoError(t, err)
	assert.Equal(t, plan.TierPro, got.RawTier)
	assert.Equal(t, "cus_redis", got.BillingCustomerID)
	assert.Equal(t, profile.BillingIntervalAnnual, got.BillingInterval)

	found, err := store.FindByBillingCustomerID(ctx, "cus_redis")
	require.NoError(t, err)
	assert.Equal(t, p.UserID, found.UserID)

	t.Run("replay is a no-op", func(t *testing.T) {
		applied, err := store.ApplyBillingChange(ctx, p.UserID, occurred, profile.BillingChange{RawTier: plan.TierStarter})
		require.NoError(t, err)
		assert.False(t, applied)
	})

	t.Run("stale event is discarded", func(t *testing.T) {
		applied, err := store.ApplyBillingChange(ctx, p.UserID, occurred.Add(-time.Minute), profile.BillingChange{RawTier: plan.TierCancelled})
		require.NoError(t, err)
		assert.False(t, applied)

		got, err := store.Get(ctx, p.UserID)
		require.NoError(t, err)
		assert.Equal(t, plan.TierPro, got.RawTier)
	})
}
