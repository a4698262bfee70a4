package plan_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/leadflowhq/leadflow/pkg/plan"
)

func TestEffectiveTier(t *testing.T) {
	t.Parallel()

	signup := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	trialEnd := plan.TrialEndsAt(signup)

	t.Run("non-trial tiers pass through verbatim", func(t *testing.T) {
		t.Parallel()

		for _, raw := range []plan.Tier{plan.TierStarter, plan.TierPro, plan.TierCancelled} {
			// trialEnd must be irrelevant for non-trial raw tiers
			assert.Equal(t, raw, plan.EffectiveTier(raw, trialEnd, signup.Add(-time.Hour)))
			assert.Equal(t, raw, plan.EffectiveTier(raw, trialEnd, trialEnd.Add(365*24*time.Hour)))
		}
	})

	t.Run("trial before expiry resolves to trial", func(t *testing.T) {
		t.Parallel()

		now := signup.Add(3 * 24 * time.Hour)
		assert.Equal(t, plan.TierTrial, plan.EffectiveTier(plan.TierTrial, trialEnd, now))
	})

	t.Run("trial at expiry resolves to expired", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, plan.TierExpired, plan.EffectiveTier(plan.TierTrial, trialEnd, trialEnd))
	})

	t.Run("trial after expiry resolves to expired", func(t *testing.T) {
		t.Parallel()

		now := signup.Add(8 * 24 * time.Hour)
		assert.Equal(t, plan.TierExpired, plan.EffectiveTier(plan.TierTrial, trialEnd, now))
	})
}

func TestTrialDaysRemaining(t *testing.T) {
	t.Parallel()

	trialEnd := time.Date(2025, 3, 17, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"full window ahead", trialEnd.Add(-7 * 24 * time.Hour), 7},
		{"partial day rounds up", trialEnd.Add(-3*24*time.Hour - time.Minute), 4},
		{"exact day boundary", trialEnd.Add(-3 * 24 * time.Hour), 3},
		{"under one day", trialEnd.Add(-time.Hour), 1},
		{"at expiry", trialEnd, 0},
		{"past expiry never negative", trialEnd.Add(48 * time.Hour), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, plan.TrialDaysRemaining(trialEnd, tt.now))
		})
	}
}

func TestTrialDaysRemainingMonotonic(t *testing.T) {
	t.Parallel()

	trialEnd := time.Date(2025, 3, 17, 12, 0, 0, 0, time.UTC)

	prev := plan.TrialDaysRemaining(trialEnd, trialEnd.Add(-10*24*time.Hour))
	for now := trialEnd.Add(-10 * 24 * time.Hour); now.Before(trialEnd.Add(2 * 24 * time.Hour)); now = now.Add(6 * time.Hour) {
		cur := plan.TrialDaysRemaining(trialEnd, now)
		assert.GreaterOrEqual(t, prev, cur, "days remaining must not increase as now advances")
		assert.GreaterOrEqual(t, cur, 0)
		prev = cur
	}
}
