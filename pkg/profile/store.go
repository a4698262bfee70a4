package profile

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/leadflowhq/leadflow/pkg/plan"
)

// Store defines the profile persistence contract. The store is the single
// serialization point for the two call paths that mutate the same profile
// concurrently (interactive usage consumption and asynchronous billing
// events), so every mutation below is a single atomic operation at the
// store, never a read followed by a write.
//
// Implementations bound every call with an operation timeout; a timeout
// surfaces as ErrUnavailable.
type Store interface {
	// Create persists a new profile. Returns ErrAlreadyExists when the user
	// or email is already registered.
	Create(ctx context.Context, p *Profile) error

	// Get retrieves a profile by user ID. Returns ErrNotFound if missing.
	Get(ctx context.Context, userID uuid.UUID) (*Profile, error)

	// Update applies a partial administrative update. Nil fields are left
	// untouched. Normal reconciliation never goes through Update; it uses
	// ApplyBillingChange so the ordering guard cannot be bypassed.
	Update(ctx context.Context, userID uuid.UUID, changes Changes) error

	// IncrementCounter atomically adds amount to a counter and returns the
	// new value. Concurrent increments for the same user must not lose
	// updates.
	IncrementCounter(ctx context.Context, userID uuid.UUID, counter Counter, amount int64) (int64, error)

	// ResetMonthlyUsage zeroes the monthly counters and advances the reset
	// timestamp to next, but only when the stored reset timestamp still
	// equals observed. Returns false when another caller won the rollover.
	ResetMonthlyUsage(ctx context.Context, userID uuid.UUID, observed, next time.Time) (bool, error)

	// ApplyBillingChange applies a tier transition as a single conditional
	// update guarded by the ordering token: the change is persisted only
	// when occurredAt is strictly newer than the profile's
	// LastBillingEventAt. Returns false when the event is stale or a replay.
	ApplyBillingChange(ctx context.Context, userID uuid.UUID, occurredAt time.Time, change BillingChange) (bool, error)

	// FindByBillingCustomerID retrieves the profile linked to a billing
	// customer. Returns ErrNotFound when no profile carries the linkage.
	FindByBillingCustomerID(ctx context.Context, customerID string) (*Profile, error)

	// FindByEmail retrieves a profile by account email.
	FindByEmail(ctx context.Context, email string) (*Profile, error)
}

// Changes is a partial-update descriptor for administrative operations.
// Only non-nil fields are written.
type Changes struct {
	Email     *string
	FirstName *string
	RawTier   *plan.Tier
	// BillingCustomerID may be cleared here (empty string); this is the one
	// administrative escape hatch, reconciliation never clears the linkage.
	BillingCustomerID *string
	BillingInterval   *BillingInterval
}

// BillingChange describes the profile mutation a billing event produces.
type BillingChange struct {
	RawTier plan.Tier
	// BillingCustomerID links the profile to the processor's customer on
	// first checkout. Empty means leave the linkage untouched; a non-empty
	// value is only written when no linkage exists yet (write-once).
	BillingCustomerID string
	BillingInterval   BillingInterval
}
