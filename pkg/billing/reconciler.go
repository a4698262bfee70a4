package billing

import (
	"context"
	"errors"
	"log/slog"

	"github.com/leadflowhq/leadflow/pkg/plan"
	"github.com/leadflowhq/leadflow/pkg/profile"

	"github.com/leadflowhq/leadflow/pkg/notification"
)

// Reconciler consumes billing events and idempotently mutates the persisted
// raw tier. Delivery is at-least-once and unordered, so every mutation goes
// through the store's conditional ApplyBillingChange guarded by the event's
// OccurredAt; replays and stale events collapse into no-ops.
//
// Ambiguity fails open: an unknown price or an unmatched customer is logged
// and skipped so the processor is never driven into a retry storm. Only
// store unavailability is reported as an error.
type Reconciler struct {
	prices   PriceMap
	store    profile.Store
	notifier notification.Notifier
	log      *slog.Logger
}

// ReconcilerOption configures the Reconciler.
type ReconcilerOption func(*Reconciler)

// WithLogger replaces the default logger.
func WithLogger(log *slog.Logger) ReconcilerOption {
	return func(r *Reconciler) {
		if log != nil {
			r.log = log
		}
	}
}

// NewReconciler creates a Reconciler. Panics on nil required dependencies
// to fail fast during initialization.
func NewReconciler(prices PriceMap, store profile.Store, notifier notification.Notifier, opts ...ReconcilerOption) (*Reconciler, error) {
	if store == nil {
		panic("billing: profile store is required")
	}
	if notifier == nil {
		panic("billing: notifier is required")
	}
	if err := prices.validate(); err != nil {
		return nil, err
	}

	r := &Reconciler{
		prices:   prices,
		store:    store,
		notifier: notifier,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Reconcile applies one billing event. The returned error is nil for every
// outcome except store unavailability; callers at the webhook boundary
// acknowledge the delivery regardless.
func (r *Reconciler) Reconcile(ctx context.Context, ev Event) error {
	if ev.CustomerID == "" || ev.OccurredAt.IsZero() {
		r.log.WarnContext(ctx, "malformed billing event skipped",
			"type", ev.Type, "customer_id", ev.CustomerID, "occurred_at", ev.OccurredAt)
		return nil
	}

	switch ev.Type {
	case EventCheckoutCompleted:
		return r.checkoutCompleted(ctx, ev)
	case EventSubscriptionUpdated:
		return r.subscriptionUpdated(ctx, ev)
	case EventSubscriptionDeleted:
		return r.subscriptionDeleted(ctx, ev)
	default:
		return nil
	}
}

// checkoutCompleted activates a paid plan. The profile is matched by the
// billing customer linkage first, falling back to the account email for the
// first-ever purchase when no linkage exists yet.
func (r *Reconciler) checkoutCompleted(ctx context.Context, ev Event) error {
	point, ok := r.prices.Resolve(ev.PriceID)
	if !ok {
		r.log.WarnContext(ctx, "checkout with unrecognized price skipped",
			"price_id", ev.PriceID, "customer_id", ev.CustomerID)
		return nil
	}

	p, err := r.findProfile(ctx, ev)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			r.log.WarnContext(ctx, "checkout for unmatched customer skipped",
				"customer_id", ev.CustomerID, "customer_email", ev.CustomerEmail)
			return nil
		}
		return err
	}

	applied, err := r.store.ApplyBillingChange(ctx, p.UserID, ev.OccurredAt, profile.BillingChange{
		RawTier:           point.Tier,
		BillingCustomerID: ev.CustomerID,
		BillingInterval:   point.Interval,
	})
	if err != nil {
		return err
	}
	if !applied {
		r.log.InfoContext(ctx, "stale checkout event discarded",
			"customer_id", ev.CustomerID, "occurred_at", ev.OccurredAt)
		return nil
	}

	r.log.InfoContext(ctx, "subscription activated",
		"user_id", p.UserID, "tier", point.Tier, "interval", point.Interval)
	return nil
}

func (r *Reconciler) subscriptionUpdated(ctx context.Context, ev Event) error {
	point, ok := r.prices.Resolve(ev.PriceID)
	if !ok {
		r.log.WarnContext(ctx, "subscription update with unrecognized price skipped",
			"price_id", ev.PriceID, "customer_id", ev.CustomerID)
		return nil
	}

	p, err := r.store.FindByBillingCustomerID(ctx, ev.CustomerID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			r.log.WarnContext(ctx, "subscription update for unmatched customer skipped",
				"customer_id", ev.CustomerID)
			return nil
		}
		return err
	}

	applied, err := r.store.ApplyBillingChange(ctx, p.UserID, ev.OccurredAt, profile.BillingChange{
		RawTier:         point.Tier,
		BillingInterval: point.Interval,
	})
	if err != nil {
		return err
	}
	if !applied {
		r.log.InfoContext(ctx, "stale subscription update discarded",
			"customer_id", ev.CustomerID, "occurred_at", ev.OccurredAt)
		return nil
	}

	r.log.InfoContext(ctx, "subscription plan changed",
		"user_id", p.UserID, "tier", point.Tier, "interval", point.Interval)
	return nil
}

func (r *Reconciler) subscriptionDeleted(ctx context.Context, ev Event) error {
	p, err := r.store.FindByBillingCustomerID(ctx, ev.CustomerID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			r.log.WarnContext(ctx, "subscription deletion for unmatched customer skipped",
				"customer_id", ev.CustomerID)
			return nil
		}
		return err
	}

	applied, err := r.store.ApplyBillingChange(ctx, p.UserID, ev.OccurredAt, profile.BillingChange{
		RawTier: plan.TierCancelled,
	})
	if err != nil {
		return err
	}
	if !applied {
		r.log.InfoContext(ctx, "stale subscription deletion discarded",
			"customer_id", ev.CustomerID, "occurred_at", ev.OccurredAt)
		return nil
	}

	r.log.InfoContext(ctx, "subscription cancelled", "user_id", p.UserID)

	// Best-effort side effect: a failed send never rolls back or fails the
	// tier mutation.
	if err := r.notifier.SendCancellationEmail(ctx, p.Email, p.FirstName); err != nil {
		r.log.ErrorContext(ctx, "failed to send cancellation email",
			"user_id", p.UserID, "error", err)
	}
	return nil
}

// findProfile matches the event to a profile, preferring the customer
// linkage over the email fallback.
func (r *Reconciler) findProfile(ctx context.Context, ev Event) (*profile.Profile, error) {
	p, err := r.store.FindByBillingCustomerID(ctx, ev.CustomerID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, profile.ErrNotFound) {
		return nil, err
	}
	if ev.CustomerEmail == "" {
		return nil, profile.ErrNotFound
	}
	return r.store.FindByEmail(ctx, ev.CustomerEmail)
}
