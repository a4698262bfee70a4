package billing

import "time"

// EventType is the processor's event name. Only the three subscription
// lifecycle events below are acted on; everything else is ignored.
type EventType string

const (
	EventCheckoutCompleted   EventType = "checkout.session.completed"
	EventSubscriptionUpdated EventType = "customer.subscription.updated"
	EventSubscriptionDeleted EventType = "customer.subscription.deleted"
)

// Event is a billing event as delivered by the webhook receiver. Events
// arrive already signature-verified, at-least-once and possibly out of
// order; OccurredAt is the processor-side creation timestamp used as the
// ordering signal.
type Event struct {
	Type           EventType `json:"type"`
	CustomerID     string    `json:"customer_id"`
	PriceID        string    `json:"price_id,omitempty"`
	CustomerEmail  string    `json:"customer_email,omitempty"`
	SubscriptionID string    `json:"subscription_id,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
