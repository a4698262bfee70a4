package notification

import (
	"context"
	"regexp"
)

// Notifier sends transactional notifications. The entitlement core treats
// every send as fire-and-forget: a failed send is logged by the caller and
// never affects the state change that triggered it.
type Notifier interface {
	// SendCancellationEmail notifies a user that their subscription ended.
	SendCancellationEmail(ctx context.Context, toAddress, recipientFirstName string) error
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
