package notification

import (
	"context"
	"log/slog"
)

// devNotifier logs notifications instead of sending them. Used in local
// development and as a safe default when no Postmark tokens are configured.
type devNotifier struct {
	log *slog.Logger
}

// NewDevNotifier creates a log-only Notifier. A nil logger falls back to
// slog.Default.
func NewDevNotifier(log *slog.Logger) Notifier {
	if log == nil {
		log = slog.Default()
	}
	return &devNotifier{log: log}
}

func (n *devNotifier) SendCancellationEmail(ctx context.Context, toAddress, recipientFirstName string) error {
	n.log.InfoContext(ctx, "cancellation email (dev mode, not sent)",
		"to", toAddress,
		"first_name", recipientFirstName,
	)
	return nil
}
