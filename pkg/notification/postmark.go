package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrz1836/postmark"
)

// Config holds notification sender configuration.
// SenderEmail establishes the sender identity; SupportEmail is used as the
// reply-to so customer responses reach a mailbox someone reads.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL,required"`
	SupportEmail         string `env:"SUPPORT_EMAIL,required"`
}

type postmarkNotifier struct {
	client *postmark.Client
	config Config
}

// NewPostmarkNotifier creates a Postmark-backed Notifier. All tokens are
// required for runtime operation; misconfiguration surfaces at startup
// rather than as silent delivery failures.
func NewPostmarkNotifier(cfg Config) (Notifier, error) {
	if cfg.PostmarkServerToken == "" {
		return nil, fmt.Errorf("%w: PostmarkServerToken is required", ErrInvalidConfig)
	}
	if cfg.PostmarkAccountToken == "" {
		return nil, fmt.Errorf("%w: PostmarkAccountToken is required", ErrInvalidConfig)
	}
	if !emailRegex.MatchString(cfg.SenderEmail) {
		return nil, fmt.Errorf("%w: SenderEmail must be a valid email address", ErrInvalidConfig)
	}
	if !emailRegex.MatchString(cfg.SupportEmail) {
		return nil, fmt.Errorf("%w: SupportEmail must be a valid email address", ErrInvalidConfig)
	}

	return &postmarkNotifier{
		client: postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken),
		config: cfg,
	}, nil
}

// MustNewPostmarkNotifier panics on invalid config to fail fast during
// initialization.
func MustNewPostmarkNotifier(cfg Config) Notifier {
	n, err := NewPostmarkNotifier(cfg)
	if err != nil {
		panic(err)
	}
	return n
}

func (n *postmarkNotifier) SendCancellationEmail(ctx context.Context, toAddress, recipientFirstName string) error {
	if !emailRegex.MatchString(toAddress) {
		return fmt.Errorf("%w: recipient address %q", ErrInvalidRecipient, toAddress)
	}
	if recipientFirstName == "" {
		recipientFirstName = "there"
	}

	resp, err := n.client.SendEmail(ctx, postmark.Email{
		From:     n.config.SenderEmail,
		ReplyTo:  n.config.SupportEmail,
		To:       toAddress,
		Subject:  "Your subscription has been cancelled",
		Tag:      "subscription-cancelled",
		HTMLBody: cancellationBody(recipientFirstName, n.config.SupportEmail),
		TextBody: cancellationTextBody(recipientFirstName, n.config.SupportEmail),
	})
	if err != nil {
		return errors.Join(ErrFailedToSend, err)
	}
	if resp.ErrorCode != 0 {
		return fmt.Errorf("%w: postmark error %d: %s", ErrFailedToSend, resp.ErrorCode, resp.Message)
	}
	return nil
}

func cancellationBody(firstName, supportEmail string) string {
	return fmt.Sprintf(`<html><body>
<p>Hi %s,</p>
<p>Your subscription has been cancelled and your account has been moved to the cancelled plan.
Your data stays right where you left it, and you can reactivate at any time from the billing page.</p>
<p>If this was a mistake or you have any questions, just reply or write to <a href="mailto:%s">%s</a>.</p>
<p>&mdash; The LeadFlow team</p>
</body></html>`, firstName, supportEmail, supportEmail)
}

func cancellationTextBody(firstName, supportEmail string) string {
	return fmt.Sprintf(`Hi %s,

Your subscription has been cancelled and your account has been moved to the cancelled plan.
Your data stays right where you left it, and you can reactivate at any time from the billing page.

If this was a mistake or you have any questions, write to %s.

- The LeadFlow team`, firstName, supportEmail)
}
