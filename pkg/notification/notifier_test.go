package notification_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadflowhq/leadflow/pkg/notification"
)

func TestNewPostmarkNotifier(t *testing.T) {
	t.Parallel()

	valid := notification.Config{
		PostmarkServerToken:  "server-token",
		PostmarkAccountToken: "account-token",
		SenderEmail:          "noreply@leadflow.example",
		SupportEmail:         "support@leadflow.example",
	}

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()

		n, err := notification.NewPostmarkNotifier(valid)
		require.NoError(t, err)
		assert.NotNil(t, n)
	})

	tests := []struct {
		name   string
		mutate func(*notification.Config)
	}{
		{"missing server token", func(c *notification.Config) { c.PostmarkServerToken = "" }},
		{"missing account token", func(c *notification.Config) { c.PostmarkAccountToken = "" }},
		{"invalid sender email", func(c *notification.Config) { c.SenderEmail = "not-an-email" }},
		{"invalid support email", func(c *notification.Config) { c.SupportEmail = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid
			tt.mutate(&cfg)

			_, err := notification.NewPostmarkNotifier(cfg)
			assert.ErrorIs(t, err, notification.ErrInvalidConfig)
		})
	}

	t.Run("must variant panics", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() {
			notification.MustNewPostmarkNotifier(notification.Config{})
		})
	})
}

func TestDevNotifier(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n := notification.NewDevNotifier(slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, n.SendCancellationEmail(context.Background(), "kim@example.com", "Kim"))
	assert.Contains(t, buf.String(), "kim@example.com")
	assert.Contains(t, buf.String(), "not sent")
}
