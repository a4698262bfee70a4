package notification

import "errors"

var (
	ErrInvalidConfig    = errors.New("invalid notification config")
	ErrInvalidRecipient = errors.New("invalid notification recipient")
	ErrFailedToSend     = errors.New("failed to send notification")
)
