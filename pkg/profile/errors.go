package profile

import "errors"

var (
	ErrNotFound       = errors.New("profile not found")
	ErrAlreadyExists  = errors.New("profile already exists")
	ErrUnavailable    = errors.New("profile store unavailable")
	ErrUnknownCounter = errors.New("unknown usage counter")
)
