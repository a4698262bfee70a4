package usage

import "errors"

var (
	ErrInvalidRules    = errors.New("invalid usage dispatch rules")
	ErrUnknownResource = errors.New("unknown resource kind")
	ErrInvalidAmount   = errors.New("consumption amount must be positive")
)
