package plan

import "errors"

var (
	ErrInvalidCatalog = errors.New("invalid plan catalog configuration")
	ErrUnknownTier    = errors.New("unknown plan tier")
)
