package billing

import "errors"

var (
	ErrInvalidPriceMap = errors.New("invalid price map configuration")
)
