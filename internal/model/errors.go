package model

import "errors"

// Error kinds surfaced at pipeline boundaries. Callers discriminate with
// errors.Is rather than matching message text.
var (
	// ErrDataUnavailable means no requested ticker produced usable data, or
	// the provider is unreachable.
	ErrDataUnavailable = errors.New("market data unavailable")

	// ErrEmptyInput means a transformation received an empty or absent table.
	ErrEmptyInput = errors.New("empty input")

	// ErrInvalidInput means the caller supplied an empty ticker selection or
	// an unsupported parameter value.
	ErrInvalidInput = errors.New("invalid input")
)
