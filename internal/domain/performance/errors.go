package performance

import "errors"

// Sentinel kinds for performance model errors.
var (
	ErrInvalidEntrant = errors.New("invalid entrant")
)
