package race

import "errors"

// Sentinel kinds for settlement engine errors.
var (
	ErrInsufficientEntrants = errors.New("insufficient entrants")
)
