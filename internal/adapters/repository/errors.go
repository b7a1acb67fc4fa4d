package repository

import "errors"

// Sentinel kinds for roster and standings errors.
var (
	ErrTeamNotFound       = errors.New("team not found")
	ErrDriverNotFound     = errors.New("driver not found")
	ErrDuplicateTeam      = errors.New("team already registered")
	ErrDuplicateDriver    = errors.New("driver already registered")
	ErrDuplicateCar       = errors.New("car model already registered for team")
	ErrDriverTeamMismatch = errors.New("driver belongs to a different team")
	ErrInvalidLimit       = errors.New("invalid standings limit")
)
