// Package repository defines the roster store interface and errors.
package repository

import (
	"context"

	model "github.com/okian/paddock/internal/domain/model"
	types "github.com/okian/paddock/internal/domain/types"
)

// Store provides read/write access to the roster and the team ledger.
type Store interface {
	// CreateTeam registers a new team account. A zero budget means the
	// store's configured starting budget. Returns ErrDuplicateTeam if
	// the name is taken.
	CreateTeam(ctx context.Context, team model.Team) error

	// CreateDriver registers a driver under an existing team.
	CreateDriver(ctx context.Context, driver model.Driver) error

	// CreateCar registers a car under an existing team with an existing
	// driver of that same team assigned to it.
	CreateCar(ctx context.Context, car model.Car) error

	// Teams lists all team accounts in registration order.
	Teams(ctx context.Context) []types.TeamRow

	// Drivers lists all drivers in registration order.
	Drivers(ctx context.Context) []types.DriverRow

	// Cars lists all cars in registration order.
	Cars(ctx context.Context) []types.CarRow

	// Snapshot returns an immutable copy of the current field: every
	// registered car joined with its driver, in registration order.
	// Later roster changes never affect a snapshot already taken.
	Snapshot(ctx context.Context) []model.Entrant

	// ApplyDeltas applies a settlement batch atomically. Either every
	// delta lands or none do; an unknown team rejects the whole batch
	// with ErrTeamNotFound.
	ApplyDeltas(ctx context.Context, deltas []model.LedgerDelta) error

	// Standings returns up to n teams ordered by budget desc.
	// Returns ErrInvalidLimit when n < 1.
	Standings(ctx context.Context, n int) ([]types.StandingsRow, error)

	// Counts for stats reporting.
	TeamCount(ctx context.Context) int
	DriverCount(ctx context.Context) int
	CarCount(ctx context.Context) int
}
