// Package model contains domain models passed between layers.
package model

import "time"

// DrivetrainAllWheel is the drivetrain category that earns the
// all-wheel-drive performance bonus. Any other value gets none.
const DrivetrainAllWheel = "4WD"

// Team holds a racing team's ledger account. Name is the unique key.
// Budget carries no floor and may go negative.
type Team struct {
	Name   string
	Budget float64
}

// Driver represents a team member who can be assigned to a car.
// Skill and Luck are in [1, 100].
type Driver struct {
	Name  string
	Team  string
	Skill int
	Luck  int
}

// Car is a registered race car with its physical attributes and the
// driver assigned to it.
type Car struct {
	Team        string
	Model       string
	Category    string
	Horsepower  float64
	Drivetrain  string
	MinWeightKG float64
	Driver      string
}

// Entrant is one car+driver pairing participating in a race: a Car
// joined with its Driver's skill and luck. It is the unit the
// performance model consumes.
type Entrant struct {
	Team        string
	Driver      string
	CarModel    string
	Category    string
	Horsepower  float64
	Drivetrain  string
	MinWeightKG float64
	Skill       int
	Luck        int
}

// RaceResult is one entrant's finishing record. Position is 1-indexed.
type RaceResult struct {
	Position  int
	Team      string
	Driver    string
	CarModel  string
	TimeTaken float64
}

// LedgerDelta is a signed balance adjustment instruction for one team:
// negative for fees, positive for the prize credit.
type LedgerDelta struct {
	Team   string
	Amount float64
}

// RaceRequest is a queued request to run one race.
type RaceRequest struct {
	RaceID      string
	SubmittedAt time.Time
}
