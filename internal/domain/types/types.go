// Package types contains common read shapes used across the application
package types

// TeamRow is the API view of a team account.
type TeamRow struct {
	Name   string  `json:"name"`
	Budget float64 `json:"budget"`
}

// DriverRow is the API view of a driver.
type DriverRow struct {
	Name  string `json:"name"`
	Team  string `json:"team"`
	Skill int    `json:"skill_level"`
	Luck  int    `json:"luck_level"`
}

// CarRow is the API view of a registered car.
type CarRow struct {
	Team        string  `json:"team"`
	Model       string  `json:"model"`
	Category    string  `json:"category"`
	Horsepower  float64 `json:"horsepower"`
	Drivetrain  string  `json:"drivetrain"`
	MinWeightKG float64 `json:"min_weight_kg"`
	Driver      string  `json:"driver"`
}

// StandingsRow represents one row of the budget standings.
type StandingsRow struct {
	Rank   int     `json:"rank"`
	Team   string  `json:"team"`
	Budget float64 `json:"budget"`
}

// ResultRow represents one entrant's finishing record.
type ResultRow struct {
	Position  int     `json:"position"`
	Team      string  `json:"team"`
	Driver    string  `json:"driver"`
	CarModel  string  `json:"car_model"`
	TimeTaken float64 `json:"time_taken"`
}

// Race status values reported by GET /races/{id}.
const (
	RaceStatusPending = "pending"
	RaceStatusSettled = "settled"
	RaceStatusAborted = "aborted"
	RaceStatusFailed  = "failed"
)

// RaceOutcome is the API view of a finished (or pending/aborted) race.
type RaceOutcome struct {
	RaceID      string      `json:"race_id"`
	Status      string      `json:"status"`
	Fee         float64     `json:"fee,omitempty"`
	PrizePool   float64     `json:"prize_pool,omitempty"`
	Results     []ResultRow `json:"results,omitempty"`
	Winner      *ResultRow  `json:"winner,omitempty"`
	AbortReason string      `json:"abort_reason,omitempty"`
	Error       string      `json:"error,omitempty"`
}
