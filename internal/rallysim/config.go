package rallysim

import "time"

// Config holds configuration for the rally simulation run
type Config struct {
	BaseURL    string        // Base URL of the service
	NumTeams   int           // Number of teams to seed
	NumRaces   int           // Number of races to submit
	TopN       int           // Number of standings rows to fetch
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Output file for the generated fleet
	LogFile    string        // Log file for run output
	Verbose    bool          // Enable verbose logging
}

// TeamEntry bundles a team with its driver and car payloads.
type TeamEntry struct {
	Team   TeamPayload   `json:"team"`
	Driver DriverPayload `json:"driver"`
	Car    CarPayload    `json:"car"`
}

// TeamPayload is the request body for POST /teams.
type TeamPayload struct {
	Name   string  `json:"name"`
	Budget float64 `json:"budget,omitempty"`
}

// DriverPayload is the request body for POST /drivers.
type DriverPayload struct {
	Name  string `json:"name"`
	Team  string `json:"team"`
	Skill int    `json:"skill_level"`
	Luck  int    `json:"luck_level"`
}

// CarPayload is the request body for POST /cars.
type CarPayload struct {
	Team        string  `json:"team"`
	Model       string  `json:"model"`
	Category    string  `json:"category"`
	Horsepower  float64 `json:"horsepower"`
	Drivetrain  string  `json:"drivetrain"`
	MinWeightKG float64 `json:"min_weight_kg"`
	Driver      string  `json:"driver"`
}

// AckResponse is the response from race submission.
type AckResponse struct {
	Status    string `json:"status"`
	RaceID    string `json:"race_id"`
	Duplicate bool   `json:"duplicate"`
}

// ResultRow is one finishing record inside a race outcome.
type ResultRow struct {
	Position  int     `json:"position"`
	Team      string  `json:"team"`
	Driver    string  `json:"driver"`
	CarModel  string  `json:"car_model"`
	TimeTaken float64 `json:"time_taken"`
}

// RaceOutcome is the response from GET /races/{id}.
type RaceOutcome struct {
	RaceID      string      `json:"race_id"`
	Status      string      `json:"status"`
	Fee         float64     `json:"fee"`
	PrizePool   float64     `json:"prize_pool"`
	Results     []ResultRow `json:"results"`
	Winner      *ResultRow  `json:"winner"`
	AbortReason string      `json:"abort_reason"`
	Error       string      `json:"error"`
}

// StandingsRow is one row of GET /standings.
type StandingsRow struct {
	Rank   int     `json:"rank"`
	Team   string  `json:"team"`
	Budget float64 `json:"budget"`
}

// Stats holds run statistics
type Stats struct {
	TeamsGenerated   int
	TeamsSeeded      int
	RacesSubmitted   int
	RacesAccepted    int
	RacesDuplicate   int
	RacesRejected    int
	OutcomesSettled  int
	OutcomesAborted  int
	OutcomesFailed   int
	StandingsEntries int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
