// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/paddock/internal/domain/model"
	"github.com/okian/paddock/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	RosterDependencies
	RaceDependencies
	StandingsDependencies
}

// RosterDependencies covers team, driver and car registration and listing.
type RosterDependencies interface {
	CreateTeam(ctx context.Context, team model.Team) error
	CreateDriver(ctx context.Context, driver model.Driver) error
	CreateCar(ctx context.Context, car model.Car) error
	Teams(ctx context.Context) []types.TeamRow
	Drivers(ctx context.Context) []types.DriverRow
	Cars(ctx context.Context) []types.CarRow
}

// RaceDependencies covers race submission and outcome lookup.
type RaceDependencies interface {
	// SubmitRace accepts a race for async settlement. Returns the race
	// ID, whether the submission was a duplicate, and an error on
	// backpressure.
	SubmitRace(ctx context.Context, requestedID string) (string, bool, error)
	Outcome(ctx context.Context, raceID string) (types.RaceOutcome, error)
}

// StandingsDependencies covers the budget standings read side.
type StandingsDependencies interface {
	Standings(ctx context.Context, n int) ([]types.StandingsRow, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	teamsHandler     *TeamsHandler
	driversHandler   *DriversHandler
	carsHandler      *CarsHandler
	racesHandler     *RacesHandler
	standingsHandler *StandingsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxStandingsLimit int) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		teamsHandler:     NewTeamsHandler(deps),
		driversHandler:   NewDriversHandler(deps),
		carsHandler:      NewCarsHandler(deps),
		racesHandler:     NewRacesHandler(deps),
		standingsHandler: NewStandingsHandler(deps, maxStandingsLimit),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/teams", MetricsMiddleware(s.teamsHandler.HandleTeams, "teams"))
	mux.HandleFunc("/drivers", MetricsMiddleware(s.driversHandler.HandleDrivers, "drivers"))
	mux.HandleFunc("/cars", MetricsMiddleware(s.carsHandler.HandleCars, "cars"))
	mux.HandleFunc("/races", MetricsMiddleware(s.racesHandler.HandlePostRace, "races"))
	mux.HandleFunc("/races/", MetricsMiddleware(s.racesHandler.HandleGetRace, "race"))
	mux.HandleFunc("/standings", MetricsMiddleware(s.standingsHandler.HandleGetStandings, "standings"))
}

type ackResponse struct {
	Status    string `json:"status"`
	RaceID    string `json:"race_id,omitempty"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// opErr tags an error with the handler operation for logs and responses.
func opErr(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}

// isNotFound allows the API to translate upstream not-found errors to 404.
func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "not found")
}

// isConflict reports whether an upstream error is a duplicate
// registration, which maps to 409.
func isConflict(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "already registered")
}

// writeRosterError maps repository errors onto HTTP statuses.
func writeRosterError(w http.ResponseWriter, op string, err error) {
	switch {
	case isConflict(err):
		writeError(w, http.StatusConflict, "conflict", opErr(op, err))
	case isNotFound(err):
		writeError(w, http.StatusNotFound, "not_found", opErr(op, err))
	case strings.Contains(err.Error(), "different team"):
		writeError(w, http.StatusBadRequest, "bad_request", opErr(op, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", opErr(op, err))
	}
}
