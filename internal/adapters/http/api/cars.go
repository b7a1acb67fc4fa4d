// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/paddock/internal/domain/model"
)

// carRequest mirrors the OpenAPI schema for POST /cars.
type carRequest struct {
	Team        string  `json:"team"`
	Model       string  `json:"model"`
	Category    string  `json:"category"`
	Horsepower  float64 `json:"horsepower"`
	Drivetrain  string  `json:"drivetrain"`
	MinWeightKG float64 `json:"min_weight_kg"`
	Driver      string  `json:"driver"`
}

func (c carRequest) validate() error {
	switch {
	case strings.TrimSpace(c.Team) == "":
		return errors.New("missing team")
	case strings.TrimSpace(c.Model) == "":
		return errors.New("missing model")
	case strings.TrimSpace(c.Driver) == "":
		return errors.New("missing driver")
	case c.Horsepower <= 0:
		return errors.New("horsepower must be positive")
	case c.MinWeightKG <= 0:
		return errors.New("min_weight_kg must be positive")
	}
	return nil
}

// CarsHandler handles car registration and listing.
type CarsHandler struct {
	deps RosterDependencies
}

// NewCarsHandler creates a new cars handler.
func NewCarsHandler(deps RosterDependencies) *CarsHandler {
	return &CarsHandler{deps: deps}
}

// HandleCars handles POST /cars and GET /cars requests.
func (h *CarsHandler) HandleCars(w http.ResponseWriter, r *http.Request) {
	const op = "api.cars"
	switch r.Method {
	case http.MethodPost:
		var req carRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", opErr(op, err))
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", opErr(op, err))
			return
		}
		car := model.Car{
			Team:        req.Team,
			Model:       req.Model,
			Category:    req.Category,
			Horsepower:  req.Horsepower,
			Drivetrain:  req.Drivetrain,
			MinWeightKG: req.MinWeightKG,
			Driver:      req.Driver,
		}
		if err := h.deps.CreateCar(r.Context(), car); err != nil {
			writeRosterError(w, op, err)
			return
		}
		writeJSON(w, http.StatusCreated, ackResponse{Status: "created"})
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.deps.Cars(r.Context()))
	default:
		http.NotFound(w, r)
	}
}
