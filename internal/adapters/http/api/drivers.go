// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/paddock/internal/domain/model"
)

// driverRequest mirrors the OpenAPI schema for POST /drivers.
type driverRequest struct {
	Name  string `json:"name"`
	Team  string `json:"team"`
	Skill int    `json:"skill_level"`
	Luck  int    `json:"luck_level"`
}

func (d driverRequest) validate() error {
	switch {
	case strings.TrimSpace(d.Name) == "":
		return errors.New("missing name")
	case strings.TrimSpace(d.Team) == "":
		return errors.New("missing team")
	case d.Skill < 1 || d.Skill > 100:
		return errors.New("skill_level must be between 1 and 100")
	case d.Luck < 1 || d.Luck > 100:
		return errors.New("luck_level must be between 1 and 100")
	}
	return nil
}

// DriversHandler handles driver registration and listing.
type DriversHandler struct {
	deps RosterDependencies
}

// NewDriversHandler creates a new drivers handler.
func NewDriversHandler(deps RosterDependencies) *DriversHandler {
	return &DriversHandler{deps: deps}
}

// HandleDrivers handles POST /drivers and GET /drivers requests.
func (h *DriversHandler) HandleDrivers(w http.ResponseWriter, r *http.Request) {
	const op = "api.drivers"
	switch r.Method {
	case http.MethodPost:
		var req driverRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", opErr(op, err))
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", opErr(op, err))
			return
		}
		driver := model.Driver{
			Name:  req.Name,
			Team:  req.Team,
			Skill: req.Skill,
			Luck:  req.Luck,
		}
		if err := h.deps.CreateDriver(r.Context(), driver); err != nil {
			writeRosterError(w, op, err)
			return
		}
		writeJSON(w, http.StatusCreated, ackResponse{Status: "created"})
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.deps.Drivers(r.Context()))
	default:
		http.NotFound(w, r)
	}
}
