// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/paddock/internal/domain/model"
)

// teamRequest mirrors the OpenAPI schema for POST /teams.
type teamRequest struct {
	Name   string  `json:"name"`
	Budget float64 `json:"budget,omitempty"`
}

func (t teamRequest) validate() error {
	switch {
	case strings.TrimSpace(t.Name) == "":
		return errors.New("missing name")
	case t.Budget < 0:
		return errors.New("budget must not be negative")
	}
	return nil
}

// TeamsHandler handles team registration and listing.
type TeamsHandler struct {
	deps RosterDependencies
}

// NewTeamsHandler creates a new teams handler.
func NewTeamsHandler(deps RosterDependencies) *TeamsHandler {
	return &TeamsHandler{deps: deps}
}

// HandleTeams handles POST /teams and GET /teams requests.
func (h *TeamsHandler) HandleTeams(w http.ResponseWriter, r *http.Request) {
	const op = "api.teams"
	switch r.Method {
	case http.MethodPost:
		var req teamRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", opErr(op, err))
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", opErr(op, err))
			return
		}
		if err := h.deps.CreateTeam(r.Context(), model.Team{Name: req.Name, Budget: req.Budget}); err != nil {
			writeRosterError(w, op, err)
			return
		}
		writeJSON(w, http.StatusCreated, ackResponse{Status: "created"})
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.deps.Teams(r.Context()))
	default:
		http.NotFound(w, r)
	}
}
