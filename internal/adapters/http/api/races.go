// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

// raceRequest mirrors the OpenAPI schema for POST /races. The race ID
// is optional: supplying one makes the submission idempotent, omitting
// it gets a server-generated ID.
type raceRequest struct {
	RaceID string `json:"race_id,omitempty"`
}

// RacesHandler handles race submission and outcome lookup.
type RacesHandler struct {
	deps RaceDependencies
}

// NewRacesHandler creates a new races handler.
func NewRacesHandler(deps RaceDependencies) *RacesHandler {
	return &RacesHandler{deps: deps}
}

// HandlePostRace handles POST /races requests.
func (h *RacesHandler) HandlePostRace(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_race"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	// An empty body is a valid submission with a generated ID.
	var req raceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", opErr(op, err))
		return
	}

	raceID, duplicate, err := h.deps.SubmitRace(r.Context(), strings.TrimSpace(req.RaceID))
	if err != nil {
		writeError(w, http.StatusTooManyRequests, "backpressure", opErr(op, ErrBackpressure))
		return
	}
	if duplicate {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", RaceID: raceID, Duplicate: true})
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", RaceID: raceID, Duplicate: false})
}

// HandleGetRace handles GET /races/{race_id} requests.
func (h *RacesHandler) HandleGetRace(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_race"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	raceID := strings.TrimPrefix(r.URL.Path, "/races/")
	if raceID == "" || strings.Contains(raceID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", opErr(op, ErrBadRequest))
		return
	}
	outcome, err := h.deps.Outcome(r.Context(), raceID)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", opErr(op, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", opErr(op, err))
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}
