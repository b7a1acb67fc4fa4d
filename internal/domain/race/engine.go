// Package race implements the settlement engine: it runs exactly one
// race over an entrant snapshot and produces ranked results plus ledger
// instructions. The engine owns no storage; applying the deltas is the
// caller's job.
package race

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/okian/paddock/internal/domain/model"
	"github.com/okian/paddock/internal/domain/performance"
	"github.com/okian/paddock/pkg/logger"
	"github.com/okian/paddock/pkg/metrics"
)

// Default economy constants, mirroring the upstream rally rules.
const (
	defaultEntryFee   = 1000.0
	defaultPrizeShare = 0.8

	minEntrants = 2
)

// State tracks a race invocation through its lifecycle.
type State string

// Race lifecycle states. A run ends in StateSettled or StateAborted.
const (
	StateIdle          State = "idle"
	StateValidated     State = "validated"
	StateFeesCollected State = "fees_collected"
	StateSimulated     State = "simulated"
	StateRanked        State = "ranked"
	StateSettled       State = "settled"
	StateAborted       State = "aborted"
)

// Outcome is everything one race run produces: the final state, the
// economics, the ranked results, and the balance deltas for the ledger.
type Outcome struct {
	State       State
	Fee         float64
	PrizePool   float64
	Results     []model.RaceResult
	Deltas      []model.LedgerDelta
	Winner      *model.RaceResult
	AbortReason string
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithEntryFee sets the per-team entry fee.
func WithEntryFee(fee float64) Option {
	return func(e *Engine) {
		if fee > 0 {
			e.fee = fee
		}
	}
}

// WithPrizeShare sets the fraction of collected fees paid out as the prize.
func WithPrizeShare(share float64) Option {
	return func(e *Engine) {
		if share > 0 && share <= 1 {
			e.prizeShare = share
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.logger = log
		}
	}
}

// Engine runs races. It is stateless between invocations; every Run is
// driven entirely by the entrant snapshot it receives.
type Engine struct {
	evaluator  performance.Evaluator
	fee        float64
	prizeShare float64
	logger     logger.Logger
}

// New creates an Engine backed by the given performance evaluator.
func New(evaluator performance.Evaluator, opts ...Option) *Engine {
	e := &Engine{
		evaluator:  evaluator,
		fee:        defaultEntryFee,
		prizeShare: defaultPrizeShare,
	}

	// Apply all options
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = logger.Get().Named("race")
	}

	return e
}

// Run executes one race over the entrant snapshot.
//
// Validation failure is the only clean abort: it returns an Outcome in
// StateAborted with no deltas and a non-nil error. After validation the
// run proceeds to settlement; the returned deltas list the fee debit
// for every distinct team (once per team, not per car) followed by a
// single prize credit for the winner's team.
func (e *Engine) Run(ctx context.Context, entrants []model.Entrant) (Outcome, error) {
	start := time.Now()
	metrics.RecordRaceStarted()

	out := Outcome{State: StateIdle, Fee: e.fee}

	// Validate
	if len(entrants) < minEntrants {
		out.State = StateAborted
		out.AbortReason = fmt.Sprintf("need at least %d entrants, got %d", minEntrants, len(entrants))
		metrics.RecordRaceAborted("insufficient_entrants")
		e.logger.Warn(ctx, "race aborted", logger.String("reason", out.AbortReason))
		return out, fmt.Errorf("%w: got %d", ErrInsufficientEntrants, len(entrants))
	}
	for _, entrant := range entrants {
		if err := performance.Validate(entrant); err != nil {
			out.State = StateAborted
			out.AbortReason = err.Error()
			metrics.RecordRaceAborted("invalid_entrant")
			e.logger.Warn(ctx, "race aborted",
				logger.String("team", entrant.Team),
				logger.String("car", entrant.CarModel),
				logger.Error(err),
			)
			return out, err
		}
	}
	out.State = StateValidated

	// Compute economics over distinct teams, preserving first-seen order.
	teams := distinctTeams(entrants)
	out.PrizePool = float64(len(teams)) * e.fee * e.prizeShare

	// Collect fees: one debit per distinct team, before simulation.
	deltas := make([]model.LedgerDelta, 0, len(teams)+1)
	for _, team := range teams {
		deltas = append(deltas, model.LedgerDelta{Team: team, Amount: -e.fee})
	}
	out.State = StateFeesCollected

	// Simulate each entrant; every call is an independent luck draw.
	results := make([]model.RaceResult, 0, len(entrants))
	for _, entrant := range entrants {
		timeTaken, err := e.evaluator.FinishTime(ctx, entrant)
		if err != nil {
			out.State = StateAborted
			out.AbortReason = err.Error()
			metrics.RecordRaceAborted("simulation_error")
			return out, fmt.Errorf("simulating %s/%s: %w", entrant.Team, entrant.CarModel, err)
		}
		metrics.RecordEntrantSimulated()
		results = append(results, model.RaceResult{
			Team:      entrant.Team,
			Driver:    entrant.Driver,
			CarModel:  entrant.CarModel,
			TimeTaken: timeTaken,
		})
	}
	out.State = StateSimulated

	// Rank ascending by time; stable sort keeps input order on ties.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].TimeTaken < results[j].TimeTaken
	})
	for i := range results {
		results[i].Position = i + 1
	}
	out.Results = results
	out.State = StateRanked

	// Settle: one prize credit to the winner's team.
	winner := results[0]
	out.Winner = &winner
	deltas = append(deltas, model.LedgerDelta{Team: winner.Team, Amount: out.PrizePool})
	out.Deltas = deltas
	out.State = StateSettled

	metrics.RecordRaceSettled()
	metrics.AddFeesCollected(e.fee * float64(len(teams)))
	metrics.AddPrizeAwarded(out.PrizePool)
	metrics.RecordRaceDuration(float64(time.Since(start).Milliseconds()))

	e.logger.Info(ctx, "race settled",
		logger.Int("entrants", len(entrants)),
		logger.Int("teams", len(teams)),
		logger.Float64("fee", e.fee),
		logger.Float64("prizePool", out.PrizePool),
		logger.String("winner", winner.Team),
		logger.Float64("winningTime", winner.TimeTaken),
	)

	return out, nil
}

// distinctTeams returns the unique team names in first-seen order.
func distinctTeams(entrants []model.Entrant) []string {
	seen := make(map[string]struct{}, len(entrants))
	teams := make([]string, 0, len(entrants))
	for _, e := range entrants {
		if _, ok := seen[e.Team]; ok {
			continue
		}
		seen[e.Team] = struct{}{}
		teams = append(teams, e.Team)
	}
	return teams
}
