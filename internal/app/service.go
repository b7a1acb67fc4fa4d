// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	racequeue "github.com/okian/paddock/internal/adapters/mq/queue"
	"github.com/okian/paddock/internal/adapters/mq/worker"
	repository "github.com/okian/paddock/internal/adapters/repository"
	"github.com/okian/paddock/internal/domain/dedupe"
	"github.com/okian/paddock/internal/domain/model"
	"github.com/okian/paddock/internal/domain/performance"
	"github.com/okian/paddock/internal/domain/race"
	"github.com/okian/paddock/internal/domain/types"
	"github.com/okian/paddock/pkg/logger"
	"github.com/okian/paddock/pkg/metrics"
)

// Service implements the API dependencies for the rally economy system.
type Service struct {
	mu sync.RWMutex

	// Core components
	roster   repository.Store
	deduper  dedupe.Deduper
	queue    racequeue.Queue
	engine   *race.Engine
	runner   *worker.RaceRunner
	outcomes *outcomeCache

	// Configuration
	entryFee          float64
	prizeShare        float64
	courseDistance    float64
	drivetrainBonus   float64
	pacingDelay       time.Duration
	queueSize         int
	resultCacheSize   int
	maxStandingsLimit int
	defaultBudget     float64
	seed              int64

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithEntryFee sets the per-team race entry fee.
func WithEntryFee(fee float64) Option {
	return func(s *Service) {
		if fee > 0 {
			s.entryFee = fee
		}
	}
}

// WithPrizeShare sets the fraction of collected fees paid to the winner.
func WithPrizeShare(share float64) Option {
	return func(s *Service) {
		if share > 0 && share <= 1 {
			s.prizeShare = share
		}
	}
}

// WithCourseDistance sets the course distance used by the performance model.
func WithCourseDistance(distance float64) Option {
	return func(s *Service) {
		if distance > 0 {
			s.courseDistance = distance
		}
	}
}

// WithDrivetrainBonus sets the all-wheel-drive performance multiplier.
func WithDrivetrainBonus(bonus float64) Option {
	return func(s *Service) {
		if bonus >= 1 {
			s.drivetrainBonus = bonus
		}
	}
}

// WithPacingDelay sets the optional per-entrant simulation delay.
func WithPacingDelay(delay time.Duration) Option {
	return func(s *Service) {
		if delay >= 0 {
			s.pacingDelay = delay
		}
	}
}

// WithQueueSize sets the maximum number of pending races.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithResultCacheSize sets how many race outcomes stay queryable.
func WithResultCacheSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.resultCacheSize = size
		}
	}
}

// WithMaxStandingsLimit caps the standings page size.
func WithMaxStandingsLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.maxStandingsLimit = limit
		}
	}
}

// WithDefaultBudget sets the starting budget for new teams.
func WithDefaultBudget(budget float64) Option {
	return func(s *Service) {
		if budget > 0 {
			s.defaultBudget = budget
		}
	}
}

// WithSeed pins the luck draw to a deterministic sequence. Zero keeps
// the time-based default.
func WithSeed(seed int64) Option {
	return func(s *Service) {
		s.seed = seed
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		entryFee:          1000,
		prizeShare:        0.8,
		courseDistance:    100,
		drivetrainBonus:   1.05,
		queueSize:         1024,
		resultCacheSize:   4096,
		maxStandingsLimit: 100,
		defaultBudget:     50_000,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting rally service...")

	s.roster = repository.NewRosterStore(ctx,
		repository.WithDefaultBudget(s.defaultBudget),
	)
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.resultCacheSize),
	)
	s.queue = racequeue.NewInMemoryQueue(
		racequeue.WithCapacity(s.queueSize),
	)
	s.outcomes = newOutcomeCache(s.resultCacheSize)

	perfOpts := []performance.Option{
		performance.WithCourseDistance(s.courseDistance),
		performance.WithDrivetrainBonus(s.drivetrainBonus),
		performance.WithPacingDelay(s.pacingDelay),
	}
	if s.seed != 0 {
		perfOpts = append(perfOpts, performance.WithSeed(s.seed))
	}
	evaluator := performance.New(perfOpts...)

	s.engine = race.New(evaluator,
		race.WithEntryFee(s.entryFee),
		race.WithPrizeShare(s.prizeShare),
		race.WithLogger(s.logger.Named("engine")),
	)

	// A single runner keeps settlement serial: one race at a time, in
	// submission order.
	s.runner = worker.NewRaceRunner(s.queue, s)
	go s.runner.Run(ctx)

	s.started = true
	s.logger.Info(ctx, "rally service started",
		logger.Float64("entryFee", s.entryFee),
		logger.Float64("prizeShare", s.prizeShare),
		logger.Int("queueSize", s.queueSize),
		logger.Int("resultCacheSize", s.resultCacheSize),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping rally service...")

	if s.queue != nil {
		_ = s.queue.Close()
	}

	if s.runner != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		_ = s.runner.Shutdown(shutdownCtx)
		cancel()
	}

	if closer, ok := s.roster.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	s.started = false
	s.logger.Info(ctx, "rally service stopped")
}

// CreateTeam registers a new team account.
func (s *Service) CreateTeam(ctx context.Context, team model.Team) error {
	return s.roster.CreateTeam(ctx, team)
}

// CreateDriver registers a new driver.
func (s *Service) CreateDriver(ctx context.Context, driver model.Driver) error {
	return s.roster.CreateDriver(ctx, driver)
}

// CreateCar registers a new car.
func (s *Service) CreateCar(ctx context.Context, car model.Car) error {
	return s.roster.CreateCar(ctx, car)
}

// Teams lists all team accounts.
func (s *Service) Teams(ctx context.Context) []types.TeamRow {
	return s.roster.Teams(ctx)
}

// Drivers lists all drivers.
func (s *Service) Drivers(ctx context.Context) []types.DriverRow {
	return s.roster.Drivers(ctx)
}

// Cars lists all cars.
func (s *Service) Cars(ctx context.Context) []types.CarRow {
	return s.roster.Cars(ctx)
}

// Standings returns up to n teams ordered by budget. The limit is
// clamped to the configured maximum page size.
func (s *Service) Standings(ctx context.Context, n int) ([]types.StandingsRow, error) {
	if n > s.maxStandingsLimit {
		n = s.maxStandingsLimit
	}
	return s.roster.Standings(ctx, n)
}

// SubmitRace accepts a race for asynchronous settlement and returns its
// ID. Resubmitting a known ID is reported as a duplicate without
// queueing a second run. An empty requestedID gets a fresh UUID.
func (s *Service) SubmitRace(ctx context.Context, requestedID string) (string, bool, error) {
	if !s.isStarted() {
		return "", false, ErrNotStarted
	}

	raceID := requestedID
	if raceID == "" {
		raceID = uuid.NewString()
	}

	if s.deduper.SeenAndRecord(ctx, raceID) {
		metrics.RecordRaceDuplicate()
		s.logger.Debug(ctx, "duplicate race submission",
			logger.String("raceID", raceID),
		)
		return raceID, true, nil
	}

	s.outcomes.put(types.RaceOutcome{
		RaceID: raceID,
		Status: types.RaceStatusPending,
	})

	req := model.RaceRequest{RaceID: raceID, SubmittedAt: time.Now()}
	if !s.queue.Enqueue(ctx, req) {
		// Roll back so the caller can retry the same ID later.
		s.deduper.Unrecord(ctx, raceID)
		s.outcomes.drop(raceID)
		return "", false, ErrQueueFull
	}

	return raceID, false, nil
}

// Execute runs and settles one race. It implements worker.Executor and
// is only ever called from the single runner goroutine.
func (s *Service) Execute(ctx context.Context, req worker.Request) error {
	entrants := s.roster.Snapshot(ctx)

	out, err := s.engine.Run(ctx, entrants)
	if err != nil {
		status := types.RaceStatusFailed
		if out.State == race.StateAborted {
			status = types.RaceStatusAborted
		}
		s.outcomes.put(types.RaceOutcome{
			RaceID:      req.RaceID,
			Status:      status,
			AbortReason: out.AbortReason,
			Error:       err.Error(),
		})
		return err
	}

	if applyErr := s.roster.ApplyDeltas(ctx, out.Deltas); applyErr != nil {
		metrics.RecordLedgerApplyFailure()
		s.outcomes.put(types.RaceOutcome{
			RaceID: req.RaceID,
			Status: types.RaceStatusFailed,
			Error:  applyErr.Error(),
		})
		s.logger.Error(ctx, "ledger application failed",
			logger.String("raceID", req.RaceID),
			logger.Error(applyErr),
		)
		return applyErr
	}

	s.outcomes.put(raceOutcomeView(req.RaceID, out))
	return nil
}

// Outcome returns the current view of a submitted race.
func (s *Service) Outcome(ctx context.Context, raceID string) (types.RaceOutcome, error) {
	out, ok := s.outcomes.get(raceID)
	if !ok {
		return types.RaceOutcome{}, ErrRaceNotFound
	}
	return out, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":         s.started,
		"entryFee":        s.entryFee,
		"prizeShare":      s.prizeShare,
		"queueSize":       s.queueSize,
		"resultCacheSize": s.resultCacheSize,
	}

	if s.started {
		stats["pendingRaces"] = s.queue.Len(ctx)
		stats["cachedOutcomes"] = s.outcomes.size()
		stats["teams"] = s.roster.TeamCount(ctx)
		stats["drivers"] = s.roster.DriverCount(ctx)
		stats["cars"] = s.roster.CarCount(ctx)

		metrics.UpdateRepositoryTeams(s.roster.TeamCount(ctx))
		metrics.UpdateRepositoryDrivers(s.roster.DriverCount(ctx))
		metrics.UpdateRepositoryCars(s.roster.CarCount(ctx))
	}

	return stats
}

func (s *Service) isStarted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// raceOutcomeView converts an engine outcome to the API shape.
func raceOutcomeView(raceID string, out race.Outcome) types.RaceOutcome {
	results := make([]types.ResultRow, 0, len(out.Results))
	for _, r := range out.Results {
		results = append(results, types.ResultRow{
			Position:  r.Position,
			Team:      r.Team,
			Driver:    r.Driver,
			CarModel:  r.CarModel,
			TimeTaken: r.TimeTaken,
		})
	}

	view := types.RaceOutcome{
		RaceID:    raceID,
		Status:    types.RaceStatusSettled,
		Fee:       out.Fee,
		PrizePool: out.PrizePool,
		Results:   results,
	}
	if out.Winner != nil {
		view.Winner = &types.ResultRow{
			Position:  out.Winner.Position,
			Team:      out.Winner.Team,
			Driver:    out.Winner.Driver,
			CarModel:  out.Winner.CarModel,
			TimeTaken: out.Winner.TimeTaken,
		}
	}
	return view
}
