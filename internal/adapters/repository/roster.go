package repository

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	model "github.com/okian/paddock/internal/domain/model"
	types "github.com/okian/paddock/internal/domain/types"
	"github.com/okian/paddock/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Standings ordering: budget DESC, then team name ASC (deterministic).
// The BST comparator treats "less" as "ranks earlier", so an in-order
// traversal yields the standings from richest to poorest. Budgets are
// kept as fixed-point integers so equal amounts compare exactly.

// budgetScale controls fixed-point scaling from float64. Six decimal
// places is far below the cent while leaving headroom for budgets in
// the trillions.
const budgetScale = 1_000_000

type budgetFP int64

func toFixedPoint(x float64) budgetFP {
	if math.IsNaN(x) {
		return 0
	}
	scaled := math.Round(x * budgetScale)
	if scaled > float64(math.MaxInt64) {
		return budgetFP(math.MaxInt64)
	}
	if scaled < float64(math.MinInt64) {
		return budgetFP(math.MinInt64)
	}
	return budgetFP(scaled)
}

func toFloat(x budgetFP) float64 {
	return float64(x) / budgetScale
}

// treap node
type node struct {
	team   string
	budget budgetFP
	prio   uint64
	left   *node
	right  *node
	size   int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aBudget, aTeam) should appear before
// (bBudget, bTeam) in the standings (richer teams first).
func less(aBudget budgetFP, aTeam string, bBudget budgetFP, bTeam string) bool {
	if aBudget != bBudget {
		return aBudget > bBudget
	}
	return aTeam < bTeam
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

func insert(n *node, team string, budget budgetFP, prio uint64) *node {
	if n == nil {
		return &node{team: team, budget: budget, prio: prio, size: 1}
	}
	if less(budget, team, n.budget, n.team) {
		n.left = insert(n.left, team, budget, prio)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, team, budget, prio)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, team string, budget budgetFP) *node {
	if n == nil {
		return nil
	}
	if budget == n.budget && team == n.team {
		// Rotate the higher-priority child up until the node is a leaf.
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, team, budget)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, team, budget)
		}
	} else if less(budget, team, n.budget, n.team) {
		n.left = deleteNode(n.left, team, budget)
	} else {
		n.right = deleteNode(n.right, team, budget)
	}
	fix(n)
	return n
}

// collectTopN appends up to limit rows in standings order.
func collectTopN(n *node, limit int, out *[]types.StandingsRow) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, types.StandingsRow{Team: n.team, Budget: toFloat(n.budget)})
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, out)
	}
}

// assignRanksWithTies assigns consecutive ranks where teams with the
// same budget share a rank.
func assignRanksWithTies(rows []types.StandingsRow) {
	rank := 0
	for i := range rows {
		if i == 0 || rows[i].Budget != rows[i-1].Budget {
			rank++
		}
		rows[i].Rank = rank
	}
}

// RosterStore is the in-memory Store implementation. Teams live both
// in a map for O(1) lookup and in a treap keyed by budget for O(log n)
// standings maintenance. Drivers and cars are plain maps plus
// registration-order slices.
type RosterStore struct {
	mu      sync.RWMutex
	root    *node
	budgets map[string]budgetFP

	teamOrder   []string
	drivers     map[string]model.Driver
	driverOrder []string
	cars        []model.Car
	carKeys     map[string]struct{}

	defaultBudget         float64
	metricsUpdateInterval time.Duration
	prio                  *rand.Rand

	wg       sync.WaitGroup
	stopChan chan struct{}
}

// NewRosterStore constructs a roster store with configuration options.
func NewRosterStore(ctx context.Context, opts ...Option) *RosterStore {
	s := &RosterStore{
		defaultBudget:         50_000,
		metricsUpdateInterval: 5 * time.Second,
		budgets:               make(map[string]budgetFP),
		drivers:               make(map[string]model.Driver),
		carKeys:               make(map[string]struct{}),
		prio:                  rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.stopChan = make(chan struct{})
	s.startMetricsUpdater(ctx)

	return s
}

// Close gracefully shuts down the background metrics goroutine.
func (s *RosterStore) Close() error {
	select {
	case <-s.stopChan:
		// Channel already closed
	default:
		close(s.stopChan)
	}
	s.wg.Wait()
	return nil
}

// CreateTeam implements Store.CreateTeam.
func (s *RosterStore) CreateTeam(ctx context.Context, team model.Team) error {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.budgets[team.Name]; exists {
		metrics.RecordErrorByComponent("repository", "duplicate_team")
		return ErrDuplicateTeam
	}

	budget := team.Budget
	if budget == 0 {
		budget = s.defaultBudget
	}
	fp := toFixedPoint(budget)
	s.budgets[team.Name] = fp
	s.teamOrder = append(s.teamOrder, team.Name)
	s.root = insert(s.root, team.Name, fp, s.prio.Uint64())
	return nil
}

// CreateDriver implements Store.CreateDriver.
func (s *RosterStore) CreateDriver(ctx context.Context, driver model.Driver) error {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.budgets[driver.Team]; !exists {
		metrics.RecordErrorByComponent("repository", "team_not_found")
		return ErrTeamNotFound
	}
	if _, exists := s.drivers[driver.Name]; exists {
		metrics.RecordErrorByComponent("repository", "duplicate_driver")
		return ErrDuplicateDriver
	}

	s.drivers[driver.Name] = driver
	s.driverOrder = append(s.driverOrder, driver.Name)
	return nil
}

// CreateCar implements Store.CreateCar.
func (s *RosterStore) CreateCar(ctx context.Context, car model.Car) error {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.budgets[car.Team]; !exists {
		metrics.RecordErrorByComponent("repository", "team_not_found")
		return ErrTeamNotFound
	}
	driver, exists := s.drivers[car.Driver]
	if !exists {
		metrics.RecordErrorByComponent("repository", "driver_not_found")
		return ErrDriverNotFound
	}
	if driver.Team != car.Team {
		metrics.RecordErrorByComponent("repository", "driver_team_mismatch")
		return ErrDriverTeamMismatch
	}
	key := car.Team + "\x00" + car.Model
	if _, exists := s.carKeys[key]; exists {
		metrics.RecordErrorByComponent("repository", "duplicate_car")
		return ErrDuplicateCar
	}

	s.carKeys[key] = struct{}{}
	s.cars = append(s.cars, car)
	return nil
}

// Teams implements Store.Teams.
func (s *RosterStore) Teams(ctx context.Context) []types.TeamRow {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]types.TeamRow, 0, len(s.teamOrder))
	for _, name := range s.teamOrder {
		rows = append(rows, types.TeamRow{Name: name, Budget: toFloat(s.budgets[name])})
	}
	return rows
}

// Drivers implements Store.Drivers.
func (s *RosterStore) Drivers(ctx context.Context) []types.DriverRow {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]types.DriverRow, 0, len(s.driverOrder))
	for _, name := range s.driverOrder {
		d := s.drivers[name]
		rows = append(rows, types.DriverRow{Name: d.Name, Team: d.Team, Skill: d.Skill, Luck: d.Luck})
	}
	return rows
}

// Cars implements Store.Cars.
func (s *RosterStore) Cars(ctx context.Context) []types.CarRow {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]types.CarRow, 0, len(s.cars))
	for _, c := range s.cars {
		rows = append(rows, types.CarRow{
			Team:        c.Team,
			Model:       c.Model,
			Category:    c.Category,
			Horsepower:  c.Horsepower,
			Drivetrain:  c.Drivetrain,
			MinWeightKG: c.MinWeightKG,
			Driver:      c.Driver,
		})
	}
	return rows
}

// Snapshot implements Store.Snapshot. The returned entrants are value
// copies, so the caller's race runs against a frozen field regardless
// of concurrent roster writes.
func (s *RosterStore) Snapshot(ctx context.Context) []model.Entrant {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	entrants := make([]model.Entrant, 0, len(s.cars))
	for _, c := range s.cars {
		d, ok := s.drivers[c.Driver]
		if !ok {
			continue
		}
		entrants = append(entrants, model.Entrant{
			Team:        c.Team,
			Driver:      c.Driver,
			CarModel:    c.Model,
			Category:    c.Category,
			Horsepower:  c.Horsepower,
			Drivetrain:  c.Drivetrain,
			MinWeightKG: c.MinWeightKG,
			Skill:       d.Skill,
			Luck:        d.Luck,
		})
	}
	return entrants
}

// ApplyDeltas implements Store.ApplyDeltas. The batch is validated in
// full before any budget moves, then the net change per team lands in
// one treap reposition each.
func (s *RosterStore) ApplyDeltas(ctx context.Context, deltas []model.LedgerDelta) error {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	net := make(map[string]budgetFP, len(deltas))
	order := make([]string, 0, len(deltas))
	for _, d := range deltas {
		if _, exists := s.budgets[d.Team]; !exists {
			metrics.RecordErrorByComponent("repository", "team_not_found")
			return ErrTeamNotFound
		}
		if _, seen := net[d.Team]; !seen {
			order = append(order, d.Team)
		}
		net[d.Team] += toFixedPoint(d.Amount)
	}

	for _, team := range order {
		old := s.budgets[team]
		updated := old + net[team]
		s.root = deleteNode(s.root, team, old)
		s.root = insert(s.root, team, updated, s.prio.Uint64())
		s.budgets[team] = updated
	}
	metrics.RecordLedgerDeltasApplied(len(deltas))
	return nil
}

// Standings implements Store.Standings.
func (s *RosterStore) Standings(ctx context.Context, n int) ([]types.StandingsRow, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]types.StandingsRow, 0, n)
	collectTopN(s.root, n, &rows)
	assignRanksWithTies(rows)
	return rows, nil
}

// TeamCount implements Store.TeamCount.
func (s *RosterStore) TeamCount(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.teamOrder)
}

// DriverCount implements Store.DriverCount.
func (s *RosterStore) DriverCount(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.driverOrder)
}

// CarCount implements Store.CarCount.
func (s *RosterStore) CarCount(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cars)
}

// startMetricsUpdater starts a background goroutine that refreshes
// repository gauges at the configured interval.
func (s *RosterStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.updateMetrics()
			}
		}
	}()
}

func (s *RosterStore) updateMetrics() {
	s.mu.RLock()
	teams := len(s.teamOrder)
	drivers := len(s.driverOrder)
	cars := len(s.cars)
	s.mu.RUnlock()

	metrics.UpdateRepositoryTeams(teams)
	metrics.UpdateRepositoryDrivers(drivers)
	metrics.UpdateRepositoryCars(cars)
}
