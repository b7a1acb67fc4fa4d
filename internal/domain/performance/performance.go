// Package performance defines the contract for computing finish times
// from an entrant's physical and driver attributes.
package performance

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/okian/paddock/internal/domain/model"
)

// Default model configuration constants.
const (
	defaultCourseDistance  = 100.0
	defaultDrivetrainBonus = 1.05
	defaultRandomSeed      = 42

	skillMidpoint  = 50.0
	skillSpan      = 50.0
	skillInfluence = 0.1
	luckDivisor    = 1000.0

	minLevel = 1
	maxLevel = 100
)

// Option applies a configuration option to the Model.
type Option func(*Model)

// WithCourseDistance sets the rally course length in distance units.
func WithCourseDistance(distance float64) Option {
	return func(m *Model) {
		if distance > 0 {
			m.courseDistance = distance
		}
	}
}

// WithDrivetrainBonus sets the multiplier applied to all-wheel-drive cars.
func WithDrivetrainBonus(bonus float64) Option {
	return func(m *Model) {
		if bonus >= 1 {
			m.drivetrainBonus = bonus
		}
	}
}

// WithRand sets the random source used for the luck draw.
func WithRand(rng *rand.Rand) Option {
	return func(m *Model) {
		if rng != nil {
			m.rng = rng
		}
	}
}

// WithSeed seeds a fresh random source for the luck draw.
func WithSeed(seed int64) Option {
	return func(m *Model) {
		m.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // luck simulation, not crypto
	}
}

// WithPacingDelay adds an artificial per-entrant delay so a race unfolds
// at presentation speed. Zero disables pacing.
func WithPacingDelay(delay time.Duration) Option {
	return func(m *Model) {
		if delay >= 0 {
			m.pacingDelay = delay
		}
	}
}

// Evaluator computes a finish time for one entrant. Implementations may
// pause to simulate a live race.
type Evaluator interface {
	// FinishTime computes the time taken to cover the course, honoring
	// ctx for cancellation while pacing.
	FinishTime(ctx context.Context, e model.Entrant) (float64, error)
}

// Model implements Evaluator with the rally performance formula.
type Model struct {
	courseDistance  float64
	drivetrainBonus float64
	pacingDelay     time.Duration

	// Shared random source for the luck draw; guarded because races may
	// be evaluated from multiple goroutines in tests.
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a performance model with configuration options.
func New(opts ...Option) *Model {
	m := &Model{
		courseDistance:  defaultCourseDistance,
		drivetrainBonus: defaultDrivetrainBonus,
		rng:             rand.New(rand.NewSource(defaultRandomSeed)), //nolint:gosec // deterministic seed for reproducible testing
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Validate reports whether the entrant's attributes are usable by the
// model. Non-positive horsepower or weight would produce a zero or
// undefined performance score, so they are rejected up front.
func Validate(e model.Entrant) error {
	switch {
	case e.Horsepower <= 0:
		return fmt.Errorf("%w: horsepower %v must be positive", ErrInvalidEntrant, e.Horsepower)
	case e.MinWeightKG <= 0:
		return fmt.Errorf("%w: min weight %v must be positive", ErrInvalidEntrant, e.MinWeightKG)
	case e.Skill < minLevel || e.Skill > maxLevel:
		return fmt.Errorf("%w: skill level %d out of range [1, 100]", ErrInvalidEntrant, e.Skill)
	case e.Luck < minLevel || e.Luck > maxLevel:
		return fmt.Errorf("%w: luck level %d out of range [1, 100]", ErrInvalidEntrant, e.Luck)
	}
	return nil
}

// FinishTime computes the finish time for the given entrant.
//
// The score is power-to-weight scaled by the drivetrain bonus, a linear
// skill factor centered at skill 50, and a luck factor drawn uniformly
// from [1 - luck/1000, 1 + luck/1000]. Time is distance over score.
func (m *Model) FinishTime(ctx context.Context, e model.Entrant) (float64, error) {
	if err := Validate(e); err != nil {
		return 0, err
	}

	// Simulate presentation pacing
	if m.pacingDelay > 0 {
		select {
		case <-ctx.Done():
			return 0, fmt.Errorf("context cancelled: %w", ctx.Err())
		case <-time.After(m.pacingDelay):
		}
	}

	powerToWeight := e.Horsepower / e.MinWeightKG

	bonus := 1.0
	if e.Drivetrain == model.DrivetrainAllWheel {
		bonus = m.drivetrainBonus
	}

	skillFactor := 1 + ((float64(e.Skill)-skillMidpoint)/skillSpan)*skillInfluence

	spread := float64(e.Luck) / luckDivisor
	m.mu.Lock()
	draw := m.rng.Float64()
	m.mu.Unlock()
	luckFactor := (1 - spread) + draw*2*spread

	score := powerToWeight * bonus * skillFactor * luckFactor
	if score <= 0 {
		return 0, fmt.Errorf("%w: non-positive performance score %v", ErrInvalidEntrant, score)
	}

	return m.courseDistance / score, nil
}
