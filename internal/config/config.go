// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

// Economy defaults mirror the upstream rally rules: a fixed 1000 entry fee
// and a prize pool of 80% of the fees collected across distinct teams.
const (
	defaultEntryFee      = 1000.0
	defaultPrizeShare    = 0.8
	defaultCourseLength  = 100.0
	defaultRallyBonus    = 1.05
	defaultQueueSize     = 1024
	defaultResultCache   = 4096
	defaultStandingsCap  = 100
	defaultInitialBudget = 50_000.0
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// EntryFee is the per-team race entry fee.
	EntryFee float64 `koanf:"entry_fee"`

	// PrizeShare is the fraction of collected fees paid out as the prize pool.
	PrizeShare float64 `koanf:"prize_share"`

	// CourseDistance is the rally course length in distance units.
	CourseDistance float64 `koanf:"course_distance"`

	// DrivetrainBonus is the performance multiplier for all-wheel-drive cars.
	DrivetrainBonus float64 `koanf:"drivetrain_bonus"`

	// PacingDelayMS adds an artificial per-entrant delay during simulation.
	// Zero disables pacing.
	PacingDelayMS int `koanf:"pacing_delay_ms"`

	// RaceQueueSize bounds the in-memory race request queue.
	RaceQueueSize int `koanf:"race_queue_size"`

	// ResultCacheSize bounds the number of retained race outcomes.
	ResultCacheSize int `koanf:"result_cache_size"`

	// MaxStandingsLimit caps GET /standings?limit.
	MaxStandingsLimit int `koanf:"max_standings_limit"`

	// DefaultBudget is the starting budget assigned to new teams when the
	// creation request omits one.
	DefaultBudget float64 `koanf:"default_budget"`

	// RNGSeed seeds the luck random source. Zero means seed from the clock.
	RNGSeed int64 `koanf:"rng_seed"`
}

// New creates a Config populated with defaults.
func New() *Config {
	c := &Config{
		LogLevel:          "info",
		Addr:              ":9080",
		EntryFee:          defaultEntryFee,
		PrizeShare:        defaultPrizeShare,
		CourseDistance:    defaultCourseLength,
		DrivetrainBonus:   defaultRallyBonus,
		PacingDelayMS:     0,
		RaceQueueSize:     defaultQueueSize,
		ResultCacheSize:   defaultResultCache,
		MaxStandingsLimit: defaultStandingsCap,
		DefaultBudget:     defaultInitialBudget,
		RNGSeed:           0,
	}
	return c
}
