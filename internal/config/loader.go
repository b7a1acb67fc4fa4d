package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if PADDOCK_CONFIG is set
//  3. env (prefix PADDOCK_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("PADDOCK_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: PADDOCK_ADDR, PADDOCK_ENTRY_FEE, ...
	// Map env keys like PADDOCK_ENTRY_FEE -> entry_fee (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("PADDOCK_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "paddock_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Basic validation
	switch {
	case cfg.Addr == "":
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.EntryFee <= 0:
		return nil, fmt.Errorf("%w: entry_fee must be positive", ErrInvalidConfig)
	case cfg.PrizeShare <= 0 || cfg.PrizeShare > 1:
		return nil, fmt.Errorf("%w: prize_share must be in (0, 1]", ErrInvalidConfig)
	case cfg.CourseDistance <= 0:
		return nil, fmt.Errorf("%w: course_distance must be positive", ErrInvalidConfig)
	case cfg.DrivetrainBonus < 1:
		return nil, fmt.Errorf("%w: drivetrain_bonus must be at least 1", ErrInvalidConfig)
	case cfg.PacingDelayMS < 0:
		return nil, fmt.Errorf("%w: pacing_delay_ms must not be negative", ErrInvalidConfig)
	}
	return &cfg, nil
}
