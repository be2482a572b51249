package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/cbodonnell/wordfall/pkg/game/constants"
)

// ErrInvalidConfig is wrapped by every Config validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the tunables of a round.
type Config struct {
	MaxWords      int
	MaxWordLength int
	StartingLives int
	BonusPoints   int

	// HazardPercent and BonusPercent split spawned words by kind; the rest are normal.
	HazardPercent int
	BonusPercent  int

	Tiers              []constants.DifficultyTier
	HazardDropInterval time.Duration
	BonusDropInterval  time.Duration

	SpawnInterval time.Duration
	WorkerQuantum time.Duration
	ControlTick   time.Duration
	DrainAttempts int
	DrainInterval time.Duration

	FieldWidth  int
	FieldHeight int
}

// DefaultConfig returns the standard tuning for an 80x24 terminal.
func DefaultConfig() Config {
	return Config{
		MaxWords:           constants.MaxWords,
		MaxWordLength:      constants.MaxWordLength,
		StartingLives:      constants.StartingLives,
		BonusPoints:        constants.BonusPoints,
		HazardPercent:      constants.HazardPercent,
		BonusPercent:       constants.BonusPercent,
		Tiers:              constants.DifficultyTiers(),
		HazardDropInterval: constants.HazardDropInterval,
		BonusDropInterval:  constants.BonusDropInterval,
		SpawnInterval:      constants.SpawnInterval,
		WorkerQuantum:      constants.WorkerQuantum,
		ControlTick:        constants.ControlTick,
		DrainAttempts:      constants.DrainAttempts,
		DrainInterval:      constants.DrainInterval,
		FieldWidth:         80,
		FieldHeight:        20,
	}
}

// Validate checks that c can drive a round.
func (c Config) Validate() error {
	switch {
	case c.MaxWords < 1:
		return fmt.Errorf("%w: MaxWords must be positive", ErrInvalidConfig)
	case c.MaxWordLength < 1:
		return fmt.Errorf("%w: MaxWordLength must be positive", ErrInvalidConfig)
	case c.StartingLives < 1:
		return fmt.Errorf("%w: StartingLives must be positive", ErrInvalidConfig)
	case c.BonusPoints < 0:
		return fmt.Errorf("%w: BonusPoints must not be negative", ErrInvalidConfig)
	case c.HazardPercent < 0 || c.BonusPercent < 0 || c.HazardPercent+c.BonusPercent > 100:
		return fmt.Errorf("%w: kind percentages must be within 0..100", ErrInvalidConfig)
	case c.HazardDropInterval <= 0 || c.BonusDropInterval <= 0:
		return fmt.Errorf("%w: drop intervals must be positive", ErrInvalidConfig)
	case c.SpawnInterval <= 0 || c.WorkerQuantum <= 0 || c.ControlTick <= 0:
		return fmt.Errorf("%w: loop intervals must be positive", ErrInvalidConfig)
	case c.DrainAttempts < 1 || c.DrainInterval < 0:
		return fmt.Errorf("%w: drain budget must be positive", ErrInvalidConfig)
	case c.FieldWidth < constants.MinFieldWidth || c.FieldHeight < constants.MinFieldHeight:
		return fmt.Errorf("%w: play field must be at least %dx%d", ErrInvalidConfig, constants.MinFieldWidth, constants.MinFieldHeight)
	}
	return validateTiers(c.Tiers)
}

func validateTiers(tiers []constants.DifficultyTier) error {
	if len(tiers) == 0 {
		return fmt.Errorf("%w: at least one difficulty tier is required", ErrInvalidConfig)
	}
	if tiers[0].MinScore != 0 {
		return fmt.Errorf("%w: first difficulty tier must start at score 0", ErrInvalidConfig)
	}
	for i, tier := range tiers {
		if tier.DropInterval <= 0 {
			return fmt.Errorf("%w: tier %d has a non-positive drop interval", ErrInvalidConfig, i)
		}
		if i == 0 {
			continue
		}
		prev := tiers[i-1]
		if tier.MinScore <= prev.MinScore || tier.DropInterval >= prev.DropInterval {
			return fmt.Errorf("%w: tier %d must raise the score and shorten the interval", ErrInvalidConfig, i)
		}
	}
	return nil
}
