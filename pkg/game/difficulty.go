package game

import (
	"time"

	"github.com/cbodonnell/wordfall/pkg/game/constants"
	"github.com/cbodonnell/wordfall/pkg/game/types"
)

// tierIndex returns the index of the highest tier whose minimum score is reached.
func tierIndex(tiers []constants.DifficultyTier, score int) int {
	idx := 0
	for i, tier := range tiers {
		if score >= tier.MinScore {
			idx = i
		}
	}
	return idx
}

// NormalDropInterval returns the drop interval of normal words at the given score.
func (c Config) NormalDropInterval(score int) time.Duration {
	if len(c.Tiers) == 0 {
		return constants.DifficultyTiers()[0].DropInterval
	}
	return c.Tiers[tierIndex(c.Tiers, score)].DropInterval
}

// DropInterval returns the drop interval of a word of the given kind at the given score.
func (c Config) DropInterval(kind types.WordKind, score int) time.Duration {
	switch kind {
	case types.WordKindHazard:
		return c.HazardDropInterval
	case types.WordKindBonus:
		return c.BonusDropInterval
	default:
		return c.NormalDropInterval(score)
	}
}

// Level is the 1-based difficulty tier shown to the player.
func (c Config) Level(score int) int {
	if len(c.Tiers) == 0 {
		return 1
	}
	return tierIndex(c.Tiers, score) + 1
}
