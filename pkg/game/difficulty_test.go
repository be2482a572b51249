package game

import (
	"testing"
	"time"

	"github.com/cbodonnell/wordfall/pkg/game/constants"
	"github.com/cbodonnell/wordfall/pkg/game/types"
	"github.com/stretchr/testify/assert"
)

func TestConfig_DropInterval(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name      string
		kind      types.WordKind
		score     int
		want      time.Duration
		wantLevel int
	}{
		{name: "start", kind: types.WordKindNormal, score: 0, want: 500 * time.Millisecond, wantLevel: 1},
		{name: "just below second tier", kind: types.WordKindNormal, score: 49, want: 500 * time.Millisecond, wantLevel: 1},
		{name: "second tier", kind: types.WordKindNormal, score: 50, want: 425 * time.Millisecond, wantLevel: 2},
		{name: "third tier", kind: types.WordKindNormal, score: 120, want: 350 * time.Millisecond, wantLevel: 3},
		{name: "fourth tier", kind: types.WordKindNormal, score: 150, want: 275 * time.Millisecond, wantLevel: 4},
		{name: "top tier", kind: types.WordKindNormal, score: 5000, want: 200 * time.Millisecond, wantLevel: 5},
		{name: "hazard ignores score", kind: types.WordKindHazard, score: 5000, want: constants.HazardDropInterval, wantLevel: 5},
		{name: "bonus ignores score", kind: types.WordKindBonus, score: 0, want: constants.BonusDropInterval, wantLevel: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.DropInterval(tt.kind, tt.score))
			assert.Equal(t, tt.wantLevel, cfg.Level(tt.score))
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "no slots", mutate: func(c *Config) { c.MaxWords = 0 }, wantErr: true},
		{name: "no lives", mutate: func(c *Config) { c.StartingLives = 0 }, wantErr: true},
		{name: "percentages over 100", mutate: func(c *Config) { c.HazardPercent, c.BonusPercent = 60, 50 }, wantErr: true},
		{name: "all hazard", mutate: func(c *Config) { c.HazardPercent, c.BonusPercent = 100, 0 }},
		{name: "field too small", mutate: func(c *Config) { c.FieldWidth = 10 }, wantErr: true},
		{name: "no tiers", mutate: func(c *Config) { c.Tiers = nil }, wantErr: true},
		{name: "first tier above zero", mutate: func(c *Config) {
			c.Tiers = []constants.DifficultyTier{{MinScore: 10, DropInterval: time.Second}}
		}, wantErr: true},
		{name: "tier interval not decreasing", mutate: func(c *Config) {
			c.Tiers = []constants.DifficultyTier{
				{MinScore: 0, DropInterval: time.Second},
				{MinScore: 10, DropInterval: 2 * time.Second},
			}
		}, wantErr: true},
		{name: "zero quantum", mutate: func(c *Config) { c.WorkerQuantum = 0 }, wantErr: true},
		{name: "no drain attempts", mutate: func(c *Config) { c.DrainAttempts = 0 }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
