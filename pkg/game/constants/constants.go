package constants

import "time"

const (

	// MaxWords is the number of slots in the entity table
	MaxWords int = 20
	// MaxWordLength is the longest word the engine will spawn, in bytes
	MaxWordLength int = 30
	// InputBufferLength is the size of the input line including its terminator
	InputBufferLength int = 40
	// StartingLives is the number of lives at the start of a round
	StartingLives int = 5
	// BonusPoints is added on top of the word length when a bonus word is typed
	BonusPoints int = 50

	// HazardPercent is the chance a spawned word is a hazard
	HazardPercent int = 33
	// BonusPercent is the chance a spawned word is a bonus
	BonusPercent int = 33

	// HazardDropInterval is how long a hazard word waits between rows
	HazardDropInterval time.Duration = 350 * time.Millisecond
	// BonusDropInterval is how long a bonus word waits between rows
	BonusDropInterval time.Duration = 200 * time.Millisecond

	// SpawnInterval is the time between two scheduler runs
	SpawnInterval time.Duration = 1500 * time.Millisecond
	// WorkerQuantum is the sleep between two iterations of a word worker
	WorkerQuantum time.Duration = 8 * time.Millisecond
	// ControlTick is the sleep between two iterations of the control loop
	ControlTick time.Duration = 30 * time.Millisecond

	// DrainAttempts bounds the number of join passes during shutdown
	DrainAttempts int = 100
	// DrainInterval is the pause between two join passes
	DrainInterval time.Duration = 20 * time.Millisecond

	// MinFieldWidth is the narrowest play field a round can start on
	MinFieldWidth int = 20
	// MinFieldHeight is the shortest play field a round can start on
	MinFieldHeight int = 5
)

// DifficultyTier maps a minimum score to the drop interval of normal words.
type DifficultyTier struct {
	MinScore     int
	DropInterval time.Duration
}

// DifficultyTiers returns the default tiers, lowest score first.
func DifficultyTiers() []DifficultyTier {
	return []DifficultyTier{
		{MinScore: 0, DropInterval: 500 * time.Millisecond},
		{MinScore: 50, DropInterval: 425 * time.Millisecond},
		{MinScore: 100, DropInterval: 350 * time.Millisecond},
		{MinScore: 150, DropInterval: 275 * time.Millisecond},
		{MinScore: 200, DropInterval: 200 * time.Millisecond},
	}
}
