package game

import (
	"sync"

	"github.com/cbodonnell/wordfall/pkg/game/types"
)

// GameState holds the score, lives and over flag shared by every goroutine of a round.
// When a caller also needs the slot table, the table lock must be taken first.
type GameState struct {
	lock   sync.Mutex
	score  int
	lives  int
	over   bool
	reason types.EndReason
}

func NewGameState(lives int) *GameState {
	return &GameState{
		lives: lives,
	}
}

// reset prepares the state for a new round.
func (g *GameState) reset(lives int) {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.score = 0
	g.lives = lives
	g.over = false
	g.reason = types.EndReasonNone
}

func (g *GameState) Score() int {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.score
}

func (g *GameState) Lives() int {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.lives
}

func (g *GameState) Over() bool {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.over
}

func (g *GameState) Reason() types.EndReason {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.reason
}

// Read returns score, lives and over under a single acquisition.
func (g *GameState) Read() (score int, lives int, over bool) {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.score, g.lives, g.over
}

// Award adds points unless the round is already over.
func (g *GameState) Award(points int) bool {
	if points < 0 {
		return false
	}
	g.lock.Lock()
	defer g.lock.Unlock()
	if g.over {
		return false
	}
	g.score += points
	return true
}

// LoseLife takes one life unless the round is already over, ending the
// round when no lives are left. It reports whether a life was taken.
func (g *GameState) LoseLife() bool {
	g.lock.Lock()
	defer g.lock.Unlock()
	if g.over {
		return false
	}
	g.lives--
	if g.lives <= 0 {
		g.lives = 0
		g.over = true
		g.reason = types.EndReasonLivesExhausted
	}
	return true
}

// End sets over with the given reason. Only the first call has an effect.
func (g *GameState) End(reason types.EndReason) bool {
	g.lock.Lock()
	defer g.lock.Unlock()
	if g.over {
		return false
	}
	g.over = true
	g.reason = reason
	return true
}
