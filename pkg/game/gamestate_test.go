package game

import (
	"sync"
	"testing"

	"github.com/cbodonnell/wordfall/pkg/game/types"
	"github.com/stretchr/testify/assert"
)

func TestGameState_LoseLife(t *testing.T) {
	g := NewGameState(2)

	assert.True(t, g.LoseLife())
	assert.False(t, g.Over())
	assert.True(t, g.LoseLife())
	assert.True(t, g.Over())
	assert.Equal(t, types.EndReasonLivesExhausted, g.Reason())

	// no penalties once the round is over
	assert.False(t, g.LoseLife())
	assert.Equal(t, 0, g.Lives())
}

func TestGameState_AwardStopsWhenOver(t *testing.T) {
	g := NewGameState(5)

	assert.True(t, g.Award(10))
	assert.False(t, g.Award(-1))
	assert.True(t, g.End(types.EndReasonRoundStop))
	assert.False(t, g.Award(10))

	score, lives, over := g.Read()
	assert.Equal(t, 10, score)
	assert.Equal(t, 5, lives)
	assert.True(t, over)
}

func TestGameState_EndOnce(t *testing.T) {
	g := NewGameState(5)

	var (
		wg   sync.WaitGroup
		lock sync.Mutex
		wins int
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reason := types.EndReasonHazard
			if i%2 == 0 {
				reason = types.EndReasonRoundStop
			}
			if g.End(reason) {
				lock.Lock()
				wins++
				lock.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.True(t, g.Over())

	g.reset(3)
	assert.False(t, g.Over())
	assert.Equal(t, types.EndReasonNone, g.Reason())
	assert.Equal(t, 3, g.Lives())
}
