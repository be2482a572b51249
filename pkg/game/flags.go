package game

import (
	"sync/atomic"

	"github.com/cbodonnell/wordfall/pkg/game/types"
)

// StopFlags are the two externally owned stop requests observed by a round.
// The engine only reads them; the client sets them from signal or key handlers.
type StopFlags struct {
	process atomic.Bool
	round   atomic.Bool
}

// StopProcess requests that the whole application exit.
func (f *StopFlags) StopProcess() {
	f.process.Store(true)
}

// StopRound requests that only the current round end.
func (f *StopFlags) StopRound() {
	f.round.Store(true)
}

// ResetRound clears the round-only flag before the next round.
func (f *StopFlags) ResetRound() {
	f.round.Store(false)
}

func (f *StopFlags) ProcessStopped() bool {
	return f.process.Load()
}

func (f *StopFlags) RoundStopped() bool {
	return f.round.Load()
}

// reason returns the end reason implied by the flags, or EndReasonNone.
func (f *StopFlags) reason() types.EndReason {
	if f == nil {
		return types.EndReasonNone
	}
	if f.process.Load() {
		return types.EndReasonProcessStop
	}
	if f.round.Load() {
		return types.EndReasonRoundStop
	}
	return types.EndReasonNone
}
