package game

import (
	"sync/atomic"
	"time"

	"github.com/cbodonnell/wordfall/pkg/game/types"
)

// ShutdownCoordinator tracks the round phase and drains workers when the round ends.
//
//	Idle -> Running -> Over -> Draining -> Idle
type ShutdownCoordinator struct {
	rc    *roundContext
	phase atomic.Uint32
}

func newShutdownCoordinator(rc *roundContext) *ShutdownCoordinator {
	return &ShutdownCoordinator{rc: rc}
}

func (s *ShutdownCoordinator) Phase() types.RoundPhase {
	return types.RoundPhase(s.phase.Load())
}

func (s *ShutdownCoordinator) transition(from, to types.RoundPhase) bool {
	if !s.phase.CompareAndSwap(uint32(from), uint32(to)) {
		return false
	}
	s.rc.logger.Debug("Round phase %s -> %s", from, to)
	return true
}

// begin moves Idle -> Running.
func (s *ShutdownCoordinator) begin() bool {
	return s.transition(types.RoundPhaseIdle, types.RoundPhaseRunning)
}

// poll samples the stop flags and moves Running -> Over once the round has ended.
// It reports whether the round is over.
func (s *ShutdownCoordinator) poll() bool {
	if reason := s.rc.flags.reason(); reason != types.EndReasonNone {
		s.rc.state.End(reason)
	}
	if !s.rc.state.Over() {
		return false
	}
	s.transition(types.RoundPhaseRunning, types.RoundPhaseOver)
	return true
}

// drain moves Over -> Draining -> Idle. Every slot is marked pending removal, then
// the workers are joined in passes separated by DrainInterval. After DrainAttempts
// passes the drain gives up and returns the number of workers left running; those
// goroutines keep a detached slot and exit on their own once they wake.
func (s *ShutdownCoordinator) drain() int {
	s.transition(types.RoundPhaseRunning, types.RoundPhaseOver)
	s.transition(types.RoundPhaseOver, types.RoundPhaseDraining)

	s.rc.table.markAllPending(s.rc.active)

	remaining := 0
	for attempt := 1; ; attempt++ {
		remaining = s.rc.table.joinFinished()
		if remaining == 0 || attempt >= s.rc.cfg.DrainAttempts {
			break
		}
		time.Sleep(s.rc.cfg.DrainInterval)
	}

	if remaining > 0 {
		s.rc.logger.Warn("Drain gave up with %d word workers still running", remaining)
	}

	s.rc.table.reset()
	s.rc.active.Clear()
	s.transition(types.RoundPhaseDraining, types.RoundPhaseIdle)
	return remaining
}
