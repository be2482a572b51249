package game

import (
	"context"
	"time"

	"github.com/cbodonnell/wordfall/pkg/game/types"
)

// wordWorker advances a single falling word on its own cadence.
type wordWorker struct {
	rc   *roundContext
	slot *wordEntity
	text string
	kind types.WordKind
}

// run loops until the word leaves play, the round ends, or ctx is cancelled.
// Each iteration sleeps one quantum first, so a stop request is observed within one quantum.
func (w *wordWorker) run(ctx context.Context) {
	defer w.exit()

	ticker := time.NewTicker(w.rc.cfg.WorkerQuantum)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if reason := w.rc.flags.reason(); reason != types.EndReasonNone {
			if w.rc.state.End(reason) {
				w.rc.logger.Debug("Word worker %q observed stop request: %s", w.text, reason)
			}
		}
		if w.rc.state.Over() {
			return
		}
		if !w.step() {
			return
		}
	}
}

// step drops the word by one row when its interval has elapsed.
// It returns false once the word is no longer active.
func (w *wordWorker) step() bool {
	// the score read takes only the game-state lock, before the table lock
	interval := w.rc.cfg.DropInterval(w.kind, w.rc.state.Score())
	now := w.rc.now()

	table := w.rc.table
	table.lock.Lock()
	defer table.lock.Unlock()

	if !w.slot.active {
		return false
	}
	if now.Sub(w.slot.lastDrop) < interval {
		return true
	}

	w.slot.y++
	w.slot.lastDrop = now
	if w.slot.y < w.rc.cfg.FieldHeight {
		return true
	}

	w.slot.active = false
	w.rc.active.Remove(w.slot.text)
	if w.kind == types.WordKindHazard {
		w.rc.logger.Trace("Hazard word %q fell out of play", w.text)
		return false
	}
	if w.rc.state.LoseLife() {
		w.rc.logger.Debug("Word %q reached the bottom, life lost", w.text)
	}
	return false
}

// exit marks the slot pending removal and makes sure the text is no longer indexed.
// The text is only removed if this entity still owns it: any path that deactivated
// the entity earlier has already removed it, and the same text may since have been
// claimed by a different slot.
func (w *wordWorker) exit() {
	table := w.rc.table
	table.lock.Lock()
	defer table.lock.Unlock()

	if w.slot.active {
		w.slot.active = false
		w.rc.active.Remove(w.slot.text)
	}
	w.slot.pending = true
	close(w.slot.done)
}
