package game

import (
	"sync"

	"github.com/cbodonnell/wordfall/pkg/game/types"
)

// InputResolver matches submitted lines against falling words and owns the input buffer.
type InputResolver struct {
	rc *roundContext

	bufferLock sync.Mutex
	buffer     []byte
	bufferMax  int
}

func newInputResolver(rc *roundContext, bufferLength int) *InputResolver {
	return &InputResolver{
		rc:        rc,
		buffer:    make([]byte, 0, bufferLength),
		bufferMax: bufferLength - 1,
	}
}

// Buffer returns the line typed so far.
func (r *InputResolver) Buffer() string {
	r.bufferLock.Lock()
	defer r.bufferLock.Unlock()
	return string(r.buffer)
}

func (r *InputResolver) clearBuffer() {
	r.bufferLock.Lock()
	defer r.bufferLock.Unlock()
	r.buffer = r.buffer[:0]
}

// stopped ends the round if a stop flag is set and reports whether the round is over.
func (r *InputResolver) stopped() bool {
	if reason := r.rc.flags.reason(); reason != types.EndReasonNone {
		r.rc.state.End(reason)
	}
	return r.rc.state.Over()
}

// Handle applies one input event. A resolution is returned only for submissions.
func (r *InputResolver) Handle(event types.InputEvent) (types.Resolution, bool) {
	if r.stopped() {
		return types.Resolution{Outcome: types.ResolutionIgnored}, false
	}

	switch event.Type {
	case types.InputRune:
		if event.Rune < 32 || event.Rune > 126 {
			return types.Resolution{}, false
		}
		r.bufferLock.Lock()
		if len(r.buffer) < r.bufferMax {
			r.buffer = append(r.buffer, byte(event.Rune))
		}
		r.bufferLock.Unlock()
		return types.Resolution{}, false
	case types.InputBackspace:
		r.bufferLock.Lock()
		if len(r.buffer) > 0 {
			r.buffer = r.buffer[:len(r.buffer)-1]
		}
		r.bufferLock.Unlock()
		return types.Resolution{}, false
	case types.InputSubmit:
		line := r.Buffer()
		if line == "" {
			return types.Resolution{}, false
		}
		return r.Submit(line), true
	case types.InputLine:
		return r.Submit(event.Line), true
	default:
		return types.Resolution{}, false
	}
}

// Submit resolves line against the falling words and clears the input buffer.
// Among exact matches a hazard wins over a bonus, a bonus over a normal word,
// and between equals the lowest word on screen wins.
func (r *InputResolver) Submit(line string) types.Resolution {
	defer r.clearBuffer()

	if line == "" {
		return types.Resolution{Outcome: types.ResolutionMiss}
	}
	if r.stopped() {
		return types.Resolution{Outcome: types.ResolutionIgnored, Text: line}
	}

	table := r.rc.table
	table.lock.Lock()
	defer table.lock.Unlock()

	var best *wordEntity
	for i := range table.slots {
		slot := &table.slots[i]
		if !slot.occupied || !slot.active || slot.text != line {
			continue
		}
		if best == nil || slot.kind.Outranks(slot.y, best.kind, best.y) {
			best = slot
		}
	}
	if best == nil {
		return types.Resolution{Outcome: types.ResolutionMiss, Text: line}
	}

	best.active = false
	r.rc.active.Remove(best.text)

	switch best.kind {
	case types.WordKindHazard:
		r.rc.state.End(types.EndReasonHazard)
		r.rc.logger.Debug("Hazard word %q typed, round over", best.text)
		return types.Resolution{Outcome: types.ResolutionHazard, Text: best.text}
	case types.WordKindBonus:
		points := r.rc.cfg.BonusPoints + len(best.text)
		if !r.rc.state.Award(points) {
			points = 0
		}
		return types.Resolution{Outcome: types.ResolutionBonus, Text: best.text, Points: points}
	default:
		points := len(best.text)
		if !r.rc.state.Award(points) {
			points = 0
		}
		return types.Resolution{Outcome: types.ResolutionNormal, Text: best.text, Points: points}
	}
}
