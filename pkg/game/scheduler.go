package game

import (
	"context"
	"errors"
	"math/rand"
	"sync"

	"github.com/cbodonnell/wordfall/pkg/game/types"
)

var errRoundStopping = errors.New("round is stopping")

// launcher starts fn on a new goroutine, or fails without starting it.
type launcher func(ctx context.Context, fn func()) error

func goLauncher(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return errRoundStopping
	}
	go fn()
	return nil
}

// EntityScheduler claims a slot and a unique word and starts its worker.
type EntityScheduler struct {
	rc         *roundContext
	vocabulary []string
	launch     launcher

	rngLock sync.Mutex
	rng     *rand.Rand
}

func newEntityScheduler(rc *roundContext, vocabulary []string, rng *rand.Rand) *EntityScheduler {
	return &EntityScheduler{
		rc:         rc,
		vocabulary: vocabulary,
		launch:     goLauncher,
		rng:        rng,
	}
}

func (s *EntityScheduler) intn(n int) int {
	s.rngLock.Lock()
	defer s.rngLock.Unlock()
	return s.rng.Intn(n)
}

// Spawn tries to put one new word into play and reports whether it did.
func (s *EntityScheduler) Spawn(ctx context.Context) bool {
	if len(s.vocabulary) == 0 {
		return false
	}

	table := s.rc.table
	table.lock.Lock()
	defer table.lock.Unlock()

	idx := table.claimLocked()
	if idx < 0 {
		s.rc.logger.Trace("No free slot, skipping spawn")
		return false
	}

	text, ok := s.claimWord()
	if !ok {
		s.rc.logger.Trace("Every candidate word is already falling, skipping spawn")
		return false
	}

	kind := s.pickKind()
	x := 0
	if s.rc.cfg.FieldWidth > len(text) {
		x = s.intn(s.rc.cfg.FieldWidth - len(text) + 1)
	}

	slot := &table.slots[idx]
	*slot = wordEntity{
		occupied: true,
		active:   true,
		text:     text,
		x:        x,
		y:        0,
		kind:     kind,
		lastDrop: s.rc.now(),
		done:     make(chan struct{}),
	}

	worker := &wordWorker{
		rc:   s.rc,
		slot: slot,
		text: text,
		kind: kind,
	}
	if err := s.launch(ctx, func() { worker.run(ctx) }); err != nil {
		s.rc.active.Remove(text)
		slot.clear()
		s.rc.logger.Warn("Failed to start worker for %q: %v", text, err)
		return false
	}

	s.rc.logger.Trace("Spawned %s word %q in slot %d at x=%d", kind, text, idx, x)
	return true
}

// claimWord picks a word that is not already falling and registers it in the
// active set. Random picks are tried first, bounded by the vocabulary size,
// then the vocabulary is walked once from a random offset.
// The caller must hold the table lock.
func (s *EntityScheduler) claimWord() (string, bool) {
	n := len(s.vocabulary)
	for i := 0; i < n; i++ {
		text := s.vocabulary[s.intn(n)]
		if !s.eligible(text) {
			continue
		}
		if s.rc.active.Insert(text) {
			return text, true
		}
	}

	offset := s.intn(n)
	for i := 0; i < n; i++ {
		text := s.vocabulary[(offset+i)%n]
		if !s.eligible(text) {
			continue
		}
		if s.rc.active.Insert(text) {
			return text, true
		}
	}
	return "", false
}

func (s *EntityScheduler) eligible(text string) bool {
	return text != "" && len(text) <= s.rc.cfg.MaxWordLength
}

func (s *EntityScheduler) pickKind() types.WordKind {
	roll := s.intn(100)
	switch {
	case roll < s.rc.cfg.HazardPercent:
		return types.WordKindHazard
	case roll < s.rc.cfg.HazardPercent+s.rc.cfg.BonusPercent:
		return types.WordKindBonus
	default:
		return types.WordKindNormal
	}
}
