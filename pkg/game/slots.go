package game

import (
	"sync"
	"time"

	"github.com/cbodonnell/wordfall/pkg/game/types"
)

// wordEntity is one slot of the table. Every field is guarded by the table lock,
// except that x/y are only ever written by the entity's own worker.
type wordEntity struct {
	occupied bool
	active   bool
	pending  bool

	text     string
	x, y     int
	kind     types.WordKind
	lastDrop time.Time

	// done is closed by the worker when its goroutine returns
	done chan struct{}
}

// finished reports whether the slot holds an entity whose worker has exited.
func (w *wordEntity) finished() bool {
	if !w.occupied || w.done == nil {
		return false
	}
	select {
	case <-w.done:
		return true
	default:
		return false
	}
}

func (w *wordEntity) clear() {
	*w = wordEntity{}
}

// SlotTable is the fixed-capacity entity table guarded by the entity-table lock.
type SlotTable struct {
	lock  sync.Mutex
	slots []wordEntity
}

func NewSlotTable(capacity int) *SlotTable {
	return &SlotTable{
		slots: make([]wordEntity, capacity),
	}
}

func (t *SlotTable) Capacity() int {
	return len(t.slots)
}

// claimLocked reclaims finished slots and returns the index of a free one, or -1.
// The caller must hold t.lock.
func (t *SlotTable) claimLocked() int {
	free := -1
	for i := range t.slots {
		slot := &t.slots[i]
		if slot.finished() {
			slot.clear()
		}
		if !slot.occupied && free < 0 {
			free = i
		}
	}
	return free
}

// Reclaim frees every slot whose worker has fully exited and returns how many were freed.
func (t *SlotTable) Reclaim() int {
	t.lock.Lock()
	defer t.lock.Unlock()

	n := 0
	for i := range t.slots {
		if t.slots[i].finished() {
			t.slots[i].clear()
			n++
		}
	}
	return n
}

// Occupied returns the number of slots holding an entity, active or not.
func (t *SlotTable) Occupied() int {
	t.lock.Lock()
	defer t.lock.Unlock()

	n := 0
	for i := range t.slots {
		if t.slots[i].occupied {
			n++
		}
	}
	return n
}

// ActiveTexts returns the texts of every active entity.
func (t *SlotTable) ActiveTexts() []string {
	t.lock.Lock()
	defer t.lock.Unlock()

	var texts []string
	for i := range t.slots {
		if t.slots[i].occupied && t.slots[i].active {
			texts = append(texts, t.slots[i].text)
		}
	}
	return texts
}

// Views copies every active entity for rendering.
func (t *SlotTable) Views() []types.EntityView {
	t.lock.Lock()
	defer t.lock.Unlock()

	views := make([]types.EntityView, 0, len(t.slots))
	for i := range t.slots {
		slot := &t.slots[i]
		if !slot.occupied || !slot.active {
			continue
		}
		views = append(views, types.EntityView{
			Text: slot.text,
			X:    slot.x,
			Y:    slot.y,
			Kind: slot.kind,
		})
	}
	return views
}

// markAllPending deactivates every occupied slot, removes active texts from set,
// and returns the done channels of the workers that still have to be joined.
func (t *SlotTable) markAllPending(set *ActiveSet) []chan struct{} {
	t.lock.Lock()
	defer t.lock.Unlock()

	var workers []chan struct{}
	for i := range t.slots {
		slot := &t.slots[i]
		if !slot.occupied {
			continue
		}
		if slot.active {
			slot.active = false
			set.Remove(slot.text)
		}
		slot.pending = true
		if slot.done != nil {
			workers = append(workers, slot.done)
		}
	}
	return workers
}

// joinFinished clears every pending slot whose worker has exited and
// returns how many workers are still running.
func (t *SlotTable) joinFinished() int {
	t.lock.Lock()
	defer t.lock.Unlock()

	remaining := 0
	for i := range t.slots {
		slot := &t.slots[i]
		if !slot.occupied {
			continue
		}
		if slot.finished() {
			slot.clear()
			continue
		}
		remaining++
	}
	return remaining
}

// reset empties the table, leaving any leaked worker with a detached entity.
func (t *SlotTable) reset() {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.slots = make([]wordEntity, len(t.slots))
}
