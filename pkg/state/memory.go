package state

import (
	"context"
	"fmt"
	"sync"

	gametypes "github.com/cbodonnell/wordfall/pkg/game/types"
)

// InMemoryStateManager keeps the latest snapshot behind a read/write lock so a
// renderer can read while the control loop publishes.
type InMemoryStateManager struct {
	lock     sync.RWMutex
	snapshot *gametypes.Snapshot
}

func NewInMemoryStateManager() *InMemoryStateManager {
	return &InMemoryStateManager{}
}

func (m *InMemoryStateManager) Get(ctx context.Context) (*gametypes.Snapshot, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.snapshot.Copy(), nil
}

func (m *InMemoryStateManager) Set(ctx context.Context, snapshot *gametypes.Snapshot) error {
	if snapshot == nil {
		return fmt.Errorf("snapshot is nil")
	}

	m.lock.Lock()
	defer m.lock.Unlock()
	m.snapshot = snapshot.Copy()
	return nil
}
