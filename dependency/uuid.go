package dependency

import (
	"encoding/binary"
	"sync"

	"github.com/google/uuid"
)

// UUIDGenerator produces identifiers for new state elements.
type UUIDGenerator interface {
	NewUUID() uuid.UUID
}

type LiveUUID struct{}

func (LiveUUID) NewUUID() uuid.UUID { return uuid.New() }

// IncrementingUUID yields 00000000-0000-0000-0000-000000000000, ...0001, ...
type IncrementingUUID struct {
	mu   sync.Mutex
	next uint64
}

func NewIncrementingUUID() *IncrementingUUID {
	return &IncrementingUUID{}
}

func (g *IncrementingUUID) NewUUID() uuid.UUID {
	g.mu.Lock()
	defer g.mu.Unlock()

	var id uuid.UUID
	binary.BigEndian.PutUint64(id[8:], g.next)
	g.next++
	return id
}
