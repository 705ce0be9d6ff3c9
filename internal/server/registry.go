package server

import "sync"

// Membership is the non-owning back-reference from a connection to the room
// it belongs to. It exists only so the disconnect path can route to the right
// room; the room itself owns all gameplay state.
type Membership struct {
	ConnID   string
	RoomCode string
	Nickname string
}

type PlayerRegistry struct {
	members map[string]Membership // connID -> membership
	mu      sync.RWMutex
}

func NewPlayerRegistry() *PlayerRegistry {
	return &PlayerRegistry{
		members: make(map[string]Membership),
	}
}

func (pr *PlayerRegistry) Store(m Membership) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.members[m.ConnID] = m
}

func (pr *PlayerRegistry) Get(connID string) (Membership, error) {
	pr.mu.RLock()
	defer pr.mu.RUnlock()

	m, exists := pr.members[connID]
	if !exists {
		return Membership{}, ErrNotInRoom
	}
	return m, nil
}

func (pr *PlayerRegistry) Remove(connID string) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	delete(pr.members, connID)
}

func (pr *PlayerRegistry) Count() int {
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	return len(pr.members)
}
