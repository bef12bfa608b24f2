package main

import "sync"

// Matchmaker pairs an unassigned detective with an unassigned murderer.
// Each waiting set holds connections for one role; a connection sits in at
// most one set at a time.
type Matchmaker struct {
	mu      sync.Mutex
	waiting map[string]map[*Client]struct{}
}

func newMatchmaker() *Matchmaker {
	return &Matchmaker{
		waiting: map[string]map[*Client]struct{}{
			roleDetective: make(map[*Client]struct{}),
			roleMurderer:  make(map[*Client]struct{}),
		},
	}
}

func counterpartRole(role string) string {
	if role == roleDetective {
		return roleMurderer
	}
	return roleDetective
}

// enqueue either matches c against a waiting counterpart, returning it, or
// parks c in its own role's waiting set. Exactly one counterpart is popped
// per match; selection order among waiters is arbitrary. A connection sits
// in at most one waiting set, so re-queueing first withdraws any earlier
// entry; c can never be handed back as its own counterpart, and a matched
// requester waits nowhere.
func (m *Matchmaker) enqueue(c *Client, role string) (counterpart *Client, queued bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.waiting[roleDetective], c)
	delete(m.waiting[roleMurderer], c)

	for other := range m.waiting[counterpartRole(role)] {
		delete(m.waiting[counterpartRole(role)], other)
		return other, false
	}

	m.waiting[role][c] = struct{}{}
	return nil, true
}

// remove drops c from any waiting set. Idempotent; called on disconnect
// and after a successful match.
func (m *Matchmaker) remove(c *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.waiting[roleDetective], c)
	delete(m.waiting[roleMurderer], c)
}

func (m *Matchmaker) waitingCount(role string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.waiting[role])
}
