package main

import "sync"

// Session is the weak back-reference from a live connection to its room
// and role. The Room owns the authoritative member slot; this table only
// exists so event handlers can find the room for a connection.
type Session struct {
	Role   string
	Room   string
	UserID string
}

type SessionTable struct {
	mu       sync.RWMutex
	sessions map[*Client]Session
}

func newSessionTable() *SessionTable {
	return &SessionTable{
		sessions: make(map[*Client]Session),
	}
}

func (t *SessionTable) set(c *Client, s Session) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.sessions[c] = s
}

func (t *SessionTable) get(c *Client) (Session, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s, ok := t.sessions[c]
	return s, ok
}

func (t *SessionTable) remove(c *Client) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.sessions, c)
}
