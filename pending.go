package main

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// resolveStatus reports the outcome of resolving a pending question.
type resolveStatus int

const (
	resolveOk resolveStatus = iota
	resolveDuplicate
	resolveUnknown
)

// PendingQuestion is a single-resolution reply slot with a deadline.
// Exactly one writer may resolve it; the awaiting side races the reply
// against the deadline.
type PendingQuestion struct {
	ID        string
	Room      string
	Character string
	Question  string
	Created   time.Time
	Deadline  time.Time

	reply    chan string
	resolved bool
}

// await blocks until the slot resolves or the deadline elapses. The second
// return value is false on deadline elapse.
func (p *PendingQuestion) await() (string, bool) {
	timer := time.NewTimer(time.Until(p.Deadline))
	defer timer.Stop()

	select {
	case answer := <-p.reply:
		return answer, true
	case <-timer.C:
		return "", false
	}
}

// PendingTable correlates opaque request ids with their reply slots.
// Entries must be discarded by the awaiting side once it finishes, or the
// table grows without bound.
type PendingTable struct {
	mu      sync.Mutex
	entries map[string]*PendingQuestion
}

func newPendingTable() *PendingTable {
	return &PendingTable{
		entries: make(map[string]*PendingQuestion),
	}
}

// register allocates a fresh correlation id and reply slot.
func (t *PendingTable) register(room, character, question string, timeout time.Duration) *PendingQuestion {
	now := time.Now()
	p := &PendingQuestion{
		ID:        uuid.NewString(),
		Room:      room,
		Character: character,
		Question:  question,
		Created:   now,
		Deadline:  now.Add(timeout),
		reply:     make(chan string, 1),
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries[p.ID] = p
	return p
}

// resolve delivers an answer into the slot exactly once. Second and later
// attempts are no-ops, as are attempts against unknown or already-discarded
// ids; both are reported for logging but are never fatal.
func (t *PendingTable) resolve(id, answer string) resolveStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.entries[id]
	if !ok {
		return resolveUnknown
	}
	if p.resolved {
		return resolveDuplicate
	}
	p.resolved = true
	p.reply <- answer

	return resolveOk
}

// discard removes the entry unconditionally.
func (t *PendingTable) discard(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.entries, id)
}

func (t *PendingTable) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.entries)
}
