package main

import (
	"strings"
	"sync"
	"time"
)

// Entry is a single line of room conversation.
type Entry struct {
	Speaker string `json:"speaker"`
	Content string `json:"content"`
}

// Clue is a fact extracted from an answer, labeled by how actionable
// it is to the investigation.
type Clue struct {
	Text      string    `json:"text"`
	Type      string    `json:"type"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// Memory is a room's conversation history plus its extracted clues.
// Each room owns exactly one Memory; appends from concurrently
// resolving questions are serialized here.
type Memory struct {
	mu      sync.RWMutex
	entries []Entry
	clues   []Clue
}

func newMemory() *Memory {
	return &Memory{}
}

// addExchange appends a question and its answer as one critical section,
// so interleaved resolutions never split a Q/A pair.
func (m *Memory) addExchange(question Entry, answer Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append(m.entries, question, answer)
}

func (m *Memory) addClues(clues []Clue) {
	if len(clues) == 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.clues = append(m.clues, clues...)
}

func (m *Memory) getEntries() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

func (m *Memory) getClues() []Clue {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Clue, len(m.clues))
	copy(out, m.clues)
	return out
}

// transcript renders the conversation for prompt building.
func (m *Memory) transcript() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var sb strings.Builder
	for _, e := range m.entries {
		sb.WriteString(e.Speaker)
		sb.WriteString(": ")
		sb.WriteString(e.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}
