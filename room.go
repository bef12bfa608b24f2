package main

import (
	"context"
	"crypto/rand"
	"sync"
	"time"
)

const (
	roleDetective = "detective"
	roleMurderer  = "murderer"
)

// Room is one isolated game session: two role slots, the character the
// murderer currently possesses, and the room's own conversation memory.
type Room struct {
	code string

	mu         sync.RWMutex
	detective  *Client
	murderer   *Client
	possessed  string
	createdAt  time.Time
	lastActive time.Time

	memory *Memory
}

func newRoom(code string) *Room {
	now := time.Now()
	return &Room{
		code:       code,
		createdAt:  now,
		lastActive: now,
		memory:     newMemory(),
	}
}

func (r *Room) touch() {
	r.mu.Lock()
	r.lastActive = time.Now()
	r.mu.Unlock()
}

// slot returns a pointer to the member slot for role. Callers must hold r.mu.
func (r *Room) slot(role string) **Client {
	if role == roleDetective {
		return &r.detective
	}
	return &r.murderer
}

// routing is the consistent snapshot the Question Router decides on:
// the possessed character and the murderer connection, read together so a
// concurrent disconnect cannot split them.
func (r *Room) routing() (possessed string, murderer *Client) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.possessed, r.murderer
}

func (r *Room) getDetective() *Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.detective
}

// members returns every live connection in the room, for broadcasts.
func (r *Room) members() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Client
	if r.detective != nil {
		out = append(out, r.detective)
	}
	if r.murderer != nil {
		out = append(out, r.murderer)
	}
	return out
}

// Registry owns room lifecycle and membership slots, keyed by short
// human-typeable codes. All mutation goes through its lock; rooms are
// never removed except by the idle reaper.
type Registry struct {
	cfg   *Config
	store RoomStore

	mu    sync.Mutex
	rooms map[string]*Room
}

func newRegistry(cfg *Config, store RoomStore) *Registry {
	reg := &Registry{
		cfg:   cfg,
		store: store,
		rooms: make(map[string]*Room),
	}
	if cfg.roomTimeout > 0 {
		go reg.reaperLoop()
	}
	return reg
}

// newRoomCode generates a crypto-random room code and ensures it doesn't
// collide with existing rooms. Callers must hold reg.mu.
func (reg *Registry) newRoomCodeLocked() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	for {
		buf := make([]byte, reg.cfg.codeLength)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, reg.cfg.codeLength)
		for i := range out {
			out[i] = letters[int(buf[i])%len(letters)]
		}
		code := string(out)

		if _, exists := reg.rooms[code]; !exists {
			return code
		}
	}
}

// create makes a fresh room, honoring preferred only if it is unused.
// The new room is persisted best-effort; persistence failure never blocks
// creation.
func (reg *Registry) create(preferred string) *Room {
	reg.mu.Lock()

	code := preferred
	if _, taken := reg.rooms[code]; code == "" || taken {
		code = reg.newRoomCodeLocked()
	}

	room := newRoom(code)
	reg.rooms[code] = room

	reg.mu.Unlock()

	logf(reg.cfg, "ROOMS: Created room %s", code)

	persist(reg.cfg, "create_room", func(ctx context.Context) error {
		return reg.store.CreateRoom(ctx, code)
	})

	return room
}

func (reg *Registry) get(code string) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[code]
	return room, ok
}

// lookup finds a live room, or hydrates an empty one if durable storage
// confirms the code exists. Hydration recovers joinability after a process
// restart at the cost of the room's prior in-memory memory and clues.
func (reg *Registry) lookup(ctx context.Context, code string) (*Room, bool) {
	if room, ok := reg.get(code); ok {
		return room, true
	}

	exists, err := reg.store.RoomExists(ctx, code)
	if err != nil {
		logf(reg.cfg, "DB: room_exists %s failed: %v", code, err)
		return nil, false
	}
	if !exists {
		return nil, false
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	// Another lookup may have hydrated it while we asked the store.
	if room, ok := reg.rooms[code]; ok {
		return room, true
	}

	room := newRoom(code)
	reg.rooms[code] = room
	logf(reg.cfg, "ROOMS: Hydrated room %s from store", code)

	return room, true
}

// bindRole claims a member slot. First writer wins: a slot held by a
// different live connection rejects the bind, while re-binding the same
// connection is idempotent.
func (reg *Registry) bindRole(room *Room, c *Client, role string) error {
	if role != roleDetective && role != roleMurderer {
		return errUnknownRole
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	slot := room.slot(role)
	if *slot != nil && *slot != c {
		return errRoleOccupied
	}
	*slot = c
	room.lastActive = time.Now()

	return nil
}

// releaseRole clears the slot only if it still holds this exact connection,
// so a stale disconnect can't clobber a slot re-occupied by a reconnect.
func (reg *Registry) releaseRole(room *Room, c *Client, role string) {
	if role != roleDetective && role != roleMurderer {
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	slot := room.slot(role)
	if *slot == c {
		*slot = nil
		room.lastActive = time.Now()
	}
}

// setPossessed records which character the murderer answers as. Only the
// connection currently holding the murderer slot may set it; it may be
// called repeatedly to change characters.
func (reg *Registry) setPossessed(room *Room, c *Client, name string) error {
	room.mu.Lock()
	defer room.mu.Unlock()

	if room.murderer != c {
		return errNotMurderer
	}
	room.possessed = name
	room.lastActive = time.Now()

	return nil
}

// reaperLoop periodically removes rooms that have sat empty longer than
// the configured idle timeout. Occupied rooms are never reaped.
func (reg *Registry) reaperLoop() {
	ticker := time.NewTicker(reg.cfg.roomTimeout / 2)
	for range ticker.C {
		cutoff := time.Now().Add(-reg.cfg.roomTimeout)

		reg.mu.Lock()
		for code, room := range reg.rooms {
			room.mu.RLock()
			idle := room.lastActive.Before(cutoff)
			empty := room.detective == nil && room.murderer == nil
			room.mu.RUnlock()

			if idle && empty {
				delete(reg.rooms, code)
				logf(reg.cfg, "ROOMS: Reaped idle room %s", code)
			}
		}
		reg.mu.Unlock()
	}
}
