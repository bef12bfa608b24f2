package main

import (
	"context"
	"strings"
)

// GameServer wires the shared registries together and handles every
// client event. It is the only owner of the room registry, session table,
// matchmaking queues and correlation table; handlers receive it by
// reference, never through globals.
type GameServer struct {
	cfg        *Config
	roster     *Roster
	registry   *Registry
	sessions   *SessionTable
	matchmaker *Matchmaker
	pending    *PendingTable
	answerer   Answerer
	store      RoomStore
}

func newGameServer(cfg *Config, roster *Roster, store RoomStore, answerer Answerer) *GameServer {
	return &GameServer{
		cfg:        cfg,
		roster:     roster,
		registry:   newRegistry(cfg, store),
		sessions:   newSessionTable(),
		matchmaker: newMatchmaker(),
		pending:    newPendingTable(),
		answerer:   answerer,
		store:      store,
	}
}

func (s *GameServer) broadcast(room *Room, msg any) {
	for _, member := range room.members() {
		member.trySend(msg)
	}
}

func (s *GameServer) handleCreateRoom(c *Client, ev ClientEvent) {
	room := s.registry.create(strings.TrimSpace(ev.PreferredCode))

	c.trySend(RoomCreatedMessage{Type: "room_created", Room: room.code})
}

func (s *GameServer) handleJoinRole(c *Client, ev ClientEvent) {
	role := ev.Role
	code := strings.TrimSpace(ev.Room)

	logf(s.cfg, "JOIN: %s role=%s room=%s", c.id, role, code)

	if role == "" || code == "" {
		c.trySend(errorMsg("Missing role or room."))
		return
	}
	if role != roleDetective && role != roleMurderer {
		c.trySend(errorMsg(errUnknownRole.Error()))
		return
	}

	room, ok := s.registry.lookup(context.Background(), code)
	if !ok {
		c.trySend(errorMsg("Room not found."))
		return
	}

	userID, err := verifyJoinToken(s.cfg, ev.AuthToken)
	if err != nil {
		logf(s.cfg, "JOIN: token verification failed for %s: %v", c.id, err)
	}

	if err := s.registry.bindRole(room, c, role); err != nil {
		c.trySend(errorMsg(err.Error()))
		return
	}

	s.sessions.set(c, Session{Role: role, Room: code, UserID: userID})

	persist(s.cfg, "add_room_member", func(ctx context.Context) error {
		return s.store.AddRoomMember(ctx, code, role, userID)
	})

	switch role {
	case roleDetective:
		logf(s.cfg, "JOIN: Detective connected to %s: %s", code, c.id)
		c.trySend(systemMsg("Detective joined."))
	case roleMurderer:
		logf(s.cfg, "JOIN: Murderer connected to %s: %s", code, c.id)
		c.trySend(systemMsg("Murderer joined."))
	}
}

func (s *GameServer) handleQueueForRole(c *Client, ev ClientEvent) {
	role := ev.Role
	if role != roleDetective && role != roleMurderer {
		c.trySend(errorMsg("Invalid role for matchmaking."))
		return
	}

	counterpart, queued := s.matchmaker.enqueue(c, role)
	if queued {
		logf(s.cfg, "MATCH: %s queued as %s", c.id, role)
		c.trySend(systemMsg("Queued for " + role + " matchmaking."))
		return
	}

	room := s.registry.create("")
	logf(s.cfg, "MATCH: Paired %s with %s in %s", c.id, counterpart.id, room.code)

	matched := MatchedMessage{Type: "matched", Room: room.code}
	c.trySend(matched)
	counterpart.trySend(matched)
}

func (s *GameServer) handleSetHumanCharacter(c *Client, ev ClientEvent) {
	sess, ok := s.sessions.get(c)
	if !ok {
		c.trySend(errorMsg("No room for session."))
		return
	}
	room, ok := s.registry.get(sess.Room)
	if !ok {
		c.trySend(errorMsg("No room for session."))
		return
	}

	character, found := s.roster.find(ev.Character)
	if !found {
		c.trySend(errorMsg("No character named " + ev.Character + "."))
		return
	}

	// The canonical roster name is stored, so later routing comparisons
	// only ever see normalized-equal forms of the same spelling.
	if err := s.registry.setPossessed(room, c, character.Name); err != nil {
		c.trySend(errorMsg("Only murderer can set character."))
		return
	}

	logf(s.cfg, "ROOMS: %s now possesses %q in %s", c.id, character.Name, room.code)

	c.trySend(CharacterLockedMessage{Type: "character_locked", Character: character.Name})
	s.broadcast(room, systemMsg("Human now controls: "+character.Name+"."))
}

func (s *GameServer) handleMurdererAnswer(c *Client, ev ClientEvent) {
	sess, ok := s.sessions.get(c)
	if !ok {
		c.trySend(errorMsg("No room for session."))
		return
	}
	room, ok := s.registry.get(sess.Room)
	if !ok {
		c.trySend(errorMsg("No room for session."))
		return
	}

	_, murderer := room.routing()
	if murderer != c {
		c.trySend(errorMsg("Only murderer can answer."))
		return
	}

	answer := strings.TrimSpace(ev.Answer)

	switch s.pending.resolve(ev.CorrelationID, answer) {
	case resolveOk:
		logf(s.cfg, "ASK: Human reply for %s", ev.CorrelationID)
	case resolveDuplicate:
		logf(s.cfg, "ASK: Duplicate reply for %s ignored", ev.CorrelationID)
	case resolveUnknown:
		logf(s.cfg, "ASK: Reply for unknown correlation id %s ignored", ev.CorrelationID)
	}
}

// handleMurdererAck is diagnostic only.
func (s *GameServer) handleMurdererAck(c *Client, ev ClientEvent) {
	logf(s.cfg, "ASK: Ack from %s for %s", c.id, ev.CorrelationID)
}

// handleDisconnect releases only the slot this connection held, never the
// whole room, and drops it from matchmaking. Questions already awaiting
// this connection are left to resolve via their timeout fallback.
func (s *GameServer) handleDisconnect(c *Client) {
	logf(s.cfg, "SERVE: Socket disconnected: %s", c.id)

	if sess, ok := s.sessions.get(c); ok {
		if room, found := s.registry.get(sess.Room); found {
			s.registry.releaseRole(room, c, sess.Role)
		}
		s.sessions.remove(c)
	}

	s.matchmaker.remove(c)

	// Ends the writePump; anything still resolving for this connection
	// drops its deliveries instead of leaking a goroutine.
	c.close()
}
