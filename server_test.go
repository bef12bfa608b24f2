package main

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		codeLength:   6,
		replyTimeout: 2 * time.Minute,
	}
}

// testClient is a connection without a socket behind it; handlers only
// ever touch the send channel, which tests read directly.
func testClient() *Client {
	return &Client{
		id:   uuid.NewString(),
		send: make(chan any, 32),
	}
}

type stubAnswerer struct {
	answer string
	clues  []Clue
	err    error
}

func (a stubAnswerer) Answer(_ context.Context, _ Character, _ string, _ *Memory) (string, []Clue, error) {
	return a.answer, a.clues, a.err
}

func newTestServer(answerer Answerer) *GameServer {
	return newGameServer(testConfig(), newRoster(), NoopStore{}, answerer)
}

func recvMsg(t *testing.T, c *Client) any {
	t.Helper()

	select {
	case msg := <-c.send:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func drain(c *Client) {
	for {
		select {
		case <-c.send:
		default:
			return
		}
	}
}

// joinRoom binds a client into a room through the real handler so the
// session table is populated the same way production traffic would.
func joinRoom(t *testing.T, s *GameServer, c *Client, room, role string) {
	t.Helper()

	s.handleJoinRole(c, ClientEvent{Type: "join_role", Role: role, Room: room})

	msg := recvMsg(t, c)
	require.IsType(t, SystemMessage{}, msg)
}

func TestCreateRoomEvent(t *testing.T) {
	req := require.New(t)
	s := newTestServer(stubAnswerer{})
	c := testClient()

	s.handleCreateRoom(c, ClientEvent{Type: "create_room"})

	msg := recvMsg(t, c)
	created, ok := msg.(RoomCreatedMessage)
	req.True(ok)
	req.Len(created.Room, 6)

	_, found := s.registry.get(created.Room)
	req.True(found)
}

func TestJoinRoleRejectsMissingFields(t *testing.T) {
	req := require.New(t)
	s := newTestServer(stubAnswerer{})
	c := testClient()

	s.handleJoinRole(c, ClientEvent{Type: "join_role", Role: roleDetective})

	msg := recvMsg(t, c)
	req.IsType(ErrorMessage{}, msg)

	// No session was recorded for the rejected join.
	_, ok := s.sessions.get(c)
	req.False(ok)
}

func TestJoinRoleRejectsUnknownRoom(t *testing.T) {
	req := require.New(t)
	s := newTestServer(stubAnswerer{})
	c := testClient()

	s.handleJoinRole(c, ClientEvent{Type: "join_role", Role: roleDetective, Room: "NOSUCH"})

	msg := recvMsg(t, c)
	errEvent, ok := msg.(ErrorMessage)
	req.True(ok)
	req.Equal("Room not found.", errEvent.Msg)
}

func TestJoinRoleOccupiedSlot(t *testing.T) {
	req := require.New(t)
	s := newTestServer(stubAnswerer{})
	room := s.registry.create("")

	first := testClient()
	second := testClient()

	joinRoom(t, s, first, room.code, roleDetective)

	s.handleJoinRole(second, ClientEvent{Type: "join_role", Role: roleDetective, Room: room.code})
	msg := recvMsg(t, second)
	req.IsType(ErrorMessage{}, msg)

	// The slot still belongs to the first connection.
	req.Equal(first, room.getDetective())
}

func TestSetHumanCharacter(t *testing.T) {
	req := require.New(t)
	s := newTestServer(stubAnswerer{})
	room := s.registry.create("")

	murderer := testClient()
	joinRoom(t, s, murderer, room.code, roleMurderer)

	s.handleSetHumanCharacter(murderer, ClientEvent{Type: "set_human_character", Character: "  mr. holloway "})

	msg := recvMsg(t, murderer)
	locked, ok := msg.(CharacterLockedMessage)
	req.True(ok)
	req.Equal("Mr. Holloway", locked.Character)

	possessed, _ := room.routing()
	req.Equal("Mr. Holloway", possessed)
}

func TestSetHumanCharacterRejectsNonMurderer(t *testing.T) {
	req := require.New(t)
	s := newTestServer(stubAnswerer{})
	room := s.registry.create("")

	detective := testClient()
	joinRoom(t, s, detective, room.code, roleDetective)

	s.handleSetHumanCharacter(detective, ClientEvent{Type: "set_human_character", Character: "Mr. Holloway"})

	msg := recvMsg(t, detective)
	req.IsType(ErrorMessage{}, msg)

	possessed, _ := room.routing()
	req.Empty(possessed)
}

func TestSetHumanCharacterRejectsUnknownName(t *testing.T) {
	req := require.New(t)
	s := newTestServer(stubAnswerer{})
	room := s.registry.create("")

	murderer := testClient()
	joinRoom(t, s, murderer, room.code, roleMurderer)

	s.handleSetHumanCharacter(murderer, ClientEvent{Type: "set_human_character", Character: "Colonel Mustard"})

	msg := recvMsg(t, murderer)
	req.IsType(ErrorMessage{}, msg)
}

func TestDisconnectReleasesOnlyOwnSlot(t *testing.T) {
	req := require.New(t)
	s := newTestServer(stubAnswerer{})
	room := s.registry.create("")

	detective := testClient()
	murderer := testClient()
	joinRoom(t, s, detective, room.code, roleDetective)
	joinRoom(t, s, murderer, room.code, roleMurderer)

	s.handleDisconnect(murderer)

	req.Equal(detective, room.getDetective())
	_, m := room.routing()
	req.Nil(m)

	_, ok := s.sessions.get(murderer)
	req.False(ok)
}

func TestDisconnectClosesSendChannel(t *testing.T) {
	req := require.New(t)
	s := newTestServer(stubAnswerer{})
	room := s.registry.create("")

	murderer := testClient()
	joinRoom(t, s, murderer, room.code, roleMurderer)

	s.handleDisconnect(murderer)

	// The channel is closed so the write pump can exit.
	_, open := <-murderer.send
	req.False(open)

	// Late deliveries to the departed peer are dropped, not panics.
	req.NotPanics(func() {
		murderer.trySend(systemMsg("too late"))
	})

	// Disconnect handling is idempotent.
	req.NotPanics(func() {
		s.handleDisconnect(murderer)
	})
}

func TestDisconnectIgnoresStaleSlot(t *testing.T) {
	req := require.New(t)
	s := newTestServer(stubAnswerer{})
	room := s.registry.create("")

	old := testClient()
	joinRoom(t, s, old, room.code, roleDetective)

	// The old connection drops its slot, a new one claims it, and only
	// then does the old disconnect get processed.
	s.registry.releaseRole(room, old, roleDetective)
	replacement := testClient()
	joinRoom(t, s, replacement, room.code, roleDetective)

	s.handleDisconnect(old)

	req.Equal(replacement, room.getDetective())
}
