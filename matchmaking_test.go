package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnqueueWithoutCounterpartQueues(t *testing.T) {
	req := require.New(t)
	m := newMatchmaker()
	c := testClient()

	counterpart, queued := m.enqueue(c, roleDetective)
	req.True(queued)
	req.Nil(counterpart)
	req.Equal(1, m.waitingCount(roleDetective))

	// A second detective never matches the first.
	counterpart, queued = m.enqueue(testClient(), roleDetective)
	req.True(queued)
	req.Nil(counterpart)
	req.Equal(2, m.waitingCount(roleDetective))
}

func TestEnqueuePopsExactlyOneCounterpart(t *testing.T) {
	req := require.New(t)
	m := newMatchmaker()

	waiting1 := testClient()
	waiting2 := testClient()
	m.enqueue(waiting1, roleMurderer)
	m.enqueue(waiting2, roleMurderer)

	counterpart, queued := m.enqueue(testClient(), roleDetective)
	req.False(queued)
	req.NotNil(counterpart)
	req.Contains([]*Client{waiting1, waiting2}, counterpart)
	req.Equal(1, m.waitingCount(roleMurderer))
}

func TestRequeueOppositeRoleNeverSelfMatches(t *testing.T) {
	req := require.New(t)
	m := newMatchmaker()
	c := testClient()

	m.enqueue(c, roleDetective)

	// Switching roles moves the entry; c must not be popped as its own
	// counterpart.
	counterpart, queued := m.enqueue(c, roleMurderer)
	req.True(queued)
	req.Nil(counterpart)
	req.Zero(m.waitingCount(roleDetective))
	req.Equal(1, m.waitingCount(roleMurderer))
}

func TestRequeueSameRoleKeepsSingleEntry(t *testing.T) {
	req := require.New(t)
	m := newMatchmaker()
	c := testClient()

	m.enqueue(c, roleDetective)
	m.enqueue(c, roleDetective)

	req.Equal(1, m.waitingCount(roleDetective))
}

func TestMatchLeavesRequesterInNoQueue(t *testing.T) {
	req := require.New(t)
	m := newMatchmaker()

	c := testClient()
	other := testClient()
	m.enqueue(c, roleDetective)
	m.enqueue(other, roleDetective)

	// c re-queues as murderer: its stale detective entry is withdrawn and
	// the remaining detective is matched.
	counterpart, queued := m.enqueue(c, roleMurderer)
	req.False(queued)
	req.Equal(other, counterpart)

	req.Zero(m.waitingCount(roleDetective))
	req.Zero(m.waitingCount(roleMurderer))

	// Already matched, c cannot be matched a second time.
	counterpart, queued = m.enqueue(testClient(), roleMurderer)
	req.True(queued)
	req.Nil(counterpart)
}

func TestRemoveIsIdempotent(t *testing.T) {
	req := require.New(t)
	m := newMatchmaker()
	c := testClient()

	m.enqueue(c, roleMurderer)
	m.remove(c)
	m.remove(c)

	req.Zero(m.waitingCount(roleMurderer))
}

func TestQueueForRoleMatchesPair(t *testing.T) {
	req := require.New(t)
	s := newTestServer(stubAnswerer{})

	detective := testClient()
	murderer := testClient()

	s.handleQueueForRole(detective, ClientEvent{Type: "queue_for_role", Role: roleDetective})
	req.IsType(SystemMessage{}, recvMsg(t, detective))

	s.handleQueueForRole(murderer, ClientEvent{Type: "queue_for_role", Role: roleMurderer})

	matchedDetective, ok := recvMsg(t, detective).(MatchedMessage)
	req.True(ok)
	matchedMurderer, ok := recvMsg(t, murderer).(MatchedMessage)
	req.True(ok)

	// Exactly one matched event pair, sharing one fresh room.
	req.Equal(matchedDetective.Room, matchedMurderer.Room)
	_, found := s.registry.get(matchedDetective.Room)
	req.True(found)

	req.Zero(s.matchmaker.waitingCount(roleDetective))
	req.Zero(s.matchmaker.waitingCount(roleMurderer))
}

func TestQueueForRoleRejectsInvalidRole(t *testing.T) {
	req := require.New(t)
	s := newTestServer(stubAnswerer{})
	c := testClient()

	s.handleQueueForRole(c, ClientEvent{Type: "queue_for_role", Role: "spectator"})

	req.IsType(ErrorMessage{}, recvMsg(t, c))
}

func TestDisconnectClearsWaitingEntry(t *testing.T) {
	req := require.New(t)
	s := newTestServer(stubAnswerer{})
	c := testClient()

	s.handleQueueForRole(c, ClientEvent{Type: "queue_for_role", Role: roleDetective})
	req.IsType(SystemMessage{}, recvMsg(t, c))

	s.handleDisconnect(c)

	req.Zero(s.matchmaker.waitingCount(roleDetective))
}
