package main

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one live websocket connection.
type Client struct {
	id   string
	conn *websocket.Conn

	mu     sync.Mutex
	closed bool
	send   chan any
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan any, 16),
	}
}

// trySend queues a message without blocking. A peer that has stopped
// draining its channel loses messages rather than stalling the sender;
// per-room notifications are fire-and-forget. Sends to a departed peer
// are dropped: a question can still resolve after its murderer or
// detective has disconnected.
func (c *Client) trySend(msg any) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}

// close shuts the send channel exactly once, ending the writePump and
// turning later trySend calls into no-ops.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Client) readPump(s *GameServer) {
	defer func() {
		s.handleDisconnect(c)
		_ = c.conn.Close()
	}()

	for {
		var ev ClientEvent
		if err := c.conn.ReadJSON(&ev); err != nil {
			return
		}

		switch ev.Type {
		case "create_room":
			s.handleCreateRoom(c, ev)
		case "join_role":
			s.handleJoinRole(c, ev)
		case "queue_for_role":
			s.handleQueueForRole(c, ev)
		case "set_human_character":
			s.handleSetHumanCharacter(c, ev)
		case "ask":
			// Asks suspend on the human reply path, so each runs in its
			// own goroutine; the connection keeps processing other events.
			go s.handleAsk(c, ev)
		case "murderer_answer":
			s.handleMurdererAnswer(c, ev)
		case "murderer_ack":
			s.handleMurdererAck(c, ev)
		default:
			// ignore unknown types
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// serveWS upgrades the connection and starts its pumps.
func serveWS(cfg *Config, s *GameServer) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "SERVE: upgrade error from %s: %v", realIP(r), err)
			return
		}

		client := newClient(conn)
		logf(cfg, "SERVE: Socket connected: %s (%s)", client.id, realIP(r))

		go client.writePump()
		client.readPump(s)
	}
}
