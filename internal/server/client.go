package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/codefionn/calcschnell/internal/logger"
	"github.com/codefionn/calcschnell/internal/session"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 8192
)

// Client is one WebSocket connection with its own calculator session
type Client struct {
	ID      string
	hub     *Hub
	conn    *websocket.Conn
	session *session.Session
	log     *logger.Logger

	sendMu sync.Mutex
	send   chan *WebMessage
	closed bool
}

// NewClient creates a new WebSocket client
func NewClient(hub *Hub, conn *websocket.Conn, sess *session.Session, log *logger.Logger) *Client {
	return &Client{
		ID:      sess.ID,
		hub:     hub,
		conn:    conn,
		session: sess,
		log:     log.WithPrefix(sess.ID),
		send:    make(chan *WebMessage, 256),
	}
}

// enqueue queues msg without blocking. It reports false if the queue is full
// or already closed.
func (c *Client) enqueue(msg *WebMessage) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// ReadPump reads client messages and applies them to the session
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Error("WebSocket read error: %v", err)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.log.Warn("failed to unmarshal message: %v", err)
			c.sendResponse(errorMessage("malformed message"))
			continue
		}

		if c.log.Enabled(logger.LevelDebug) {
			c.log.Debug("WebSocket received: %s", string(data))
		}

		if err := c.handleMessage(ctx, &msg); err != nil {
			c.log.Warn("failed to handle message: %v", err)
			c.sendResponse(errorMessage(err.Error()))
		}
	}
}

// WritePump writes queued messages and keeps the connection alive with pings
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(message)
			if err != nil {
				c.log.Error("failed to marshal message: %v", err)
				continue
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.log.Debug("failed to write message: %v", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(ctx context.Context, msg *ClientMessage) error {
	switch msg.Type {
	case MessageTypeAppend:
		c.session.AppendString(msg.Text)
		c.sendResponse(inputMessage(c.session))

	case MessageTypeBackspace:
		c.session.Backspace()
		c.sendResponse(inputMessage(c.session))

	case MessageTypeClear:
		c.session.Clear()
		c.sendResponse(inputMessage(c.session))

	case MessageTypeSubmit:
		outcome := c.session.Submit(ctx)
		if outcome.Skipped {
			c.sendResponse(inputMessage(c.session))
			return nil
		}
		c.reportOutcome(outcome)

	case MessageTypeEvaluate:
		c.reportOutcome(c.session.Evaluate(ctx, msg.Text))

	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}

	return nil
}

func (c *Client) reportOutcome(outcome session.Outcome) {
	c.sendResponse(outcomeMessage(c.session, outcome))
	if outcome.OK() {
		c.hub.Broadcast(broadcastMessage(c.ID, outcome))
	}
}

func (c *Client) sendResponse(msg *WebMessage) {
	if !c.enqueue(msg) {
		c.log.Warn("client send channel full or closed, dropping message")
	}
}
