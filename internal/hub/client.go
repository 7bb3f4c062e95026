package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"group_chat/pkg/logger"
)

// Client owns one websocket connection. Inbound frames are handed to the
// session; outbound frames come through the buffered send channel, which
// the Hub writes into during broadcasts.
type Client struct {
	conn    *websocket.Conn
	roomID  uuid.UUID
	send    chan []byte
	session *Session
	log     logger.Logger

	// done is closed on shutdown instead of closing send, so late
	// enqueues racing a disconnect can never hit a closed channel.
	done     chan struct{}
	doneOnce sync.Once
}

func newClient(conn *websocket.Conn, roomID uuid.UUID, log logger.Logger) *Client {
	return &Client{
		conn:   conn,
		roomID: roomID,
		send:   make(chan []byte, 256),
		done:   make(chan struct{}),
		log:    log,
	}
}

// shutdown signals the write pump to stop. Safe to call more than once
// and from any goroutine.
func (c *Client) shutdown() {
	c.doneOnce.Do(func() { close(c.done) })
}

// Run starts the read and write pumps. Called once the session reaches
// Joined; before that, writes go directly through writeEvent.
func (c *Client) run() {
	go c.writePump()
	go c.readPump()
}

// enqueue puts an event on the send channel without blocking. Used for
// session-local notices after the pumps have started.
func (c *Client) enqueue(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		c.log.Error("Failed to marshal event", "error", err)
		return
	}
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- payload:
	default:
		c.log.Warn("Client send buffer full, dropping notice", "room_id", c.roomID)
	}
}

// writeEvent writes an event synchronously on the connection. Only valid
// before the write pump starts (the admission phase).
func (c *Client) writeEvent(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		c.log.Error("Failed to marshal event", "error", err)
		return
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		c.log.Warn("Failed to write event", "error", err)
	}
}

// closeWithCode sends a close frame carrying the given code, then closes
// the connection. Rejections are never silent.
func (c *Client) closeWithCode(code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage, msg)
	_ = c.conn.Close()
}

func (c *Client) readPump() {
	defer func() {
		c.session.close()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("WebSocket read error", "error", err, "room_id", c.roomID)
			}
			return
		}

		if messageType != websocket.TextMessage {
			continue
		}

		c.session.handleInbound(message)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.log.Warn("Failed to write message", "error", err, "room_id", c.roomID)
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
