package websocket

import (
	"chat-signal/domain/event"
	"chat-signal/errors"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	gorilla "github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Client is one websocket connection. It satisfies contract.Connection:
// Consume only enqueues, the write pump does the network I/O.
type Client struct {
	id        string
	conn      *gorilla.Conn
	log       *slog.Logger
	send      chan []byte
	closeOnce sync.Once
	done      chan struct{}
}

func NewClient(log *slog.Logger, conn *gorilla.Conn, bufferSize int) *Client {
	return &Client{
		id:   uuid.NewString(),
		conn: conn,
		log:  log,
		send: make(chan []byte, bufferSize),
		done: make(chan struct{}),
	}
}

func (c *Client) ID() string { return c.id }

// Consume drops the event when the client is closed or too slow to drain its buffer.
func (c *Client) Consume(_ context.Context, e event.Event) error {
	frame, err := json.Marshal(e)
	if err != nil {
		return err
	}
	select {
	case <-c.done:
		return gorilla.ErrCloseSent
	default:
	}
	select {
	case c.send <- frame:
		return nil
	case <-c.done:
		return gorilla.ErrCloseSent
	default:
		return errors.ErrSendBufferFull
	}
}

// Close stops the write pump. Safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// readPump hands every frame to onFrame until the peer goes away.
func (c *Client) readPump(onFrame func([]byte)) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if gorilla.IsUnexpectedCloseError(err, gorilla.CloseGoingAway, gorilla.CloseAbnormalClosure) {
				c.log.Debug("Unexpected close", "conn", c.id, "error", err)
			}
			return
		}
		onFrame(frame)
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
			_ = c.conn.WriteMessage(gorilla.CloseMessage, []byte{})
			return
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(gorilla.TextMessage, frame); err != nil {
				c.log.Debug("Write failed", "conn", c.id, "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(gorilla.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
