package signaling

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/projectpsu986-droid/pet-monitoring/internal/common"
	"github.com/projectpsu986-droid/pet-monitoring/internal/infrastructure/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 << 10
)

// WebsocketClient is one alert subscriber connection.
type WebsocketClient struct {
	ID      uuid.UUID
	Conn    *websocket.Conn
	send    chan common.AlertEvent
	hub     *AlertHub
	writeMu sync.Mutex
	closed  chan struct{}
}

// NewWebsocketClient wraps an upgraded connection into a subscriber.
func NewWebsocketClient(id uuid.UUID, conn *websocket.Conn, hub *AlertHub) *WebsocketClient {
	c := &WebsocketClient{
		ID:     id,
		Conn:   conn,
		send:   make(chan common.AlertEvent, 16),
		hub:    hub,
		closed: make(chan struct{}),
	}

	go c.pingLoop()

	return c
}

// Read drains the connection to keep pong handling alive. Inbound payloads
// carry no meaning on this endpoint and are discarded.
func (c *WebsocketClient) Read() {
	defer func() {
		c.hub.unregister <- c
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	err := c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	if err != nil {
		wErr := errors.Wrap(err, "failed to set read deadline")
		log.Default().Info(wErr.Error())
	}
	c.Conn.SetPongHandler(func(string) error {
		err = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		if err != nil {
			wErr := errors.Wrap(err, "failed to set read deadline")
			log.Default().Info(wErr.Error())
		}
		return nil
	})

	for {
		if _, _, err = c.Conn.ReadMessage(); err != nil {
			wErr := errors.Wrap(err, "failed to read message")
			log.Default().Info(wErr.Error())
			break
		}
	}
}

// Write pumps queued events to the connection until the send channel closes.
func (c *WebsocketClient) Write() {
	for event := range c.send {
		if err := c.WriteJSON(event); err != nil {
			log.Default().Info(errors.Wrap(err, "failed to send alert event").Error())
			return
		}
	}
	// Channel closed -> send close frame
	if err := c.safeWrite(websocket.CloseMessage, []byte{}); err != nil {
		log.Default().Info(errors.Wrap(err, "failed to send close message").Error())
	}
}

func (c *WebsocketClient) safeWrite(msgType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.Conn.WriteMessage(msgType, data)
}

func (c *WebsocketClient) WriteJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.Conn.WriteJSON(v)
}

func (c *WebsocketClient) pingLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case <-ticker.C:
			if err := c.safeWrite(websocket.PingMessage, nil); err != nil {
				log.Default().Error(errors.Wrap(err, fmt.Sprintf("subscriber [%s] ping error", c.ID.String())).Error())
				return
			}
		case <-c.closed:
			return
		}
	}
}

func (c *WebsocketClient) Close() {
	select {
	case <-c.closed:
		return
	default:
		close(c.closed)
		close(c.send)
		_ = c.Conn.Close()
	}
}
