package websocket

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"roomchat/internal/chat"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 54 * time.Second
	writeWait    = 10 * time.Second

	// Outbound buffer per connection; events beyond it are dropped
	// rather than blocking the coordinator.
	sendBuffer = 256
)

// Client pumps one websocket connection. It implements chat.Sink so the
// coordinator can fan events out to it without touching the transport.
type Client struct {
	conn        *websocket.Conn
	coordinator *chat.Coordinator
	connID      string
	identity    string
	send        chan chat.Event
	done        chan struct{}
}

func NewClient(conn *websocket.Conn, coordinator *chat.Coordinator, connID, identity string) *Client {
	return &Client{
		conn:        conn,
		coordinator: coordinator,
		connID:      connID,
		identity:    identity,
		send:        make(chan chat.Event, sendBuffer),
		done:        make(chan struct{}),
	}
}

// TrySend queues an event for delivery. Never blocks; reports false when
// the client's buffer is full.
func (c *Client) TrySend(ev chat.Event) bool {
	select {
	case c.send <- ev:
		return true
	default:
		return false
	}
}

// ReadPump decodes inbound events and hands them to the coordinator.
// Its deferred cleanup is unconditional: however the connection ends,
// the coordinator's disconnect handling runs exactly once.
func (c *Client) ReadPump() {
	defer func() {
		c.coordinator.Disconnect(c.connID)
		close(c.done)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var ev chat.ClientEvent
		if err := c.conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("conn", c.connID).Str("user", c.identity).Msg("websocket read error")
			}
			return
		}

		c.coordinator.HandleEvent(c.connID, ev)
	}
}

// WritePump drains the send buffer onto the wire and keeps the
// connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(ev); err != nil {
				log.Debug().Err(err).Str("conn", c.connID).Msg("websocket write error")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
