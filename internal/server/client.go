package server

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// inboundRate caps commands per connection; excess commands are dropped
// without feedback.
const (
	inboundRate  = 30
	inboundBurst = 60
)

// client is one connected participant. The websocket connection is not
// safe for concurrent writes, so every outbound message goes through
// send.
type client struct {
	id      string
	conn    *websocket.Conn
	limiter *rate.Limiter
	log     zerolog.Logger

	mu     sync.Mutex
	roomID string
	slot   int
}

func newClient(id string, conn *websocket.Conn, log zerolog.Logger) *client {
	return &client{
		id:      id,
		conn:    conn,
		limiter: rate.NewLimiter(rate.Limit(inboundRate), inboundBurst),
		log:     log.With().Str("client", id).Logger(),
	}
}

// send writes one message, fire-and-forget: delivery failure is logged
// and the engine never retries.
func (c *client) send(msg WSOut) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.WriteJSON(msg); err != nil {
		c.log.Debug().Err(err).Str("type", msg.Type).Msg("write failed")
	}
}

func (c *client) setRoom(roomID string, slot int) {
	c.mu.Lock()
	c.roomID = roomID
	c.slot = slot
	c.mu.Unlock()
}

func (c *client) clearRoom() {
	c.setRoom("", 0)
}

func (c *client) room() (string, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomID, c.slot
}
