// Package ws is the websocket transport for the chat coordinator. It
// owns the gorilla connections and their pump goroutines; everything
// stateful happens in app.
package ws

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/terminalboard/server/internal/app"
	"github.com/terminalboard/server/internal/core"
	"github.com/terminalboard/server/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

type Controller struct {
	Coord      *app.Coordinator
	ReadLimit  int64
	PingPeriod time.Duration
}

func NewController(coord *app.Coordinator, readLimit int64, pingPeriod time.Duration) *Controller {
	return &Controller{
		Coord:      coord,
		ReadLimit:  readLimit,
		PingPeriod: pingPeriod,
	}
}

// wsConn adapts a gorilla connection to core.SignalConnection. Sends are
// non-blocking; a full buffer surfaces as backpressure and the event is
// simply lost to that recipient.
type wsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleChat upgrades the request and starts the session. Every upgrade
// mints a fresh SessionID: a reconnecting client is a new connection and
// re-establishes its room membership by joining again.
func (ctl *Controller) HandleChat(ctx context.Context, c *gin.Context) {
	sid := core.SessionID(uuid.NewString())
	log.Info().Str("module", "ws").Str("sid", string(sid)).Msg("new WS connection")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("ws upgrade")
		return
	}
	if ctl.ReadLimit > 0 {
		conn.SetReadLimit(ctl.ReadLimit)
	}

	wc := &wsConn{
		conn: conn,
		send: make(chan core.Frame, 32),
	}

	meta := domain.NewMember(c.Query("username"))
	sess := core.NewMemberSession(meta, wc)
	ctx, cancel := context.WithCancel(ctx)
	ctl.Coord.Connect(sid, sess, cancel)

	go ctl.writePump(ctx, wc)
	go ctl.readPump(ctx, sid, wc)
}
