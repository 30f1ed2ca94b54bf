// Package signal is the WebSocket adapter between the SPA and the chat
// core: one connection, one session, envelope-dispatched operations.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/lofiflow/lounge/internal/app"
	"github.com/lofiflow/lounge/internal/config"
	"github.com/lofiflow/lounge/internal/core"
	"github.com/lofiflow/lounge/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

type ChatWSController struct {
	Service *app.Service
	Cfg     *config.Config
	limiter *SendRateLimiter
}

func NewChatWSController(svc *app.Service, cfg *config.Config) *ChatWSController {
	return &ChatWSController{
		Service: svc,
		Cfg:     cfg,
		limiter: NewSendRateLimiter(10, 10*time.Second),
	}
}

// wsConn wraps the raw socket with a buffered outbound queue.
type wsConn struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- data:
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

// client is the per-connection pairing of socket and chat session.
type client struct {
	conn    *wsConn
	session *core.Session
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (ctl *ChatWSController) HandleChat(ctx context.Context, c *gin.Context) {
	token := app.ClientToken(c.GetString("client_token"))
	log.Info().Str("module", "signal").Str("token", string(token)).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	if ctl.Cfg.ReadLimit > 0 {
		ws.SetReadLimit(ctl.Cfg.ReadLimit)
	}

	conn := &wsConn{
		conn: ws,
		send: make(chan []byte, 32),
	}
	cl := &client{
		conn:    conn,
		session: ctl.Service.NewSession(token),
	}
	cl.session.SetSinks(
		func(msgs []domain.Message) { ctl.pushMessages(cl, msgs) },
		func(n int) { ctl.pushPresence(cl, n) },
	)

	ctx, cancel := context.WithCancel(ctx)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cl, cancel)
}
