package signal

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/lofiflow/lounge/internal/core"
	"github.com/lofiflow/lounge/internal/domain"
)

func (ctl *ChatWSController) writePump(ctx context.Context, c *wsConn) {
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *ChatWSController) readPump(ctx context.Context, cl *client, cancel context.CancelFunc) {
	defer func() {
		// Socket gone: leave the room so the presence record is not
		// orphaned. A hard process kill still leaks it (no server TTL).
		cl.session.Leave(context.Background())
		cancel()
		cl.conn.Close()
		log.Info().Str("module", "signal").Str("user", string(cl.session.User().ID)).Msg("readPump closing")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := cl.conn.conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Error().Err(err).Str("module", "signal").Msg("readPump read error")
				}
				return
			}
			ctl.handleEnvelope(ctx, cl, data)
		}
	}
}

func (ctl *ChatWSController) handleEnvelope(ctx context.Context, cl *client, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		return
	}

	switch env.Type {
	case "hello":
		ctl.handleHello(ctx, cl, data)
	case "create":
		ctl.handleCreate(ctx, cl)
	case "join":
		ctl.handleJoin(ctx, cl, data)
	case "leave":
		ctl.handleLeave(ctx, cl)
	case "send":
		ctl.handleSend(ctx, cl, data)
	case "invite":
		ctl.handleInvite(cl)
	case "clipboard_denied":
		ctl.handleClipboardDenied(cl)
	case "ping":
		ctl.handlePing(cl)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown envelope")
	}
}

func (ctl *ChatWSController) sendJSON(c *wsConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

func (ctl *ChatWSController) sendError(cl *client, err error) {
	ctl.sendJSON(cl.conn, map[string]any{
		"type":    "error",
		"error":   errCode(err),
		"message": userMessage(err),
	})
}

func errCode(err error) string {
	switch {
	case errors.Is(err, core.ErrBackendUnavailable):
		return "backend_unavailable"
	case errors.Is(err, core.ErrInvalidCode):
		return "invalid_code"
	case errors.Is(err, core.ErrNotFound):
		return "not_found"
	case errors.Is(err, core.ErrCodeExhausted):
		return "code_exhausted"
	case errors.Is(err, domain.ErrEmptyMessage):
		return "empty_message"
	case errors.Is(err, core.ErrNoActiveRoom):
		return "no_active_room"
	case errors.Is(err, core.ErrSendFailed):
		return "send_failed"
	case errors.Is(err, core.ErrSuperseded):
		return "superseded"
	default:
		return "internal"
	}
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrBackendUnavailable):
		return "Chat is not enabled on this server."
	case errors.Is(err, core.ErrInvalidCode):
		return "Please enter a room code to join."
	case errors.Is(err, core.ErrNotFound):
		return "Room not found. Create it and share the code to invite others."
	case errors.Is(err, core.ErrCodeExhausted):
		return "Could not generate a unique room code, please try again."
	case errors.Is(err, domain.ErrEmptyMessage):
		return "Message is empty."
	case errors.Is(err, core.ErrNoActiveRoom):
		return "Join a room to send messages."
	case errors.Is(err, core.ErrSendFailed):
		return "Failed to send message."
	default:
		return "Something went wrong, please try again."
	}
}
