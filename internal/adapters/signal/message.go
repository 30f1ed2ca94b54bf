package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lofiflow/lounge/internal/domain"
)

type messageDTO struct {
	ID          string `json:"id"`
	AuthorID    string `json:"author_id"`
	DisplayName string `json:"display_name"`
	Text        string `json:"text"`
	System      bool   `json:"system,omitempty"`
	CreatedAt   int64  `json:"created_at"`
}

func (ctl *ChatWSController) pushMessages(cl *client, msgs []domain.Message) {
	out := make([]messageDTO, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageDTO{
			ID:          m.ID,
			AuthorID:    string(m.AuthorID),
			DisplayName: m.DisplayName,
			Text:        m.Text,
			System:      m.System,
			CreatedAt:   m.CreatedAt.UnixMilli(),
		})
	}
	ctl.sendJSON(cl.conn, map[string]any{
		"type":     "messages",
		"messages": out,
	})
}

func (ctl *ChatWSController) pushPresence(cl *client, n int) {
	ctl.sendJSON(cl.conn, map[string]any{
		"type":  "presence",
		"count": n,
	})
}

func (ctl *ChatWSController) handleSend(ctx context.Context, cl *client, data []byte) {
	var p struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad send payload")
		ctl.sendJSON(cl.conn, map[string]any{"type": "error", "error": "bad_payload"})
		return
	}
	if !ctl.limiter.Allow(cl.session.User().ID) {
		ctl.sendJSON(cl.conn, map[string]any{
			"type":    "error",
			"error":   "rate_limited",
			"message": "Slow down a little.",
		})
		return
	}
	if err := cl.session.Send(ctx, p.Text); err != nil {
		ctl.sendError(cl, err)
		return
	}
	// The live subscription renders the message; the page only clears
	// its input on this ack.
	ctl.sendJSON(cl.conn, map[string]any{
		"type": "sent",
		"at":   time.Now().UnixMilli(),
	})
}
