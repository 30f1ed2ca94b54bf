package signal

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/lofiflow/lounge/internal/domain"
)

type roomState struct {
	Type     string          `json:"type"`
	Code     domain.RoomCode `json:"code"`
	Name     domain.RoomName `json:"name"`
	Count    int             `json:"count"`
	ShareURL string          `json:"share_url"`
}

func (ctl *ChatWSController) pushRoomState(cl *client, room *domain.Room) {
	ctl.sendJSON(cl.conn, roomState{
		Type:     "room_state",
		Code:     room.Code,
		Name:     room.Name,
		Count:    cl.session.Occupants(),
		ShareURL: cl.session.ShareURL(),
	})
}

// handleHello runs once per page load: identifies the user and attempts
// the deep-link auto-join if the page URL carries a room code.
func (ctl *ChatWSController) handleHello(ctx context.Context, cl *client, data []byte) {
	var p struct {
		Type string `json:"type"`
		URL  string `json:"url"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad hello payload")
		ctl.sendJSON(cl.conn, map[string]any{"type": "error", "error": "bad_payload"})
		return
	}

	user := cl.session.User()
	ctl.sendJSON(cl.conn, map[string]any{
		"type":         "whoami",
		"user_id":      user.ID,
		"display_name": user.DisplayName,
	})

	attempted, err := cl.session.AutoJoin(ctx, p.URL)
	if !attempted {
		return
	}
	if err != nil {
		ctl.sendError(cl, err)
		return
	}
	if room := cl.session.Room(); room != nil {
		ctl.pushRoomState(cl, room)
	}
}

func (ctl *ChatWSController) handleCreate(ctx context.Context, cl *client) {
	room, err := cl.session.Create(ctx)
	if err != nil {
		ctl.sendError(cl, err)
		return
	}
	log.Info().Str("module", "signal").Str("user", string(cl.session.User().ID)).Str("room", string(room.Code)).Msg("room created")
	ctl.pushRoomState(cl, room)
}

func (ctl *ChatWSController) handleJoin(ctx context.Context, cl *client, data []byte) {
	var p struct {
		Type string `json:"type"`
		Code string `json:"code"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendJSON(cl.conn, map[string]any{"type": "error", "error": "bad_payload"})
		return
	}
	room, err := cl.session.Join(ctx, p.Code)
	if err != nil {
		ctl.sendError(cl, err)
		return
	}
	log.Info().Str("module", "signal").Str("user", string(cl.session.User().ID)).Str("room", string(room.Code)).Msg("joined")
	ctl.pushRoomState(cl, room)
}

func (ctl *ChatWSController) handleLeave(ctx context.Context, cl *client) {
	cl.session.Leave(ctx)
	ctl.sendJSON(cl.conn, map[string]any{
		"type":      "left",
		"share_url": cl.session.ShareURL(),
	})
}
