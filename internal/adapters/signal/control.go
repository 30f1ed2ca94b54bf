package signal

import (
	"github.com/rs/zerolog/log"
)

func (ctl *ChatWSController) handlePing(cl *client) {
	ctl.sendJSON(cl.conn, map[string]any{"type": "pong"})
}

// handleInvite returns the deep-link URL; the page performs the actual
// clipboard write.
func (ctl *ChatWSController) handleInvite(cl *client) {
	link, err := cl.session.InviteLink()
	if err != nil {
		ctl.sendError(cl, err)
		return
	}
	ctl.sendJSON(cl.conn, map[string]any{
		"type": "invite_link",
		"url":  link,
	})
}

// handleClipboardDenied records a failed clipboard write reported by the
// page. Non-blocking: the user already saw the inline error.
func (ctl *ChatWSController) handleClipboardDenied(cl *client) {
	log.Warn().Str("module", "signal").Str("user", string(cl.session.User().ID)).Msg("clipboard write denied on client")
}
