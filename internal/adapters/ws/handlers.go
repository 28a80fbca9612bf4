package ws

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/terminalboard/server/internal/core"
)

func (ctl *Controller) handleJoin(sid core.SessionID, data []byte) {
	var p struct {
		Type     string `json:"type"`
		Room     string `json:"room"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("bad join payload")
		return
	}
	log.Info().Str("module", "ws").Str("sid", string(sid)).Str("room", p.Room).Msg("join")
	ctl.Coord.Join(sid, p.Room, p.Username)
}

func (ctl *Controller) handleLeave(sid core.SessionID, data []byte) {
	var p struct {
		Type string `json:"type"`
		Room string `json:"room"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("bad leave payload")
		return
	}
	log.Info().Str("module", "ws").Str("sid", string(sid)).Str("room", p.Room).Msg("leave")
	ctl.Coord.Leave(sid, p.Room)
}

func (ctl *Controller) handleTyping(sid core.SessionID, data []byte) {
	var p struct {
		Type     string `json:"type"`
		Room     string `json:"room"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("bad typing payload")
		return
	}
	ctl.Coord.TypingSignal(sid, p.Room, p.Username)
}

func (ctl *Controller) handleChatMessage(ctx context.Context, data []byte) {
	var p struct {
		Type     string `json:"type"`
		Author   string `json:"author"`
		Room     string `json:"room"`
		Kind     string `json:"kind"`
		Text     string `json:"text"`
		MediaRef string `json:"mediaRef"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("bad chatMessage payload")
		return
	}
	ctl.Coord.ChatMessage(ctx, p.Author, p.Room, p.Kind, p.Text, p.MediaRef)
}

func (ctl *Controller) handlePing(c *wsConn) {
	ctl.sendJSON(c, map[string]any{"type": "pong"})
}
