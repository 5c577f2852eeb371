package signal

import (
	"github.com/dkeye/Pairs/internal/core"
	"github.com/dkeye/Pairs/internal/protocol"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleSearchGame(sid core.SessionID, conn core.SignalConnection, env protocol.Envelope) {
	var p protocol.SearchGamePayload
	if err := env.Bind(&p); err != nil {
		ctl.sendError(sid, conn, err)
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("name", p.PlayerName).Msg("search game")
	ctl.reply(sid, conn, ctl.Orch.SearchGame(sid, p.PlayerName))
}
