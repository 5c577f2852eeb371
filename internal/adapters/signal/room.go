package signal

import (
	"github.com/dkeye/Pairs/internal/core"
	"github.com/dkeye/Pairs/internal/protocol"
)

func (ctl *SignalWSController) handleSelectCategory(sid core.SessionID, conn core.SignalConnection, env protocol.Envelope) {
	var p protocol.SelectCategoryPayload
	if err := env.Bind(&p); err != nil {
		ctl.sendError(sid, conn, err)
		return
	}
	ctl.reply(sid, conn, ctl.Orch.SelectCategory(sid, p.Category))
}

func (ctl *SignalWSController) handleFlipCard(sid core.SessionID, conn core.SignalConnection, env protocol.Envelope) {
	var p protocol.FlipCardPayload
	if err := env.Bind(&p); err != nil {
		ctl.sendError(sid, conn, err)
		return
	}
	ctl.reply(sid, conn, ctl.Orch.FlipCard(sid, *p.CardIndex))
}
