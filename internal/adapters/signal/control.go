package signal

import (
	"errors"

	"github.com/dkeye/Pairs/internal/app/orch"
	"github.com/dkeye/Pairs/internal/core"
	"github.com/dkeye/Pairs/internal/protocol"
	"github.com/rs/zerolog/log"
)

var (
	ErrUnknownType = errors.New("unknown message type")
	ErrRateLimited = errors.New("too many messages, slow down")
)

func (ctl *SignalWSController) handlePing(sid core.SessionID, conn core.SignalConnection) {
	ctl.send(sid, conn, protocol.Pong, nil)
}

// reply reports err to the sender, if any.
func (ctl *SignalWSController) reply(sid core.SessionID, conn core.SignalConnection, err error) {
	if err != nil {
		ctl.sendError(sid, conn, err)
	}
}

func (ctl *SignalWSController) sendError(sid core.SessionID, conn core.SignalConnection, err error) {
	ev := log.Warn()
	if quietError(err) {
		ev = log.Debug()
	}
	ev.Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("rejected message")
	ctl.send(sid, conn, protocol.Error, protocol.ErrorPayload{Message: err.Error()})
}

// quietError reports client mistakes, logged at debug level only.
func quietError(err error) bool {
	return orch.IsRejection(err) ||
		errors.Is(err, protocol.ErrInvalid) ||
		errors.Is(err, protocol.ErrBadEnvelope) ||
		errors.Is(err, ErrUnknownType) ||
		errors.Is(err, ErrRateLimited)
}

func (ctl *SignalWSController) send(sid core.SessionID, conn core.SignalConnection, typ string, payload any) {
	frame, err := protocol.Encode(typ, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("send marshal")
		return
	}
	if err := conn.TrySend(frame); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Str("type", typ).Msg("send dropped")
	}
}
