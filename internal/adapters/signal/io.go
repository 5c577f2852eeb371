package signal

import (
	"context"
	"fmt"
	"time"

	"github.com/dkeye/Pairs/internal/core"
	"github.com/dkeye/Pairs/internal/protocol"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeWait = 5 * time.Second

func (ctl *SignalWSController) pongWait() time.Duration {
	return ctl.opts.PingPeriod * 10 / 9
}

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump ping")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
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

// readPump owns the connection lifetime: when it returns the player is gone.
func (ctl *SignalWSController) readPump(ctx context.Context, cancel context.CancelFunc, sid core.SessionID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		ctl.Orch.OnDisconnect(sid)
		if ctl.limiter != nil {
			ctl.limiter.Forget(sid)
		}
		cancel()
		c.Close()
	}()

	wait := ctl.pongWait()
	_ = c.conn.SetReadDeadline(time.Now().Add(wait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wait))
	})

	for {
		if ctx.Err() != nil {
			log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump ctx done")
			return
		}
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(wait))
		ctl.handleSignal(sid, c, data)
	}
}

func (ctl *SignalWSController) handleSignal(sid core.SessionID, c core.SignalConnection, data []byte) {
	env, err := protocol.Decode(data)
	if err != nil {
		ctl.sendError(sid, c, err)
		return
	}
	if ctl.limiter != nil && !ctl.limiter.Allow(sid) {
		ctl.sendError(sid, c, ErrRateLimited)
		return
	}

	switch env.Type {
	case protocol.SearchGame:
		ctl.handleSearchGame(sid, c, env)
	case protocol.SelectCategory:
		ctl.handleSelectCategory(sid, c, env)
	case protocol.FlipCard:
		ctl.handleFlipCard(sid, c, env)
	case protocol.PlayAgain:
		ctl.reply(sid, c, ctl.Orch.PlayAgain(sid))
	case protocol.AcceptPlayAgain:
		ctl.reply(sid, c, ctl.Orch.AcceptPlayAgain(sid))
	case protocol.DeclinePlayAgain:
		ctl.reply(sid, c, ctl.Orch.DeclinePlayAgain(sid))
	case protocol.Ping:
		ctl.handlePing(sid, c)
	default:
		ctl.sendError(sid, c, fmt.Errorf("%w %q", ErrUnknownType, env.Type))
	}
}
