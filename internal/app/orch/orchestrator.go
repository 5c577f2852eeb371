// Package orch routes inbound player events into the owning room.
package orch

import (
	"context"
	"errors"

	"github.com/dkeye/Pairs/internal/app"
	"github.com/dkeye/Pairs/internal/core"
	"github.com/dkeye/Pairs/internal/domain"
	"github.com/rs/zerolog/log"
)

type Orchestrator struct {
	Registry *app.Registry
	Rooms    *app.RoomManager
}

func New(reg *app.Registry, rooms *app.RoomManager) *Orchestrator {
	return &Orchestrator{Registry: reg, Rooms: rooms}
}

// Connect registers a freshly opened connection.
func (o *Orchestrator) Connect(sid core.SessionID, sess core.MemberSession, cancel context.CancelFunc) {
	o.Registry.BindSignal(sid, sess, cancel)
}

// SearchGame queues sid under name. Rejections are returned, never broadcast.
func (o *Orchestrator) SearchGame(sid core.SessionID, name string) error {
	if _, ok := o.Registry.RoomOf(sid); ok {
		if room, err := o.Rooms.RoomFor(sid); err == nil && room.Phase() == domain.PhaseFinished {
			return app.ErrRematchUndecided
		}
		return app.ErrAlreadyInRoom
	}
	if err := o.Registry.Rename(sid, name); err != nil {
		return err
	}
	room, err := o.Rooms.Enqueue(sid)
	if err != nil {
		return err
	}
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(room.ID())).Msg("search game")
	return nil
}

// OnDisconnect is peer loss: the room is torn down and the connection forgotten.
func (o *Orchestrator) OnDisconnect(sid core.SessionID) {
	o.Rooms.Leave(sid)
	o.Registry.Unbind(sid)
	log.Info().Str("module", "orch").Str("sid", string(sid)).Msg("disconnected")
}

// IsRejection reports whether err is a client-facing protocol violation.
func IsRejection(err error) bool {
	return errors.Is(err, app.ErrNotInRoom) ||
		errors.Is(err, app.ErrAlreadyInRoom) ||
		errors.Is(err, app.ErrRematchUndecided) ||
		errors.Is(err, domain.ErrUsernameEmpty) ||
		errors.Is(err, domain.ErrUsernameTooLong)
}
