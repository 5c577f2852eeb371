package orch

import (
	"github.com/dkeye/Pairs/internal/app"
	"github.com/dkeye/Pairs/internal/core"
	"github.com/dkeye/Pairs/internal/domain"
)

func (o *Orchestrator) SelectCategory(sid core.SessionID, category string) error {
	return o.dispatch(sid, func(r *app.Room) bool { return r.SubmitVote(sid, domain.Category(category)) })
}

func (o *Orchestrator) FlipCard(sid core.SessionID, pos int) error {
	return o.dispatch(sid, func(r *app.Room) bool { return r.FlipCard(sid, pos) })
}

func (o *Orchestrator) PlayAgain(sid core.SessionID) error {
	return o.dispatch(sid, func(r *app.Room) bool { return r.RequestRematch(sid) })
}

func (o *Orchestrator) AcceptPlayAgain(sid core.SessionID) error {
	return o.dispatch(sid, func(r *app.Room) bool { return r.AcceptRematch(sid) })
}

func (o *Orchestrator) DeclinePlayAgain(sid core.SessionID) error {
	return o.dispatch(sid, func(r *app.Room) bool { return r.DeclineRematch(sid) })
}

func (o *Orchestrator) dispatch(sid core.SessionID, post func(*app.Room) bool) error {
	room, err := o.Rooms.RoomFor(sid)
	if err != nil {
		return err
	}
	if !post(room) {
		return app.ErrNotInRoom
	}
	return nil
}
