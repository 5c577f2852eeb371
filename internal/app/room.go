package app

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/dkeye/Pairs/internal/core"
	"github.com/dkeye/Pairs/internal/domain"
	"github.com/dkeye/Pairs/internal/protocol"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/panics"
)

// Seat is a player slot, fixed at pairing time.
type Seat struct {
	SID  core.SessionID
	Name string
	Conn core.SignalConnection
}

type timerKey string

const (
	timerReveal    timerKey = "reveal"
	timerCountdown timerKey = "countdown"
	timerMismatch  timerKey = "mismatch"
)

type pendingTimer struct {
	seq   uint64
	timer Timer
}

// Room is a single-owner actor: every mutation runs on its run loop, in the
// order events were posted. Rooms never share state with each other.
type Room struct {
	id     domain.RoomID
	m      *RoomManager
	ctx    context.Context
	cancel context.CancelFunc
	mail   *mailbox
	logger zerolog.Logger
	phase  atomic.Int32

	// owned by the run loop
	seats    [2]*Seat
	state    roomState
	category domain.Category
	timers   map[timerKey]pendingTimer
	timerSeq uint64
	closed   bool
}

func newRoom(m *RoomManager, host *Seat) *Room {
	ctx, cancel := context.WithCancel(m.ctx)
	id := domain.NewRoomID()
	r := &Room{
		id:     id,
		m:      m,
		ctx:    ctx,
		cancel: cancel,
		mail:   newMailbox(),
		logger: log.With().Str("module", "app.room").Str("room", string(id)).Logger(),
		timers: make(map[timerKey]pendingTimer),
	}
	r.seats[0] = host
	r.setState(&waitingState{})
	return r
}

func (r *Room) ID() domain.RoomID { return r.id }

func (r *Room) Phase() domain.Phase { return domain.Phase(r.phase.Load()) }

// Done is closed once the room is destroyed or the server stops.
func (r *Room) Done() <-chan struct{} { return r.ctx.Done() }

// Post queues fn on the room's run loop. It reports false once the room is closed.
func (r *Room) Post(fn func(*Room)) bool {
	if r.ctx.Err() != nil {
		return false
	}
	return r.mail.push(fn)
}

func (r *Room) SubmitVote(sid core.SessionID, c domain.Category) bool {
	return r.Post(func(r *Room) { r.vote(sid, c) })
}

func (r *Room) FlipCard(sid core.SessionID, pos int) bool {
	return r.Post(func(r *Room) { r.flip(sid, pos) })
}

func (r *Room) RequestRematch(sid core.SessionID) bool {
	return r.Post(func(r *Room) { r.requestRematch(sid) })
}

func (r *Room) AcceptRematch(sid core.SessionID) bool {
	return r.Post(func(r *Room) { r.acceptRematch(sid) })
}

func (r *Room) DeclineRematch(sid core.SessionID) bool {
	return r.Post(func(r *Room) { r.declineRematch(sid) })
}

func (r *Room) run() {
	defer r.cancel()
	for {
		select {
		case <-r.ctx.Done():
			r.stopTimers()
			return
		case <-r.mail.ready:
		}
		for _, fn := range r.mail.drain() {
			if r.closed || r.ctx.Err() != nil {
				r.stopTimers()
				return
			}
			r.exec(fn)
		}
		if r.closed {
			return
		}
	}
}

func (r *Room) exec(fn func(*Room)) {
	var pc panics.Catcher
	pc.Try(func() { fn(r) })
	if rec := pc.Recovered(); rec != nil {
		r.logger.Error().Err(rec.AsError()).Bytes("stack", rec.Stack).Msg("room handler panicked")
		r.teardown("internal error", protocol.Error, protocol.ErrorPayload{Message: "internal error"}, "")
	}
}

func (r *Room) setState(s roomState) {
	r.state = s
	r.phase.Store(int32(s.phase()))
}

func (r *Room) slotOf(sid core.SessionID) int {
	for i, s := range r.seats {
		if s != nil && s.SID == sid {
			return i
		}
	}
	return -1
}

func (r *Room) ref(slot int) protocol.PlayerRef {
	return protocol.PlayerRef{Slot: slot, Name: r.seats[slot].Name}
}

func (r *Room) names() []string {
	out := make([]string, 0, 2)
	for _, s := range r.seats {
		if s != nil {
			out = append(out, s.Name)
		}
	}
	return out
}

// schedule replaces any pending task under key. The task runs on the loop and
// is dropped if it was canceled or replaced in the meantime.
func (r *Room) schedule(key timerKey, d time.Duration, fn func(*Room)) {
	r.stopTimer(key)
	r.timerSeq++
	seq := r.timerSeq
	t := r.m.opts.Scheduler.AfterFunc(d, func() {
		r.Post(func(r *Room) {
			cur, ok := r.timers[key]
			if !ok || cur.seq != seq {
				return
			}
			delete(r.timers, key)
			fn(r)
		})
	})
	r.timers[key] = pendingTimer{seq: seq, timer: t}
}

func (r *Room) stopTimer(key timerKey) {
	if t, ok := r.timers[key]; ok {
		t.timer.Stop()
		delete(r.timers, key)
	}
}

func (r *Room) stopTimers() {
	for key := range r.timers {
		r.stopTimer(key)
	}
}

func (r *Room) send(slot int, typ string, payload any) {
	if seat := r.seats[slot]; seat != nil {
		r.deliver(seat.SID, seat.Conn, typ, payload)
	}
}

func (r *Room) broadcast(typ string, payload any) {
	frame, err := protocol.Encode(typ, payload)
	if err != nil {
		r.logger.Error().Err(err).Str("type", typ).Msg("encode broadcast")
		return
	}
	for _, seat := range r.seats {
		if seat != nil {
			r.push(seat.SID, seat.Conn, frame)
		}
	}
	r.logger.Debug().Str("type", typ).Msg("broadcast")
}

func (r *Room) deliver(sid core.SessionID, conn core.SignalConnection, typ string, payload any) {
	frame, err := protocol.Encode(typ, payload)
	if err != nil {
		r.logger.Error().Err(err).Str("type", typ).Msg("encode message")
		return
	}
	r.push(sid, conn, frame)
}

func (r *Room) push(sid core.SessionID, conn core.SignalConnection, frame core.Frame) {
	if err := conn.TrySend(frame); err != nil {
		switch r.m.opts.Policy.OnBackPressure(r.id, sid) {
		case KickMember:
			r.logger.Warn().Err(err).Str("sid", string(sid)).Msg("kicking slow member")
			r.m.reg.Cancel(sid)
		case DropFrame, NoAction:
		}
	}
}

// reject reports a protocol violation to the offender only.
func (r *Room) reject(sid core.SessionID, err error) {
	r.logger.Debug().Err(err).Str("sid", string(sid)).Msg("rejected action")
	if slot := r.slotOf(sid); slot >= 0 {
		r.send(slot, protocol.Error, protocol.ErrorPayload{Message: err.Error()})
		return
	}
	if sess, ok := r.m.reg.GetSession(sid); ok {
		r.deliver(sid, sess.Signal(), protocol.Error, protocol.ErrorPayload{Message: err.Error()})
	}
}

func (r *Room) publish(kind string, fill func(*core.GameEvent)) {
	ev := core.GameEvent{
		Kind:     kind,
		RoomID:   string(r.id),
		Players:  r.names(),
		Category: string(r.category),
		At:       time.Now().UTC(),
	}
	if fill != nil {
		fill(&ev)
	}
	if err := r.m.opts.Events.Publish(r.ctx, ev); err != nil {
		r.logger.Warn().Err(err).Str("kind", kind).Msg("publish game event")
	}
}

// teardown destroys the room: pending tasks are canceled, every connection
// bound to the room is released and, unless it is skip, told notifyType.
func (r *Room) teardown(reason, notifyType string, payload any, skip core.SessionID) {
	if r.closed {
		return
	}
	r.closed = true
	r.stopTimers()
	r.m.forget(r)
	r.mail.close()

	for _, snap := range r.m.reg.MembersOfRoom(r.id) {
		r.m.reg.RemoveRoom(snap.SID, r.id)
		if snap.SID == skip || notifyType == "" {
			continue
		}
		r.deliver(snap.SID, snap.Session.Signal(), notifyType, payload)
	}
	r.publish(core.EventRoomClosed, func(ev *core.GameEvent) { ev.Reason = reason })
	r.logger.Info().Str("reason", reason).Str("phase", r.Phase().String()).Msg("room destroyed")
	r.cancel()
}
