package app

import (
	"context"
	"sync"
	"time"

	"github.com/dkeye/Pairs/internal/core"
	"github.com/dkeye/Pairs/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
)

// Delays pace a match. They only affect UX, never correctness.
type Delays struct {
	Reveal    time.Duration
	Countdown time.Duration
	Mismatch  time.Duration
}

type Options struct {
	Delays    Delays
	Scheduler Scheduler
	Policy    Policy
	Events    core.EventPublisher
	Rand      domain.Rand
	Dealer    domain.Dealer
}

func (o *Options) withDefaults() {
	if o.Scheduler == nil {
		o.Scheduler = ClockScheduler{}
	}
	if o.Policy == nil {
		o.Policy = SimplePolicy{}
	}
	if o.Events == nil {
		o.Events = discardEvents{}
	}
	if o.Rand == nil {
		o.Rand = domain.DefaultRand
	}
	if o.Dealer == nil {
		o.Dealer = domain.ShuffleDealer{Rand: o.Rand}
	}
}

type discardEvents struct{}

func (discardEvents) Publish(context.Context, core.GameEvent) error { return nil }
func (discardEvents) Close() error                                  { return nil }

// RoomManager is the room registry and the matchmaking queue. At most one
// room waits for a second player at any time.
type RoomManager struct {
	ctx  context.Context
	reg  *Registry
	opts Options

	mu      sync.Mutex
	rooms   map[domain.RoomID]*Room
	waiting *Room

	wg conc.WaitGroup
}

func NewRoomManager(ctx context.Context, reg *Registry, opts Options) *RoomManager {
	opts.withDefaults()
	return &RoomManager{
		ctx:   ctx,
		reg:   reg,
		opts:  opts,
		rooms: make(map[domain.RoomID]*Room),
	}
}

// Enqueue pairs sid with the waiting player, or opens a new waiting room.
func (m *RoomManager) Enqueue(sid core.SessionID) (*Room, error) {
	sess, ok := m.reg.GetSession(sid)
	if !ok {
		return nil, ErrUnknownSession
	}
	seat := &Seat{SID: sid, Name: sess.User().Username, Conn: sess.Signal()}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ctx.Err() != nil {
		return nil, ErrShuttingDown
	}
	if _, ok := m.reg.RoomOf(sid); ok {
		return nil, ErrAlreadyInRoom
	}

	if w := m.waiting; w != nil {
		m.waiting = nil
		m.reg.UpdateRoom(sid, w.id)
		if w.Post(func(r *Room) { r.attach(seat) }) {
			log.Info().Str("module", "app.rooms").Str("sid", string(sid)).Str("room", string(w.id)).Msg("paired with waiting player")
			return w, nil
		}
		m.reg.RemoveRoom(sid, w.id)
	}

	room := newRoom(m, seat)
	m.rooms[room.id] = room
	m.waiting = room
	m.reg.UpdateRoom(sid, room.id)
	room.Post(func(r *Room) { r.announceWaiting() })
	m.wg.Go(room.run)
	log.Info().Str("module", "app.rooms").Str("sid", string(sid)).Str("room", string(room.id)).Msg("room created")
	return room, nil
}

// RoomFor resolves the room handle held by sid.
func (m *RoomManager) RoomFor(sid core.SessionID) (*Room, error) {
	id, ok := m.reg.RoomOf(sid)
	if !ok {
		return nil, ErrNotInRoom
	}
	room, ok := m.Get(id)
	if !ok {
		return nil, ErrNotInRoom
	}
	return room, nil
}

// Leave posts peer loss to sid's room. A lone waiter is removed from the queue first.
func (m *RoomManager) Leave(sid core.SessionID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.reg.RoomOf(sid)
	if !ok {
		return
	}
	room, ok := m.rooms[id]
	if !ok {
		m.reg.RemoveRoom(sid, id)
		return
	}
	if m.waiting == room {
		m.waiting = nil
	}
	room.Post(func(r *Room) { r.leave(sid) })
}

func (m *RoomManager) Get(id domain.RoomID) (*Room, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[id]
	return room, ok
}

func (m *RoomManager) forget(r *Room) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rooms[r.id] == r {
		delete(m.rooms, r.id)
	}
	if m.waiting == r {
		m.waiting = nil
	}
}

type Stats struct {
	Rooms   int            `json:"rooms"`
	Waiting bool           `json:"waiting"`
	Phases  map[string]int `json:"phases"`
}

func (m *RoomManager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := Stats{Rooms: len(m.rooms), Waiting: m.waiting != nil, Phases: make(map[string]int)}
	for _, r := range m.rooms {
		st.Phases[r.Phase().String()]++
	}
	return st
}

// Wait blocks until every room loop has exited or ctx expires. Room loops
// exit once the context passed to NewRoomManager is canceled.
func (m *RoomManager) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
