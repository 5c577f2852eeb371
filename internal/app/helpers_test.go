package app

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dkeye/Pairs/internal/core"
	"github.com/dkeye/Pairs/internal/domain"
	"github.com/dkeye/Pairs/internal/protocol"
	json "github.com/goccy/go-json"
)

// fakeConn records every frame sent to it.
type fakeConn struct {
	mu     sync.Mutex
	frames []protocol.Envelope
	closed bool
}

func (c *fakeConn) TrySend(f core.Frame) error {
	env, err := protocol.Decode(f)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return core.ErrConnClosed
	}
	c.frames = append(c.frames, env)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.frames))
	for i, f := range c.frames {
		out[i] = f.Type
	}
	return out
}

func (c *fakeConn) count(typ string) int {
	n := 0
	for _, t := range c.types() {
		if t == typ {
			n++
		}
	}
	return n
}

// last decodes the payload of the most recent typ frame into into.
func (c *fakeConn) last(t *testing.T, typ string, into any) {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.frames) - 1; i >= 0; i-- {
		if c.frames[i].Type != typ {
			continue
		}
		if into != nil {
			if err := json.Unmarshal(c.frames[i].Payload, into); err != nil {
				t.Fatalf("decode %s: %v", typ, err)
			}
		}
		return
	}
	t.Fatalf("no %s frame in %v", typ, c.typesLocked())
}

func (c *fakeConn) typesLocked() []string {
	out := make([]string, len(c.frames))
	for i, f := range c.frames {
		out[i] = f.Type
	}
	return out
}

func (c *fakeConn) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = nil
}

type manualTask struct {
	s       *manualScheduler
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTask) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// manualScheduler fires tasks only when told to.
type manualScheduler struct {
	mu    sync.Mutex
	tasks []*manualTask
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTask{s: s, d: d, f: f}
	s.tasks = append(s.tasks, t)
	return t
}

func (s *manualScheduler) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// fire runs every pending task, stopped ones included when stale is set.
func (s *manualScheduler) fire(stale bool) int {
	s.mu.Lock()
	var run []func()
	for _, t := range s.tasks {
		if t.fired || (t.stopped && !stale) {
			continue
		}
		t.fired = true
		run = append(run, t.f)
	}
	s.mu.Unlock()
	for _, f := range run {
		f()
	}
	return len(run)
}

type fixedRand struct{ v int }

func (r fixedRand) IntN(n int) int { return r.v % n }

type fixedDealer struct{ board []domain.Symbol }

func (d fixedDealer) Deal(c domain.Category) ([]domain.Symbol, error) {
	if !c.Valid() {
		return nil, domain.ErrUnknownCategory
	}
	out := make([]domain.Symbol, len(d.board))
	copy(out, d.board)
	return out, nil
}

// scenarioBoard pairs: 🍌 0/8, 🍇 1/10, 🍊 2/11, 🍎 3/9, 🍓 4/12, 🥝 5/13, 🍑 6/14, 🍒 7/15.
func scenarioBoard() []domain.Symbol {
	return []domain.Symbol{
		"🍌", "🍇", "🍊", "🍎", "🍓", "🥝", "🍑", "🍒",
		"🍌", "🍎", "🍇", "🍊", "🍓", "🥝", "🍑", "🍒",
	}
}

var scenarioPairs = [][2]int{{0, 8}, {1, 10}, {2, 11}, {3, 9}, {4, 12}, {5, 13}, {6, 14}, {7, 15}}

type recordEvents struct {
	mu    sync.Mutex
	kinds []string
}

func (e *recordEvents) Publish(_ context.Context, ev core.GameEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.kinds = append(e.kinds, ev.Kind)
	return nil
}

func (e *recordEvents) Close() error { return nil }

func (e *recordEvents) seen(kind string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, k := range e.kinds {
		if k == kind {
			return true
		}
	}
	return false
}

type harness struct {
	t      *testing.T
	reg    *Registry
	rooms  *RoomManager
	sched  *manualScheduler
	events *recordEvents
	kicks  sync.Map // core.SessionID -> *atomic.Int32
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	h := &harness{t: t, reg: NewRegistry(), sched: &manualScheduler{}, events: &recordEvents{}}
	opts.Scheduler = h.sched
	opts.Events = h.events
	if opts.Dealer == nil {
		opts.Dealer = fixedDealer{board: scenarioBoard()}
	}
	if opts.Rand == nil {
		opts.Rand = fixedRand{}
	}
	h.rooms = NewRoomManager(ctx, h.reg, opts)
	t.Cleanup(func() {
		cancel()
		waitCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
		defer done()
		if err := h.rooms.Wait(waitCtx); err != nil {
			t.Errorf("room loops did not stop: %v", err)
		}
	})
	return h
}

func (h *harness) connectWith(sid core.SessionID, name string, conn core.SignalConnection) {
	h.t.Helper()
	user, err := domain.NewUser(name)
	if err != nil {
		h.t.Fatal(err)
	}
	counter := &atomic.Int32{}
	h.kicks.Store(sid, counter)
	h.reg.BindSignal(sid, core.NewMemberSession(user, conn), func() { counter.Add(1) })
}

func (h *harness) connect(sid core.SessionID, name string) *fakeConn {
	conn := &fakeConn{}
	h.connectWith(sid, name, conn)
	return conn
}

func (h *harness) kicked(sid core.SessionID) int32 {
	v, ok := h.kicks.Load(sid)
	if !ok {
		return 0
	}
	return v.(*atomic.Int32).Load()
}

func (h *harness) enqueue(sid core.SessionID) *Room {
	h.t.Helper()
	room, err := h.rooms.Enqueue(sid)
	if err != nil {
		h.t.Fatalf("enqueue %s: %v", sid, err)
	}
	flush(h.t, room)
	return room
}

// fire runs pending scheduled tasks and waits for room to process them.
func (h *harness) fire(room *Room) {
	h.t.Helper()
	h.sched.fire(false)
	flush(h.t, room)
}

// flush waits until everything posted to room so far has run.
func flush(t *testing.T, r *Room) {
	t.Helper()
	done := make(chan struct{})
	if !r.Post(func(*Room) { close(done) }) {
		return
	}
	select {
	case <-done:
	case <-r.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("room did not go idle")
	}
}

func do(t *testing.T, r *Room, posted bool) {
	t.Helper()
	if !posted {
		t.Fatal("room refused the event")
	}
	flush(t, r)
}

// pairUp returns a room in the Matched phase with a in slot 0 and b in slot 1.
func (h *harness) pairUp() (*Room, *fakeConn, *fakeConn) {
	h.t.Helper()
	a := h.connect("a", "Ana")
	b := h.connect("b", "Beto")
	room := h.enqueue("a")
	if got := h.enqueue("b"); got != room {
		h.t.Fatal("second player was not paired into the waiting room")
	}
	return room, a, b
}

// startGame pairs two players on fruits and runs the reveal and countdown.
func (h *harness) startGame() (*Room, *fakeConn, *fakeConn) {
	h.t.Helper()
	room, a, b := h.pairUp()
	do(h.t, room, room.SubmitVote("a", "fruits"))
	do(h.t, room, room.SubmitVote("b", "fruits"))
	h.fire(room) // reveal
	h.fire(room) // countdown
	a.last(h.t, protocol.GameStart, nil)
	a.reset()
	b.reset()
	return room, a, b
}
