package game

import "github.com/dkeye/Pairs/internal/domain"

type Phase int

const (
	Dealt Phase = iota
	Playing
	Finished
)

func (p Phase) String() string {
	switch p {
	case Dealt:
		return "dealt"
	case Playing:
		return "playing"
	case Finished:
		return "finished"
	}
	return "unknown"
}

// Outcome of a flip.
type Outcome int

const (
	// TurnInProgress means one card is face up and the player flips again.
	TurnInProgress Outcome = iota
	PairFound
	Mismatch
)

type Flip struct {
	Position int
	Symbol   domain.Symbol
	Slot     int
}

// FlipResult describes everything a flip changed.
type FlipResult struct {
	Revealed Flip
	Outcome  Outcome
	// Set for PairFound.
	Pair  [2]int
	Score int
	// Finished is set when the last pair was found. Winner is -1 on a draw.
	Finished bool
	Winner   int
}

// Session is the authoritative board of one playthrough.
type Session struct {
	category domain.Category
	board    []domain.Symbol
	matched  []bool
	phase    Phase
	turn     int
	buffer   []Flip
	scores   [2]int
}

func NewSession(c domain.Category, board []domain.Symbol) *Session {
	return &Session{
		category: c,
		board:    board,
		matched:  make([]bool, len(board)),
		buffer:   make([]Flip, 0, 2),
	}
}

func (s *Session) Category() domain.Category { return s.category }
func (s *Session) Phase() Phase              { return s.phase }
func (s *Session) Turn() int                 { return s.turn }
func (s *Session) Scores() [2]int            { return s.scores }
func (s *Session) Size() int                 { return len(s.board) }
func (s *Session) Pairs() int                { return len(s.board) / 2 }

// Pending returns the face-up, unresolved flips of the current turn.
func (s *Session) Pending() []Flip {
	out := make([]Flip, len(s.buffer))
	copy(out, s.buffer)
	return out
}

func (s *Session) Matched(pos int) bool {
	return pos >= 0 && pos < len(s.matched) && s.matched[pos]
}

// Start opens a dealt session for moves.
func (s *Session) Start() error {
	if s.phase != Dealt {
		return ErrNotPlaying
	}
	s.phase = Playing
	return nil
}

// AwaitingReset reports a mismatch waiting for ResolveMismatch.
func (s *Session) AwaitingReset() bool {
	return len(s.buffer) == 2
}

// Flip reveals pos for slot.
func (s *Session) Flip(slot, pos int) (FlipResult, error) {
	if s.phase != Playing {
		return FlipResult{}, ErrNotPlaying
	}
	if slot != s.turn {
		return FlipResult{}, ErrNotYourTurn
	}
	if len(s.buffer) >= 2 {
		return FlipResult{}, ErrBufferFull
	}
	if pos < 0 || pos >= len(s.board) {
		return FlipResult{}, ErrOutOfRange
	}
	if s.matched[pos] {
		return FlipResult{}, ErrAlreadyMatched
	}
	for _, f := range s.buffer {
		if f.Position == pos {
			return FlipResult{}, ErrAlreadyFlipped
		}
	}

	flip := Flip{Position: pos, Symbol: s.board[pos], Slot: slot}
	s.buffer = append(s.buffer, flip)
	res := FlipResult{Revealed: flip, Outcome: TurnInProgress, Winner: -1}
	if len(s.buffer) < 2 {
		return res, nil
	}

	first, second := s.buffer[0], s.buffer[1]
	if first.Symbol != second.Symbol {
		res.Outcome = Mismatch
		return res, nil
	}

	s.matched[first.Position] = true
	s.matched[second.Position] = true
	s.scores[slot]++
	s.buffer = s.buffer[:0]
	res.Outcome = PairFound
	res.Pair = [2]int{first.Position, second.Position}
	res.Score = s.scores[slot]

	if s.scores[0]+s.scores[1] == s.Pairs() {
		s.phase = Finished
		res.Finished = true
		res.Winner = s.Winner()
	}
	return res, nil
}

// ResolveMismatch clears the flipped pair and hands the turn over.
func (s *Session) ResolveMismatch() (next int, err error) {
	if s.phase != Playing || len(s.buffer) != 2 {
		return s.turn, ErrNoPendingTurn
	}
	s.buffer = s.buffer[:0]
	s.turn = 1 - s.turn
	return s.turn, nil
}

// Winner is the slot with the strictly higher score, or -1.
func (s *Session) Winner() int {
	switch {
	case s.scores[0] > s.scores[1]:
		return 0
	case s.scores[1] > s.scores[0]:
		return 1
	}
	return -1
}
