package app

import (
	"github.com/dkeye/Pairs/internal/domain"
	"github.com/dkeye/Pairs/internal/game"
)

// roomState is the tagged phase of a room. Each variant carries only the
// data valid in that phase; handlers type-switch on it.
type roomState interface {
	phase() domain.Phase
}

type waitingState struct{}

func (*waitingState) phase() domain.Phase { return domain.PhaseWaiting }

type negotiatingState struct {
	votes *game.Negotiation
}

func (s *negotiatingState) phase() domain.Phase {
	if s.votes.Votes() == 0 {
		return domain.PhaseMatched
	}
	return domain.PhaseSelectingCategory
}

// resolvedState covers the reveal pause before the board is dealt.
type resolvedState struct {
	resolution game.Resolution
}

func (*resolvedState) phase() domain.Phase { return domain.PhaseCategoryResolved }

// playingState covers both the countdown (session Dealt) and live play.
type playingState struct {
	session *game.Session
}

func (*playingState) phase() domain.Phase { return domain.PhasePlaying }

type finishedState struct {
	session *game.Session
	// rematchBy is the slot that asked for a rematch, or -1.
	rematchBy int
}

func (*finishedState) phase() domain.Phase { return domain.PhaseFinished }
