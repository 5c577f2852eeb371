package app

import (
	"errors"

	"github.com/dkeye/Pairs/internal/core"
	"github.com/dkeye/Pairs/internal/domain"
	"github.com/dkeye/Pairs/internal/game"
	"github.com/dkeye/Pairs/internal/protocol"
)

func (r *Room) announceWaiting() {
	r.send(0, protocol.WaitingForMatch, nil)
	r.publish(core.EventRoomWaiting, nil)
	r.logger.Info().Str("sid", string(r.seats[0].SID)).Msg("waiting for opponent")
}

// attach seats the second player. Slot order never changes afterwards.
func (r *Room) attach(seat *Seat) {
	if _, ok := r.state.(*waitingState); !ok || r.seats[1] != nil {
		r.logger.Error().Str("sid", string(seat.SID)).Str("phase", r.Phase().String()).Msg("attach to a room that is not waiting")
		r.reject(seat.SID, ErrWrongPhase)
		return
	}
	r.seats[1] = seat
	r.setState(&negotiatingState{votes: game.NewNegotiation()})
	for slot := range r.seats {
		r.send(slot, protocol.MatchFound, protocol.MatchFoundPayload{
			Player1Name: r.seats[0].Name,
			Player2Name: r.seats[1].Name,
			You:         slot,
		})
	}
	r.publish(core.EventRoomMatched, nil)
	r.logger.Info().Strs("players", r.names()).Msg("match found")
}

func (r *Room) vote(sid core.SessionID, c domain.Category) {
	slot := r.slotOf(sid)
	if slot < 0 {
		r.reject(sid, ErrNotInRoom)
		return
	}
	st, ok := r.state.(*negotiatingState)
	if !ok {
		r.reject(sid, game.ErrVotingClosed)
		return
	}
	complete, err := st.votes.Vote(slot, c)
	if err != nil {
		r.reject(sid, err)
		return
	}
	r.setState(st)
	// the opponent only learns that a vote was cast
	r.send(1-slot, protocol.OpponentSelectedCategory, nil)
	if !complete {
		return
	}

	res, err := st.votes.Resolve(r.m.opts.Rand)
	if err != nil {
		r.fail(err)
		return
	}
	r.category = res.Final
	r.setState(&resolvedState{resolution: res})
	r.broadcast(protocol.CategorySelected, protocol.CategorySelectedPayload{
		FinalCategory:   string(res.Final),
		Player1Category: string(res.Votes[0]),
		Player2Category: string(res.Votes[1]),
		IsRandom:        res.RandomTieBreak,
	})
	r.publish(core.EventCategoryResolved, func(ev *core.GameEvent) { ev.Random = res.RandomTieBreak })
	r.logger.Info().Str("category", string(res.Final)).Bool("random", res.RandomTieBreak).Msg("category resolved")
	r.schedule(timerReveal, r.m.opts.Delays.Reveal, (*Room).deal)
}

// deal generates a board for the negotiated category, or the previous
// game's category on a rematch, and starts the countdown.
func (r *Room) deal() {
	var c domain.Category
	switch st := r.state.(type) {
	case *resolvedState:
		c = st.resolution.Final
	case *finishedState:
		c = st.session.Category()
	default:
		r.logger.Error().Str("phase", r.Phase().String()).Msg("deal outside resolved or finished phase")
		return
	}
	board, err := r.m.opts.Dealer.Deal(c)
	if err != nil {
		r.fail(err)
		return
	}
	r.category = c
	r.setState(&playingState{session: game.NewSession(c, board)})
	r.schedule(timerCountdown, r.m.opts.Delays.Countdown, (*Room).open)
}

func (r *Room) open() {
	st, ok := r.state.(*playingState)
	if !ok {
		return
	}
	if err := st.session.Start(); err != nil {
		r.fail(err)
		return
	}
	r.broadcast(protocol.GameStart, protocol.GameStartPayload{
		Cards:         make([]string, st.session.Size()),
		CurrentPlayer: r.ref(st.session.Turn()),
		Category:      string(st.session.Category()),
	})
	r.publish(core.EventGameStarted, nil)
	r.logger.Info().Str("category", string(r.category)).Msg("game started")
}

func (r *Room) flip(sid core.SessionID, pos int) {
	slot := r.slotOf(sid)
	if slot < 0 {
		r.reject(sid, ErrNotInRoom)
		return
	}
	st, ok := r.state.(*playingState)
	if !ok {
		r.reject(sid, game.ErrNotPlaying)
		return
	}
	res, err := st.session.Flip(slot, pos)
	if err != nil {
		r.reject(sid, err)
		return
	}
	name := r.seats[slot].Name
	r.broadcast(protocol.CardFlipped, protocol.CardFlippedPayload{
		CardIndex:  res.Revealed.Position,
		Emoji:      string(res.Revealed.Symbol),
		PlayerName: name,
	})

	switch res.Outcome {
	case game.PairFound:
		r.broadcast(protocol.PairFound, protocol.PairFoundPayload{
			PlayerName:  name,
			Score:       res.Score,
			CardIndices: res.Pair,
		})
		if res.Finished {
			r.finish(st.session, res.Winner)
			return
		}
		r.broadcast(protocol.TurnUpdate, protocol.TurnUpdatePayload{CurrentPlayer: r.ref(st.session.Turn())})
	case game.Mismatch:
		r.schedule(timerMismatch, r.m.opts.Delays.Mismatch, (*Room).resetCards)
	case game.TurnInProgress:
	}
}

func (r *Room) resetCards() {
	st, ok := r.state.(*playingState)
	if !ok {
		return
	}
	next, err := st.session.ResolveMismatch()
	if err != nil {
		return
	}
	r.broadcast(protocol.CardsReset, nil)
	r.broadcast(protocol.TurnUpdate, protocol.TurnUpdatePayload{CurrentPlayer: r.ref(next)})
}

func (r *Room) finish(s *game.Session, winner int) {
	r.setState(&finishedState{session: s, rematchBy: -1})
	scores := s.Scores()
	payload := protocol.GameEndPayload{Scores: make([]protocol.ScoreEntry, 0, 2)}
	for slot, seat := range r.seats {
		payload.Scores = append(payload.Scores, protocol.ScoreEntry{Name: seat.Name, Score: scores[slot]})
	}
	winnerName := ""
	if winner >= 0 {
		ref := r.ref(winner)
		payload.Winner = &ref
		winnerName = ref.Name
	}
	r.broadcast(protocol.GameEnd, payload)
	r.publish(core.EventGameFinished, func(ev *core.GameEvent) {
		ev.Scores = []int{scores[0], scores[1]}
		ev.Winner = winnerName
	})
	r.logger.Info().Ints("scores", []int{scores[0], scores[1]}).Str("winner", winnerName).Msg("game finished")
}

func (r *Room) requestRematch(sid core.SessionID) {
	slot := r.slotOf(sid)
	if slot < 0 {
		r.reject(sid, ErrNotInRoom)
		return
	}
	st, ok := r.state.(*finishedState)
	if !ok {
		r.reject(sid, ErrWrongPhase)
		return
	}
	switch st.rematchBy {
	case slot:
		r.reject(sid, ErrRematchPending)
	case 1 - slot:
		// both asked
		r.rematch()
	default:
		st.rematchBy = slot
		r.send(1-slot, protocol.PlayAgainRequest, protocol.PlayAgainRequestPayload{PlayerName: r.seats[slot].Name})
		r.logger.Info().Str("sid", string(sid)).Msg("rematch requested")
	}
}

func (r *Room) acceptRematch(sid core.SessionID) {
	slot := r.slotOf(sid)
	if slot < 0 {
		r.reject(sid, ErrNotInRoom)
		return
	}
	st, ok := r.state.(*finishedState)
	if !ok {
		r.reject(sid, ErrWrongPhase)
		return
	}
	if st.rematchBy != 1-slot {
		r.reject(sid, ErrNoRematchPending)
		return
	}
	r.rematch()
}

// rematch reuses the room, its slot order and category with a fresh board.
func (r *Room) rematch() {
	r.logger.Info().Str("category", string(r.category)).Msg("rematch accepted")
	r.deal()
}

func (r *Room) declineRematch(sid core.SessionID) {
	slot := r.slotOf(sid)
	if slot < 0 {
		r.reject(sid, ErrNotInRoom)
		return
	}
	if _, ok := r.state.(*finishedState); !ok {
		r.reject(sid, ErrWrongPhase)
		return
	}
	r.teardown("rematch declined", protocol.PlayAgainDeclined, protocol.PlayAgainDeclinedPayload{PlayerName: r.seats[slot].Name}, "")
}

// leave handles peer loss in any phase.
func (r *Room) leave(sid core.SessionID) {
	r.logger.Info().Str("sid", string(sid)).Str("phase", r.Phase().String()).Msg("player left")
	r.teardown("peer lost", protocol.OpponentDisconnected, nil, sid)
}

// fail tears the room down after an invariant violation.
func (r *Room) fail(err error) {
	r.logger.Error().Err(err).Str("phase", r.Phase().String()).Msg("room failed")
	msg := "the game could not continue"
	if errors.Is(err, domain.ErrUnknownCategory) {
		msg = "the selected category is not available"
	}
	r.teardown("internal error", protocol.Error, protocol.ErrorPayload{Message: msg}, "")
}
