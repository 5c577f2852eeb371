// Package game holds the rules of a two-player memory match: category
// negotiation and the turn-based session. Nothing here is safe for concurrent
// use; callers serialize access per room.
package game

import "errors"

// Protocol violations. None of them mutate state.
var (
	ErrNotPlaying      = errors.New("the game is not accepting moves")
	ErrNotYourTurn     = errors.New("it is not your turn")
	ErrOutOfRange      = errors.New("card index out of range")
	ErrAlreadyFlipped  = errors.New("card is already flipped")
	ErrAlreadyMatched  = errors.New("card is already matched")
	ErrBufferFull      = errors.New("two cards already flipped this turn")
	ErrNoPendingTurn   = errors.New("no mismatch to resolve")
	ErrAlreadyVoted    = errors.New("category already selected")
	ErrUnknownCategory = errors.New("unknown category")
	ErrBadSlot         = errors.New("invalid player slot")
	ErrVotingClosed    = errors.New("category selection is closed")
)
