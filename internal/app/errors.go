package app

import "errors"

var (
	ErrUnknownSession   = errors.New("unknown session")
	ErrNotInRoom        = errors.New("you are not in a game")
	ErrAlreadyInRoom    = errors.New("you are already in a game")
	ErrRematchUndecided = errors.New("finish or decline the rematch first")
	ErrWrongPhase       = errors.New("action not allowed right now")
	ErrNoRematchPending = errors.New("no rematch request to accept")
	ErrRematchPending   = errors.New("rematch already requested")
	ErrShuttingDown     = errors.New("server is shutting down")
)
