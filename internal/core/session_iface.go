package core

import "github.com/dkeye/Pairs/internal/domain"

type SessionID string

// MemberSession binds a connected user and its transport endpoint.
// This is what a room stores and fans out to.
type MemberSession interface {
	User() *domain.User
	Signal() SignalConnection
}
