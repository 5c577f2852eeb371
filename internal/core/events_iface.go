package core

import (
	"context"
	"time"
)

// Kinds of GameEvent.
const (
	EventRoomWaiting      = "room.waiting"
	EventRoomMatched      = "room.matched"
	EventCategoryResolved = "category.resolved"
	EventGameStarted      = "game.started"
	EventGameFinished     = "game.finished"
	EventRoomClosed       = "room.closed"
)

// GameEvent is a lifecycle record published outside the process.
type GameEvent struct {
	Kind     string    `json:"kind"`
	RoomID   string    `json:"room_id"`
	Players  []string  `json:"players,omitempty"`
	Category string    `json:"category,omitempty"`
	Random   bool      `json:"random,omitempty"`
	Scores   []int     `json:"scores,omitempty"`
	Winner   string    `json:"winner,omitempty"`
	Reason   string    `json:"reason,omitempty"`
	At       time.Time `json:"at"`
}

// EventPublisher delivers GameEvents to an external sink.
type EventPublisher interface {
	Publish(ctx context.Context, ev GameEvent) error
	Close() error
}
