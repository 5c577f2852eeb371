// Package events publishes room lifecycle records to an external sink.
package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkeye/Pairs/internal/config"
	"github.com/dkeye/Pairs/internal/core"
	"github.com/rs/zerolog/log"
)

var ErrUnknownDriver = errors.New("events: unknown driver")

// New builds the publisher selected by cfg.Driver.
func New(cfg config.Events) (core.EventPublisher, error) {
	switch cfg.Driver {
	case "", "none":
		return Nop{}, nil
	case "log":
		return NewLogPublisher(), nil
	case "kafka":
		return NewKafkaPublisher(cfg.Brokers, cfg.Topic), nil
	case "nats":
		p, err := DialNATS(cfg.NatsURL, cfg.Subject)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownDriver, cfg.Driver)
	}
}

type Nop struct{}

func (Nop) Publish(context.Context, core.GameEvent) error { return nil }
func (Nop) Close() error                                  { return nil }

// LogPublisher writes every event as a structured log line.
type LogPublisher struct{}

func NewLogPublisher() LogPublisher { return LogPublisher{} }

func (LogPublisher) Publish(_ context.Context, ev core.GameEvent) error {
	e := log.Info().Str("module", "events").
		Str("kind", ev.Kind).
		Str("room", ev.RoomID).
		Strs("players", ev.Players)
	if ev.Category != "" {
		e = e.Str("category", ev.Category).Bool("random", ev.Random)
	}
	if len(ev.Scores) > 0 {
		e = e.Ints("scores", ev.Scores).Str("winner", ev.Winner)
	}
	if ev.Reason != "" {
		e = e.Str("reason", ev.Reason)
	}
	e.Time("at", ev.At).Msg("game event")
	return nil
}

func (LogPublisher) Close() error { return nil }
