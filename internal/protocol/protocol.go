// Package protocol defines the wire format of the duplex event channel:
// every message is {"type": <event>, "payload": {...}}.
package protocol

import (
	"errors"
	"fmt"

	"github.com/dkeye/Pairs/internal/core"
	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
)

// Inbound events.
const (
	SearchGame       = "search-game"
	SelectCategory   = "select-category"
	FlipCard         = "flip-card"
	PlayAgain        = "play-again"
	AcceptPlayAgain  = "accept-play-again"
	DeclinePlayAgain = "decline-play-again"
	Ping             = "ping"
)

// Outbound events.
const (
	WaitingForMatch          = "waiting-for-match"
	MatchFound               = "match-found"
	OpponentSelectedCategory = "opponent-selected-category"
	CategorySelected         = "category-selected"
	GameStart                = "game-start"
	CardFlipped              = "card-flipped"
	PairFound                = "pair-found"
	CardsReset               = "cards-reset"
	TurnUpdate               = "turn-update"
	GameEnd                  = "game-end"
	PlayAgainRequest         = "play-again-request"
	PlayAgainDeclined        = "play-again-declined"
	OpponentDisconnected     = "opponent-disconnected"
	Error                    = "error"
	Pong                     = "pong"
)

var (
	ErrBadEnvelope = errors.New("bad_payload")
	ErrInvalid     = errors.New("invalid payload")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Decode parses the envelope only; use Bind for the payload.
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrBadEnvelope, err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("%w: missing type", ErrBadEnvelope)
	}
	return env, nil
}

// Bind unmarshals and validates the payload into v.
func (e Envelope) Bind(v any) error {
	if len(e.Payload) == 0 {
		return fmt.Errorf("%w: missing payload", ErrInvalid)
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadEnvelope, err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Encode builds an outbound frame. A nil payload is omitted.
func Encode(typ string, payload any) (core.Frame, error) {
	env := struct {
		Type    string `json:"type"`
		Payload any    `json:"payload,omitempty"`
	}{Type: typ, Payload: payload}
	b, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", typ, err)
	}
	return core.Frame(b), nil
}
