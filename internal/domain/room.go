package domain

import "github.com/google/uuid"

type RoomID string

func NewRoomID() RoomID {
	return RoomID("room_" + uuid.NewString())
}

// Phase is the lifecycle stage of a room.
type Phase int

const (
	PhaseWaiting Phase = iota
	PhaseMatched
	PhaseSelectingCategory
	PhaseCategoryResolved
	PhasePlaying
	PhaseFinished
)

var phaseNames = [...]string{
	PhaseWaiting:           "waiting",
	PhaseMatched:           "matched",
	PhaseSelectingCategory: "selecting_category",
	PhaseCategoryResolved:  "category_resolved",
	PhasePlaying:           "playing",
	PhaseFinished:          "finished",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}
