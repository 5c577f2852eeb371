package protocol

type SearchGamePayload struct {
	PlayerName string `json:"playerName" validate:"required,max=64"`
}

type SelectCategoryPayload struct {
	Category string `json:"category" validate:"required,max=32"`
}

type FlipCardPayload struct {
	CardIndex *int `json:"cardIndex" validate:"required,gte=0"`
}

// PlayerRef identifies a seat without exposing connection identity.
type PlayerRef struct {
	Slot int    `json:"slot"`
	Name string `json:"name"`
}

type MatchFoundPayload struct {
	Player1Name string `json:"player1Name"`
	Player2Name string `json:"player2Name"`
	You         int    `json:"you"`
}

type CategorySelectedPayload struct {
	FinalCategory   string `json:"finalCategory"`
	Player1Category string `json:"player1Category"`
	Player2Category string `json:"player2Category"`
	IsRandom        bool   `json:"isRandom"`
}

// GameStartPayload carries one face-down (empty) entry per board position.
type GameStartPayload struct {
	Cards         []string  `json:"cards"`
	CurrentPlayer PlayerRef `json:"currentPlayer"`
	Category      string    `json:"category"`
}

type CardFlippedPayload struct {
	CardIndex  int    `json:"cardIndex"`
	Emoji      string `json:"emoji"`
	PlayerName string `json:"playerName"`
}

type PairFoundPayload struct {
	PlayerName  string `json:"playerName"`
	Score       int    `json:"score"`
	CardIndices [2]int `json:"cardIndices"`
}

type TurnUpdatePayload struct {
	CurrentPlayer PlayerRef `json:"currentPlayer"`
}

type ScoreEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// GameEndPayload has a nil Winner on a draw.
type GameEndPayload struct {
	Winner *PlayerRef   `json:"winner"`
	Scores []ScoreEntry `json:"scores"`
}

type PlayAgainRequestPayload struct {
	PlayerName string `json:"playerName"`
}

type PlayAgainDeclinedPayload struct {
	PlayerName string `json:"playerName"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
