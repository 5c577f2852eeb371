package domain

import (
	"fmt"
	"math/rand/v2"
)

// Rand is the randomness source for shuffles and tie-breaks.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRand uses the process-wide math/rand/v2 source and is safe for concurrent use.
var DefaultRand Rand = globalRand{}

// Dealer produces a freshly shuffled board for a category.
type Dealer interface {
	Deal(c Category) ([]Symbol, error)
}

// ShuffleDealer deals with GenerateBoard.
type ShuffleDealer struct {
	Rand Rand
}

func (d ShuffleDealer) Deal(c Category) ([]Symbol, error) {
	r := d.Rand
	if r == nil {
		r = DefaultRand
	}
	return GenerateBoard(c, r)
}

// GenerateBoard returns every dealt symbol of c exactly twice, Fisher-Yates shuffled.
func GenerateBoard(c Category, r Rand) ([]Symbol, error) {
	symbols, err := c.Symbols()
	if err != nil {
		return nil, fmt.Errorf("generate board %q: %w", c, err)
	}
	board := make([]Symbol, 0, 2*len(symbols))
	board = append(board, symbols...)
	board = append(board, symbols...)
	for i := len(board) - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		board[i], board[j] = board[j], board[i]
	}
	return board, nil
}
