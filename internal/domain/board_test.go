package domain

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"
)

func TestGenerateBoardComposition(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for _, c := range Categories() {
		for i := 0; i < 50; i++ {
			board, err := GenerateBoard(c, r)
			if err != nil {
				t.Fatalf("%s: %v", c, err)
			}
			if len(board) != 2*PairsPerBoard {
				t.Fatalf("%s: len = %d", c, len(board))
			}
			want, _ := c.Symbols()
			counts := map[Symbol]int{}
			for _, s := range board {
				counts[s]++
			}
			if len(counts) != PairsPerBoard {
				t.Fatalf("%s: %d distinct symbols", c, len(counts))
			}
			for _, s := range want {
				if counts[s] != 2 {
					t.Fatalf("%s: symbol %s appears %d times", c, s, counts[s])
				}
			}
		}
	}
}

func TestGenerateBoardShuffles(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 7))
	first, err := GenerateBoard("fruits", r)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		next, _ := GenerateBoard("fruits", r)
		if !slices.Equal(first, next) {
			return
		}
	}
	t.Fatal("20 consecutive boards had identical order")
}

func TestGenerateBoardUnknownCategory(t *testing.T) {
	_, err := GenerateBoard("planets", DefaultRand)
	if !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("err = %v, want ErrUnknownCategory", err)
	}
}

func TestShuffleDealerDefaultsRand(t *testing.T) {
	board, err := ShuffleDealer{}.Deal("animals")
	if err != nil {
		t.Fatal(err)
	}
	if len(board) != 16 {
		t.Fatalf("len = %d", len(board))
	}
}
