package domain

import (
	"errors"
	"sort"
)

// PairsPerBoard is the number of distinct symbols dealt per board.
const PairsPerBoard = 8

var ErrUnknownCategory = errors.New("unknown category")

type (
	Category string
	Symbol   string
)

// categories is the published set. Only the first PairsPerBoard symbols are dealt.
var categories = map[Category][]Symbol{
	"animals":   {"🐶", "🐱", "🦁", "🐘", "🐼", "🐨", "🐸", "🦊", "🐰", "🐻", "🐯", "🐮"},
	"fruits":    {"🍎", "🍊", "🍌", "🍇", "🍓", "🥝", "🍑", "🍒", "🥥", "🍍", "🍉", "🍋"},
	"countries": {"🇺🇸", "🇲🇽", "🇪🇸", "🇫🇷", "🇬🇧", "🇯🇵", "🇰🇷", "🇧🇷", "🇦🇷", "🇨🇦", "🇦🇺", "🇩🇪"},
	"transport": {"🚗", "✈️", "🚂", "🚢", "🚁", "🏍️", "🚌", "🚑", "🚓", "🚚", "🚜", "🛴"},
}

func (c Category) Valid() bool {
	_, ok := categories[c]
	return ok
}

// Symbols returns the symbols dealt for c.
func (c Category) Symbols() ([]Symbol, error) {
	all, ok := categories[c]
	if !ok {
		return nil, ErrUnknownCategory
	}
	out := make([]Symbol, PairsPerBoard)
	copy(out, all[:PairsPerBoard])
	return out, nil
}

// Categories lists the published set in stable order.
func Categories() []Category {
	out := make([]Category, 0, len(categories))
	for c := range categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
