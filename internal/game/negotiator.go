package game

import "github.com/dkeye/Pairs/internal/domain"

// Resolution is the outcome of a category negotiation.
type Resolution struct {
	Final          domain.Category
	Votes          [2]domain.Category
	RandomTieBreak bool
}

// Negotiation collects one vote per slot.
type Negotiation struct {
	votes    [2]domain.Category
	resolved bool
}

func NewNegotiation() *Negotiation { return &Negotiation{} }

func (n *Negotiation) HasVoted(slot int) bool {
	return slot >= 0 && slot < 2 && n.votes[slot] != ""
}

// Votes reports how many players have voted.
func (n *Negotiation) Votes() int {
	count := 0
	for _, v := range n.votes {
		if v != "" {
			count++
		}
	}
	return count
}

// Vote records slot's choice. complete is true once both votes are in.
func (n *Negotiation) Vote(slot int, c domain.Category) (complete bool, err error) {
	if slot < 0 || slot > 1 {
		return false, ErrBadSlot
	}
	if n.resolved {
		return false, ErrVotingClosed
	}
	if !c.Valid() {
		return false, ErrUnknownCategory
	}
	if n.votes[slot] != "" {
		return false, ErrAlreadyVoted
	}
	n.votes[slot] = c
	return n.Votes() == 2, nil
}

// Resolve picks the final category. Equal votes win outright, different votes
// are settled by a fair coin.
func (n *Negotiation) Resolve(r domain.Rand) (Resolution, error) {
	if n.Votes() != 2 {
		return Resolution{}, ErrVotingClosed
	}
	n.resolved = true
	res := Resolution{Votes: n.votes}
	if n.votes[0] == n.votes[1] {
		res.Final = n.votes[0]
		return res, nil
	}
	res.RandomTieBreak = true
	res.Final = n.votes[r.IntN(2)]
	return res, nil
}
