package deck

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
)

// ErrPileExhausted is returned when a draw asks for more cards than exist in
// the entire pile, draw and discard stacks combined. Hitting it means the
// configured pack is too small for the game, not that cards ran out mid-game.
var ErrPileExhausted = errors.New("pile exhausted")

// Pile owns the draw and discard stacks for one card kind in a single game.
// When the draw stack runs dry mid-draw the discard stack is shuffled back in
// transparently, so callers never see exhaustion unless the whole pile is
// smaller than the request.
type Pile[C any] struct {
	draw    []C
	discard []C
	rng     *rand.Rand
}

// NewPile creates a shuffled pile from the given cards. The slice is copied;
// the caller keeps ownership of its input.
func NewPile[C any](cards []C, rng *rand.Rand) *Pile[C] {
	p := &Pile[C]{
		draw: append([]C(nil), cards...),
		rng:  rng,
	}
	p.shuffle()
	return p
}

// Draw removes and returns exactly n cards. No card repeats within a single
// call. Returns ErrPileExhausted if draw+discard holds fewer than n cards.
func (p *Pile[C]) Draw(n int) ([]C, error) {
	if n > len(p.draw)+len(p.discard) {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrPileExhausted, n, len(p.draw)+len(p.discard))
	}

	out := make([]C, 0, n)
	for len(out) < n {
		if len(p.draw) == 0 {
			p.reshuffleDiscard()
		}
		out = append(out, p.draw[0])
		p.draw = p.draw[1:]
	}
	return out, nil
}

// Discard returns previously drawn cards to the pile. Order is irrelevant;
// the cards only re-enter play after a reshuffle.
func (p *Pile[C]) Discard(cards ...C) {
	p.discard = append(p.discard, cards...)
}

// Remaining reports the number of cards left in the draw stack.
func (p *Pile[C]) Remaining() int {
	return len(p.draw)
}

// Discarded reports the number of cards in the discard stack.
func (p *Pile[C]) Discarded() int {
	return len(p.discard)
}

// Size reports the total number of cards the pile owns.
func (p *Pile[C]) Size() int {
	return len(p.draw) + len(p.discard)
}

func (p *Pile[C]) reshuffleDiscard() {
	p.draw = append(p.draw, p.discard...)
	p.discard = nil
	p.shuffle()
}

// shuffle applies a uniform Fisher-Yates permutation to the draw stack.
func (p *Pile[C]) shuffle() {
	for i := len(p.draw) - 1; i > 0; i-- {
		j := p.rng.IntN(i + 1)
		p.draw[i], p.draw[j] = p.draw[j], p.draw[i]
	}
}
