package game

import (
	"fmt"

	"github.com/francemazzi/cards-against-humanity/internal/deck"
)

// Dealer assigns cards to seats from the game's two piles. It is only ever
// called while the owning game's lock is held.
type Dealer struct {
	answers *deck.Pile[deck.AnswerCard]
	prompts *deck.Pile[deck.PromptCard]
}

// RefillHand tops the player's hand back up to capacity. Draws exactly the
// shortfall, so a full hand is a no-op.
func (d *Dealer) RefillHand(p *Player) error {
	need := HandCapacity - len(p.Hand)
	if need <= 0 {
		return nil
	}
	cards, err := d.answers.Draw(need)
	if err != nil {
		return fmt.Errorf("refill hand for %s: %w", p.Name, err)
	}
	p.Hand = append(p.Hand, cards...)
	return nil
}

// RemoveFromHand removes the named cards from the player's hand and returns
// them in the requested order.
func (d *Dealer) RemoveFromHand(p *Player, cardIDs []string) ([]deck.AnswerCard, error) {
	removed, ok := p.cardsByID(cardIDs)
	if !ok {
		return nil, fmt.Errorf("%w: card not in hand", ErrInvalidSelection)
	}

	remaining := p.Hand[:0]
	for _, c := range p.Hand {
		keep := true
		for _, id := range cardIDs {
			if c.ID == id {
				keep = false
				break
			}
		}
		if keep {
			remaining = append(remaining, c)
		}
	}
	p.Hand = remaining
	return removed, nil
}

// DrawPrompt draws the next round's prompt card.
func (d *Dealer) DrawPrompt() (deck.PromptCard, error) {
	cards, err := d.prompts.Draw(1)
	if err != nil {
		return deck.PromptCard{}, fmt.Errorf("draw prompt: %w", err)
	}
	return cards[0], nil
}
