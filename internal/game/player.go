package game

import (
	"github.com/francemazzi/cards-against-humanity/internal/deck"
	"github.com/francemazzi/cards-against-humanity/internal/llm"
)

// HandCapacity is the number of answer cards a seat holds between rounds.
const HandCapacity = 7

// Player occupies one seat in a game. Seat order is stable for the life of
// the game and drives judge rotation.
type Player struct {
	ID      string
	Name    string
	IsBot   bool
	Score   int
	Hand    []deck.AnswerCard
	Persona *llm.Persona // required and immutable when IsBot
}

// cardsByID resolves card ids against the hand, preserving the requested
// order. The second return is false if any id is not held.
func (p *Player) cardsByID(ids []string) ([]deck.AnswerCard, bool) {
	cards := make([]deck.AnswerCard, 0, len(ids))
	for _, id := range ids {
		found := false
		for _, c := range p.Hand {
			if c.ID == id {
				cards = append(cards, c)
				found = true
				break
			}
		}
		if !found {
			return nil, false
		}
	}
	return cards, true
}
