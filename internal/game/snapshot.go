package game

import "github.com/francemazzi/cards-against-humanity/internal/deck"

// PlayerSnapshot is one seat as exposed to clients. Full hands are only
// visible to the owning seat; everyone else sees the count.
type PlayerSnapshot struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	IsBot     bool              `json:"isBot"`
	Score     int               `json:"score"`
	HandCount int               `json:"handCount"`
	Hand      []deck.AnswerCard `json:"hand,omitempty"`
	Persona   string            `json:"persona,omitempty"`
}

// TableSnapshot is one submission as exposed to clients. Seat attribution is
// withheld until the round is being judged so nobody can match cards to
// players early.
type TableSnapshot struct {
	PlayerID string            `json:"playerId,omitempty"`
	Cards    []deck.AnswerCard `json:"cards"`
}

// Snapshot is the broadcastable view of a game.
type Snapshot struct {
	ID       string           `json:"id"`
	Status   Status           `json:"status"`
	Round    int              `json:"round"`
	Players  []PlayerSnapshot `json:"players"`
	CzarID   string           `json:"czarId"`
	Prompt   *deck.PromptCard `json:"currentPromptCard,omitempty"`
	Table    []TableSnapshot  `json:"table"`
	WinnerID string           `json:"winnerId,omitempty"`
}

// Snapshot renders the game for one viewer. An empty viewerID produces the
// spectator view with no hands.
func (g *Game) Snapshot(viewerID string) Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	snap := Snapshot{
		ID:       g.id,
		Status:   g.status,
		Round:    g.round,
		CzarID:   g.czarIDLocked(),
		WinnerID: g.winnerID,
		Players:  make([]PlayerSnapshot, len(g.players)),
		Table:    make([]TableSnapshot, len(g.table)),
	}

	if g.prompt.ID != "" {
		prompt := g.prompt
		snap.Prompt = &prompt
	}

	for i, p := range g.players {
		ps := PlayerSnapshot{
			ID:        p.ID,
			Name:      p.Name,
			IsBot:     p.IsBot,
			Score:     p.Score,
			HandCount: len(p.Hand),
		}
		if p.ID == viewerID {
			ps.Hand = append([]deck.AnswerCard(nil), p.Hand...)
		}
		if p.Persona != nil {
			ps.Persona = p.Persona.Name
		}
		snap.Players[i] = ps
	}

	revealSeats := g.status == StatusJudging || g.status == StatusRoundEnded || g.status == StatusGameOver
	for i, sub := range g.table {
		ts := TableSnapshot{Cards: append([]deck.AnswerCard(nil), sub.Cards...)}
		if revealSeats {
			ts.PlayerID = sub.PlayerID
		}
		snap.Table[i] = ts
	}
	return snap
}
