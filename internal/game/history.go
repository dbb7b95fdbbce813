package game

import (
	"sort"

	"github.com/francemazzi/cards-against-humanity/internal/deck"
)

// RoundRecord is one entry in a game's append-only log of resolved rounds.
type RoundRecord struct {
	Round       int
	Prompt      deck.PromptCard
	Submissions []Submission
	WinnerID    string
}

// HistoryEntry is one seat's view of one past round.
type HistoryEntry struct {
	Round       int               `json:"round"`
	Prompt      deck.PromptCard   `json:"prompt"`
	PlayedCards []deck.AnswerCard `json:"playedCards"`
	IsWinner    bool              `json:"isWinner"`
}

// BuildPlayerHistory projects round records into per-seat history, sorted by
// round. It is a pure function over the log and deduplicates on
// (seat, round), so replaying duplicate or out-of-order records is harmless.
func BuildPlayerHistory(records []RoundRecord) map[string][]HistoryEntry {
	type key struct {
		playerID string
		round    int
	}
	seen := map[key]bool{}
	byPlayer := map[string][]HistoryEntry{}

	for _, rec := range records {
		for _, sub := range rec.Submissions {
			k := key{playerID: sub.PlayerID, round: rec.Round}
			if seen[k] {
				continue
			}
			seen[k] = true
			byPlayer[sub.PlayerID] = append(byPlayer[sub.PlayerID], HistoryEntry{
				Round:       rec.Round,
				Prompt:      rec.Prompt,
				PlayedCards: sub.Cards,
				IsWinner:    sub.PlayerID == rec.WinnerID,
			})
		}
	}

	for id := range byPlayer {
		entries := byPlayer[id]
		sort.Slice(entries, func(i, j int) bool { return entries[i].Round < entries[j].Round })
		byPlayer[id] = entries
	}
	return byPlayer
}
