package main

import (
	"context"
	"fmt"

	"github.com/francemazzi/cards-against-humanity/internal/storage/sqlite"
)

// LeaderboardCmd prints round win standings from the server database.
type LeaderboardCmd struct {
	DB    string `kong:"default='cardsagainst.db',help='SQLite database path'"`
	Limit int    `kong:"default='10',help='Number of players to show'"`
}

func (c *LeaderboardCmd) Run() error {
	store, err := sqlite.Open(c.DB)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	entries, err := store.Leaderboard(context.Background(), c.Limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No rounds recorded yet")
		return nil
	}

	for i, e := range entries {
		name := e.PlayerName
		if name == "" {
			name = e.PlayerID
		}
		fmt.Printf("%2d. %-24s %d\n", i+1, name, e.Wins)
	}
	return nil
}
