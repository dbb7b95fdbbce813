// Package storage defines the persistence contracts for game state and win
// records. Implementations live in subpackages.
package storage

import (
	"context"
	"time"

	"github.com/francemazzi/cards-against-humanity/internal/game"
)

// SnapshotRecord is one persisted game state row.
type SnapshotRecord struct {
	GameID    string
	Status    game.Status
	Round     int
	WinnerID  string
	Snapshot  game.Snapshot
	UpdatedAt time.Time
}

// WinRecord is one resolved round.
type WinRecord struct {
	GameID     string
	PlayerID   string
	PlayerName string
	Round      int
	RecordedAt time.Time
}

// LeaderboardEntry aggregates round wins per player across games.
type LeaderboardEntry struct {
	PlayerID   string
	PlayerName string
	Wins       int
}

// Store persists snapshots and round wins.
type Store interface {
	SaveSnapshot(ctx context.Context, snap game.Snapshot) error
	GetSnapshot(ctx context.Context, gameID string) (SnapshotRecord, error)
	RecordWin(ctx context.Context, win WinRecord) error
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
	Close() error
}
