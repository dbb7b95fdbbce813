// Package sqlite persists game snapshots and win records in a single SQLite
// file, suitable for the one-process deployments this server targets.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/francemazzi/cards-against-humanity/internal/game"
	"github.com/francemazzi/cards-against-humanity/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id         TEXT PRIMARY KEY,
	status     TEXT NOT NULL,
	round      INTEGER NOT NULL,
	winner_id  TEXT NOT NULL DEFAULT '',
	snapshot   TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS wins (
	game_id     TEXT NOT NULL,
	player_id   TEXT NOT NULL,
	player_name TEXT NOT NULL DEFAULT '',
	round       INTEGER NOT NULL,
	recorded_at INTEGER NOT NULL,
	PRIMARY KEY (game_id, round)
);

CREATE INDEX IF NOT EXISTS idx_wins_player ON wins (player_id);
`

// Store is a SQLite-backed storage.Store.
type Store struct {
	db *sql.DB
}

var _ storage.Store = (*Store)(nil)

// Open opens the database at path, creating it and its schema when missing.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveSnapshot upserts the latest spectator view of a game, keyed by game id.
func (s *Store) SaveSnapshot(ctx context.Context, snap game.Snapshot) error {
	if snap.ID == "" {
		return fmt.Errorf("snapshot has no game id")
	}
	blob, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO games (id, status, round, winner_id, snapshot, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			status     = excluded.status,
			round      = excluded.round,
			winner_id  = excluded.winner_id,
			snapshot   = excluded.snapshot,
			updated_at = excluded.updated_at`,
		snap.ID, string(snap.Status), snap.Round, snap.WinnerID, string(blob), time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("upsert game %s: %w", snap.ID, err)
	}
	return nil
}

// GetSnapshot loads the stored state of one game. Missing games return
// sql.ErrNoRows wrapped with the game id.
func (s *Store) GetSnapshot(ctx context.Context, gameID string) (storage.SnapshotRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT status, round, winner_id, snapshot, updated_at
		FROM games WHERE id = ?`, gameID)

	var rec storage.SnapshotRecord
	var status, blob string
	var updatedAt int64
	if err := row.Scan(&status, &rec.Round, &rec.WinnerID, &blob, &updatedAt); err != nil {
		return storage.SnapshotRecord{}, fmt.Errorf("load game %s: %w", gameID, err)
	}
	rec.GameID = gameID
	rec.Status = game.Status(status)
	rec.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	if err := json.Unmarshal([]byte(blob), &rec.Snapshot); err != nil {
		return storage.SnapshotRecord{}, fmt.Errorf("decode snapshot for game %s: %w", gameID, err)
	}
	return rec, nil
}

// RecordWin stores one resolved round. Replays of the same (game, round) pair
// overwrite rather than duplicate, so event redelivery is harmless.
func (s *Store) RecordWin(ctx context.Context, win storage.WinRecord) error {
	if win.GameID == "" || win.PlayerID == "" {
		return fmt.Errorf("win record needs game and player ids")
	}
	recordedAt := win.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO wins (game_id, player_id, player_name, round, recorded_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (game_id, round) DO UPDATE SET
			player_id   = excluded.player_id,
			player_name = excluded.player_name,
			recorded_at = excluded.recorded_at`,
		win.GameID, win.PlayerID, win.PlayerName, win.Round, recordedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("record win for game %s round %d: %w", win.GameID, win.Round, err)
	}
	return nil
}

// Leaderboard returns players ordered by rounds won across all games.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]storage.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT player_id, MAX(player_name), COUNT(*) AS wins
		FROM wins
		GROUP BY player_id
		ORDER BY wins DESC, player_id ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []storage.LeaderboardEntry
	for rows.Next() {
		var e storage.LeaderboardEntry
		if err := rows.Scan(&e.PlayerID, &e.PlayerName, &e.Wins); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leaderboard: %w", err)
	}
	return entries, nil
}
