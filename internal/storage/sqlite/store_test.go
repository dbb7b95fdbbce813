package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/francemazzi/cards-against-humanity/internal/game"
	"github.com/francemazzi/cards-against-humanity/internal/storage"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "games.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}

func TestSaveSnapshotRoundTrip(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	snap := game.Snapshot{
		ID:     "game-1",
		Status: game.StatusPlayingCards,
		Round:  2,
		CzarID: "p2",
		Players: []game.PlayerSnapshot{
			{ID: "p1", Name: "Alice", Score: 1, HandCount: 7},
			{ID: "p2", Name: "Bot", IsBot: true, HandCount: 7},
		},
	}
	require.NoError(t, store.SaveSnapshot(ctx, snap))

	rec, err := store.GetSnapshot(ctx, "game-1")
	require.NoError(t, err)
	assert.Equal(t, "game-1", rec.GameID)
	assert.Equal(t, game.StatusPlayingCards, rec.Status)
	assert.Equal(t, 2, rec.Round)
	require.Len(t, rec.Snapshot.Players, 2)
	assert.Equal(t, "Alice", rec.Snapshot.Players[0].Name)
	assert.False(t, rec.UpdatedAt.IsZero())
}

func TestSaveSnapshotUpsertsByGameID(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSnapshot(ctx, game.Snapshot{ID: "game-1", Status: game.StatusLobby}))
	require.NoError(t, store.SaveSnapshot(ctx, game.Snapshot{
		ID: "game-1", Status: game.StatusGameOver, Round: 5, WinnerID: "p1",
	}))

	rec, err := store.GetSnapshot(ctx, "game-1")
	require.NoError(t, err)
	assert.Equal(t, game.StatusGameOver, rec.Status)
	assert.Equal(t, 5, rec.Round)
	assert.Equal(t, "p1", rec.WinnerID)
}

func TestGetSnapshotMissingGame(t *testing.T) {
	store := openTempStore(t)
	_, err := store.GetSnapshot(context.Background(), "nope")
	assert.Error(t, err)
}

func TestSaveSnapshotRejectsEmptyID(t *testing.T) {
	store := openTempStore(t)
	assert.Error(t, store.SaveSnapshot(context.Background(), game.Snapshot{}))
}

func TestRecordWinAndLeaderboard(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	wins := []storage.WinRecord{
		{GameID: "g1", PlayerID: "p1", PlayerName: "Alice", Round: 1},
		{GameID: "g1", PlayerID: "p2", PlayerName: "Bob", Round: 2},
		{GameID: "g1", PlayerID: "p1", PlayerName: "Alice", Round: 3},
		{GameID: "g2", PlayerID: "p1", PlayerName: "Alice", Round: 1},
	}
	for _, w := range wins {
		require.NoError(t, store.RecordWin(ctx, w))
	}

	entries, err := store.Leaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "p1", entries[0].PlayerID)
	assert.Equal(t, "Alice", entries[0].PlayerName)
	assert.Equal(t, 3, entries[0].Wins)
	assert.Equal(t, "p2", entries[1].PlayerID)
	assert.Equal(t, 1, entries[1].Wins)
}

func TestRecordWinReplayDoesNotDuplicate(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	win := storage.WinRecord{GameID: "g1", PlayerID: "p1", PlayerName: "Alice", Round: 1}
	require.NoError(t, store.RecordWin(ctx, win))
	require.NoError(t, store.RecordWin(ctx, win))

	entries, err := store.Leaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Wins)
}

func TestLeaderboardLimit(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordWin(ctx, storage.WinRecord{GameID: "g1", PlayerID: "p1", Round: 1}))
	require.NoError(t, store.RecordWin(ctx, storage.WinRecord{GameID: "g1", PlayerID: "p2", Round: 2}))

	entries, err := store.Leaderboard(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
