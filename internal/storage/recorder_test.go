package storage

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/francemazzi/cards-against-humanity/internal/game"
)

type stubStore struct {
	mu   sync.Mutex
	wins []WinRecord
	fail bool
}

func (s *stubStore) SaveSnapshot(context.Context, game.Snapshot) error { return nil }
func (s *stubStore) GetSnapshot(context.Context, string) (SnapshotRecord, error) {
	return SnapshotRecord{}, errors.New("not found")
}
func (s *stubStore) Leaderboard(context.Context, int) ([]LeaderboardEntry, error) { return nil, nil }
func (s *stubStore) Close() error                                                 { return nil }

func (s *stubStore) RecordWin(_ context.Context, win WinRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("disk full")
	}
	s.wins = append(s.wins, win)
	return nil
}

func TestWinRecorderRecordsRoundWins(t *testing.T) {
	store := &stubStore{}
	rec := NewWinRecorder(store, zerolog.Nop(), func(id string) string {
		if id == "p1" {
			return "Alice"
		}
		return ""
	})

	rec.OnEvent(game.WinnerSelectedEvent{Round: 2, WinnerID: "p1"})

	require.Len(t, store.wins, 1)
	assert.Equal(t, "p1", store.wins[0].PlayerID)
	assert.Equal(t, "Alice", store.wins[0].PlayerName)
	assert.Equal(t, 2, store.wins[0].Round)
}

func TestWinRecorderIgnoresOtherEvents(t *testing.T) {
	store := &stubStore{}
	rec := NewWinRecorder(store, zerolog.Nop(), nil)

	rec.OnEvent(game.RoundStartedEvent{Round: 1})
	rec.OnEvent(game.GameOverEvent{Round: 5, WinnerID: "p1"})

	assert.Empty(t, store.wins)
}

func TestWinRecorderSwallowsStoreErrors(t *testing.T) {
	store := &stubStore{fail: true}
	rec := NewWinRecorder(store, zerolog.Nop(), nil)

	assert.NotPanics(t, func() {
		rec.OnEvent(game.WinnerSelectedEvent{Round: 1, WinnerID: "p1"})
	})
}
