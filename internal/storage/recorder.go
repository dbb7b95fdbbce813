package storage

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/francemazzi/cards-against-humanity/internal/game"
)

const recordTimeout = 5 * time.Second

// WinRecorder subscribes to a game's event bus and writes a win row each
// time the czar resolves a round. Store failures are logged, never surfaced
// to the game loop.
type WinRecorder struct {
	store Store
	log   zerolog.Logger
	name  func(playerID string) string
}

// NewWinRecorder builds a recorder. name resolves a player id to a display
// name for the leaderboard; it may be nil.
func NewWinRecorder(store Store, log zerolog.Logger, name func(playerID string) string) *WinRecorder {
	return &WinRecorder{store: store, log: log, name: name}
}

// OnEvent implements game.Subscriber.
func (r *WinRecorder) OnEvent(event game.Event) {
	win, ok := event.(game.WinnerSelectedEvent)
	if !ok {
		return
	}

	rec := WinRecord{
		GameID:     win.GameID(),
		PlayerID:   win.WinnerID,
		Round:      win.Round,
		RecordedAt: win.Timestamp().UTC(),
	}
	if r.name != nil {
		rec.PlayerName = r.name(win.WinnerID)
	}

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if err := r.store.RecordWin(ctx, rec); err != nil {
		r.log.Warn().Err(err).
			Str("game_id", rec.GameID).
			Int("round", rec.Round).
			Msg("failed to record round win")
	}
}
