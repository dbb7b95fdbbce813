package server

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/francemazzi/cards-against-humanity/internal/game"
)

// GameSession represents one running game and its engine.
type GameSession struct {
	ID        string
	Engine    *game.Engine
	Settings  game.Settings
	OwnerName string
	CreatedAt time.Time
}

// GameSummary holds lightweight metadata for clients.
type GameSummary struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Round       int    `json:"round"`
	Players     int    `json:"players"`
	MaxPlayers  int    `json:"max_players"`
	PointsToWin int    `json:"points_to_win"`
}

// GameManager tracks running game sessions.
type GameManager struct {
	logger   zerolog.Logger
	mu       sync.RWMutex
	sessions map[string]*GameSession
}

// NewGameManager constructs an empty game manager.
func NewGameManager(logger zerolog.Logger) *GameManager {
	return &GameManager{
		logger:   logger.With().Str("component", "game_manager").Logger(),
		sessions: make(map[string]*GameSession),
	}
}

// Register adds a session keyed by its game ID.
func (gm *GameManager) Register(session *GameSession) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	gm.sessions[session.ID] = session
	gm.logger.Info().Str("game_id", session.ID).Str("owner", session.OwnerName).Msg("game registered")
}

// Get retrieves a session by game ID.
func (gm *GameManager) Get(id string) (*GameSession, bool) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	session, ok := gm.sessions[id]
	return session, ok
}

// Delete removes a session and closes its engine.
func (gm *GameManager) Delete(id string) (*GameSession, bool) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	session, ok := gm.sessions[id]
	if !ok {
		return nil, false
	}

	delete(gm.sessions, id)
	session.Engine.Close()
	gm.logger.Info().Str("game_id", id).Msg("game removed")
	return session, true
}

// List returns a snapshot of running sessions.
func (gm *GameManager) List() []GameSummary {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	summaries := make([]GameSummary, 0, len(gm.sessions))
	for _, session := range gm.sessions {
		snap := session.Engine.Game().Snapshot("")
		summaries = append(summaries, GameSummary{
			ID:          session.ID,
			Status:      string(snap.Status),
			Round:       snap.Round,
			Players:     len(snap.Players),
			MaxPlayers:  session.Settings.MaxPlayers,
			PointsToWin: session.Settings.PointsToWin,
		})
	}
	return summaries
}

// CloseAll tears down every session's engine.
func (gm *GameManager) CloseAll() {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	for id, session := range gm.sessions {
		session.Engine.Close()
		delete(gm.sessions, id)
	}
}
