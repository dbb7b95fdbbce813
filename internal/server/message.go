package server

import (
	"encoding/json"
	"time"

	"github.com/francemazzi/cards-against-humanity/internal/deck"
	"github.com/francemazzi/cards-against-humanity/internal/game"
	"github.com/francemazzi/cards-against-humanity/internal/storage"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type AuthData struct {
	PlayerName string `json:"playerName"`
}

type SetAPIKeyData struct {
	APIKey string `json:"apiKey"`
}

type CreateGameData struct {
	MaxPlayers  int `json:"maxPlayers,omitempty"`
	PointsToWin int `json:"pointsToWin,omitempty"`
}

type JoinGameData struct {
	GameID string `json:"gameId"`
}

type AddBotData struct {
	GameID  string `json:"gameId"`
	Persona string `json:"persona,omitempty"`
	Count   int    `json:"count,omitempty"` // Number of bots to add, default 1
}

type StartGameData struct {
	GameID string `json:"gameId"`
}

type SubmitCardsData struct {
	GameID  string   `json:"gameId"`
	CardIDs []string `json:"cardIds"`
}

type JudgeRoundData struct {
	GameID string `json:"gameId"`
	Index  int    `json:"index"`
}

type NextRoundData struct {
	GameID string `json:"gameId"`
}

type GetStateData struct {
	GameID string `json:"gameId"`
}

type GetHistoryData struct {
	GameID string `json:"gameId"`
}

type LeaderboardRequestData struct {
	Limit int `json:"limit,omitempty"`
}

// Server → Client Messages

type AuthResponseData struct {
	Success  bool   `json:"success"`
	PlayerID string `json:"playerId,omitempty"`
	Error    string `json:"error,omitempty"`
}

type APIKeySetData struct {
	Success  bool   `json:"success"`
	KeyLast4 string `json:"keyLast4,omitempty"`
	Error    string `json:"error,omitempty"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type GameCreatedData struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
}

type GameJoinedData struct {
	GameID   string   `json:"gameId"`
	PlayerID string   `json:"playerId"`
	Players  []string `json:"players"`
}

type BotAddedData struct {
	GameID   string   `json:"gameId"`
	BotNames []string `json:"botNames"`
}

// GameStateData carries one viewer's snapshot of a game.
type GameStateData struct {
	Game game.Snapshot `json:"game"`
}

// GameHistoryData groups past submissions by seat, the winning entries
// flagged per round.
type GameHistoryData struct {
	GameID  string                         `json:"gameId"`
	History map[string][]game.HistoryEntry `json:"history"`
}

type GameListData struct {
	Games []GameSummary `json:"games"`
}

type LeaderboardData struct {
	Entries []storage.LeaderboardEntry `json:"entries"`
}

// Game event payloads

type RoundStartedData struct {
	GameID string          `json:"gameId"`
	Round  int             `json:"round"`
	CzarID string          `json:"czarId"`
	Prompt deck.PromptCard `json:"prompt"`
}

type SubmissionReceivedData struct {
	GameID     string `json:"gameId"`
	Round      int    `json:"round"`
	PlayerID   string `json:"playerId"`
	TableCount int    `json:"tableCount"`
}

type JudgingStartedData struct {
	GameID string               `json:"gameId"`
	Round  int                  `json:"round"`
	CzarID string               `json:"czarId"`
	Table  []game.TableSnapshot `json:"table"`
}

type WinnerSelectedData struct {
	GameID   string            `json:"gameId"`
	Round    int               `json:"round"`
	WinnerID string            `json:"winnerId"`
	Cards    []deck.AnswerCard `json:"cards"`
	Prompt   deck.PromptCard   `json:"prompt"`
}

type GameOverData struct {
	GameID   string `json:"gameId"`
	Round    int    `json:"round"`
	WinnerID string `json:"winnerId"`
}
