package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// Connection represents a WebSocket connection to a client
type Connection struct {
	conn        *websocket.Conn
	send        chan *Message
	playerName  string
	playerID    string
	gameID      string
	logger      *log.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	mu          sync.RWMutex
	closeOnce   sync.Once
	gameService *GameService
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, logger *log.Logger, gameService *GameService) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:        conn,
		send:        make(chan *Message, 256),
		logger:      logger.WithPrefix("conn"),
		ctx:         ctx,
		cancel:      cancel,
		gameService: gameService,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage sends a message to the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed, this is expected during shutdown
			c.logger.Debug("Attempted to send message on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close() // Ignore close errors
		return ErrConnectionClosed
	}
}

// SetName records the authenticated display name.
func (c *Connection) SetName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerName = name
}

// GetName returns the authenticated display name.
func (c *Connection) GetName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerName
}

// SetPlayer associates this connection with a seat in a game.
func (c *Connection) SetPlayer(playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerID = playerID
}

// GetPlayer returns the associated seat ID.
func (c *Connection) GetPlayer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// SetGame associates this connection with a game.
func (c *Connection) SetGame(gameID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gameID = gameID
}

// GetGame returns the associated game ID.
func (c *Connection) GetGame() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gameID
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var (
	ErrConnectionClosed = websocket.ErrCloseSent
)

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }() // Ignore close errors during cleanup

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // Ignore close errors during cleanup
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "player", c.GetName())

	switch msg.Type {
	case MessageTypeAuth:
		var data AuthData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse auth data")
			return
		}
		c.handleAuth(data)

	case MessageTypeSetAPIKey:
		var data SetAPIKeyData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse api key data")
			return
		}
		c.handleSetAPIKey(data)

	case MessageTypeCreateGame:
		var data CreateGameData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse create game data")
			return
		}
		c.handleCreateGame(data)

	case MessageTypeJoinGame:
		var data JoinGameData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse join game data")
			return
		}
		c.handleJoinGame(data)

	case MessageTypeAddBot:
		var data AddBotData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse add bot data")
			return
		}
		c.handleAddBot(data)

	case MessageTypeStartGame:
		var data StartGameData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse start game data")
			return
		}
		c.handleStartGame(data)

	case MessageTypeSubmitCards:
		var data SubmitCardsData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse submit cards data")
			return
		}
		c.handleSubmitCards(data)

	case MessageTypeJudgeRound:
		var data JudgeRoundData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse judge data")
			return
		}
		c.handleJudgeRound(data)

	case MessageTypeNextRound:
		var data NextRoundData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse next round data")
			return
		}
		c.handleNextRound(data)

	case MessageTypeGetState:
		var data GetStateData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse get state data")
			return
		}
		c.handleGetState(data)

	case MessageTypeGetHistory:
		var data GetHistoryData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse get history data")
			return
		}
		c.handleGetHistory(data)

	case MessageTypeListGames:
		c.handleListGames()

	case MessageTypeLeaderboard:
		var data LeaderboardRequestData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse leaderboard data")
			return
		}
		c.handleLeaderboard(data)

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}

	_ = c.SendMessage(errorMsg) // Ignore send errors during error handling
}

func (c *Connection) handleAuth(data AuthData) {
	c.logger.Info("Auth request", "playerName", data.PlayerName)

	// Simple authentication - just accept any non-empty player name
	if data.PlayerName == "" {
		c.sendError("invalid_auth", "Player name required")
		return
	}

	c.SetName(data.PlayerName)

	response, _ := NewMessage(MessageTypeAuthResponse, AuthResponseData{
		Success:  true,
		PlayerID: data.PlayerName,
	})
	_ = c.SendMessage(response) // Ignore send errors
}

func (c *Connection) handleSetAPIKey(data SetAPIKeyData) {
	name := c.GetName()
	if name == "" {
		c.sendError("not_authenticated", "Must authenticate first")
		return
	}
	if c.gameService == nil {
		c.sendError("service_unavailable", "Game service not available")
		return
	}

	last4, err := c.gameService.StoreAPIKey(c.ctx, name, data.APIKey)
	if err != nil {
		response, _ := NewMessage(MessageTypeAPIKeySet, APIKeySetData{Error: err.Error()})
		_ = c.SendMessage(response)
		return
	}

	response, _ := NewMessage(MessageTypeAPIKeySet, APIKeySetData{Success: true, KeyLast4: last4})
	_ = c.SendMessage(response)
}

func (c *Connection) handleCreateGame(data CreateGameData) {
	name := c.GetName()
	if name == "" {
		c.sendError("not_authenticated", "Must authenticate first")
		return
	}
	if c.gameService == nil {
		c.sendError("service_unavailable", "Game service not available")
		return
	}

	session, seat, err := c.gameService.CreateGame(name, data.MaxPlayers, data.PointsToWin)
	if err != nil {
		c.sendError("create_failed", err.Error())
		return
	}

	c.SetGame(session.ID)
	c.SetPlayer(seat.ID)

	response, _ := NewMessage(MessageTypeGameCreated, GameCreatedData{
		GameID:   session.ID,
		PlayerID: seat.ID,
	})
	_ = c.SendMessage(response)
}

func (c *Connection) handleJoinGame(data JoinGameData) {
	name := c.GetName()
	if name == "" {
		c.sendError("not_authenticated", "Must authenticate first")
		return
	}
	if c.gameService == nil {
		c.sendError("service_unavailable", "Game service not available")
		return
	}

	seat, names, err := c.gameService.JoinGame(data.GameID, name)
	if err != nil {
		c.sendError("join_failed", err.Error())
		return
	}

	c.SetGame(data.GameID)
	c.SetPlayer(seat.ID)

	response, _ := NewMessage(MessageTypeGameJoined, GameJoinedData{
		GameID:   data.GameID,
		PlayerID: seat.ID,
		Players:  names,
	})
	_ = c.SendMessage(response)
}

func (c *Connection) handleAddBot(data AddBotData) {
	if c.gameService == nil {
		c.sendError("service_unavailable", "Game service not available")
		return
	}
	gameID := data.GameID
	if gameID == "" {
		gameID = c.GetGame()
	}

	count := data.Count
	if count <= 0 {
		count = 1
	}

	names := make([]string, 0, count)
	for i := 0; i < count; i++ {
		botName, err := c.gameService.AddBot(gameID, data.Persona)
		if err != nil {
			c.sendError("add_bot_failed", err.Error())
			return
		}
		names = append(names, botName)
	}

	response, _ := NewMessage(MessageTypeBotAdded, BotAddedData{
		GameID:   gameID,
		BotNames: names,
	})
	_ = c.SendMessage(response)
}

func (c *Connection) handleStartGame(data StartGameData) {
	if c.gameService == nil {
		c.sendError("service_unavailable", "Game service not available")
		return
	}
	gameID := data.GameID
	if gameID == "" {
		gameID = c.GetGame()
	}

	if err := c.gameService.StartGame(gameID); err != nil {
		c.sendError("start_failed", err.Error())
		return
	}
	// No direct response - the engine publishes round_started
}

func (c *Connection) handleSubmitCards(data SubmitCardsData) {
	if c.gameService == nil {
		c.sendError("service_unavailable", "Game service not available")
		return
	}
	gameID := data.GameID
	if gameID == "" {
		gameID = c.GetGame()
	}

	if err := c.gameService.SubmitCards(gameID, c.GetPlayer(), data.CardIDs); err != nil {
		c.sendError("submit_failed", err.Error())
		return
	}
}

func (c *Connection) handleJudgeRound(data JudgeRoundData) {
	if c.gameService == nil {
		c.sendError("service_unavailable", "Game service not available")
		return
	}
	gameID := data.GameID
	if gameID == "" {
		gameID = c.GetGame()
	}

	if err := c.gameService.Judge(gameID, c.GetPlayer(), data.Index); err != nil {
		c.sendError("judge_failed", err.Error())
		return
	}
}

func (c *Connection) handleNextRound(data NextRoundData) {
	if c.gameService == nil {
		c.sendError("service_unavailable", "Game service not available")
		return
	}
	gameID := data.GameID
	if gameID == "" {
		gameID = c.GetGame()
	}

	if err := c.gameService.NextRound(gameID); err != nil {
		c.sendError("next_round_failed", err.Error())
		return
	}
}

func (c *Connection) handleGetState(data GetStateData) {
	if c.gameService == nil {
		c.sendError("service_unavailable", "Game service not available")
		return
	}
	gameID := data.GameID
	if gameID == "" {
		gameID = c.GetGame()
	}

	snap, err := c.gameService.StateFor(gameID, c.GetPlayer())
	if err != nil {
		c.sendError("state_failed", err.Error())
		return
	}

	response, _ := NewMessage(MessageTypeGameState, GameStateData{Game: snap})
	_ = c.SendMessage(response)
}

func (c *Connection) handleGetHistory(data GetHistoryData) {
	if c.gameService == nil {
		c.sendError("service_unavailable", "Game service not available")
		return
	}
	gameID := data.GameID
	if gameID == "" {
		gameID = c.GetGame()
	}

	history, err := c.gameService.History(gameID)
	if err != nil {
		c.sendError("history_failed", err.Error())
		return
	}

	response, _ := NewMessage(MessageTypeGameHistory, GameHistoryData{GameID: gameID, History: history})
	_ = c.SendMessage(response)
}

func (c *Connection) handleListGames() {
	if c.gameService == nil {
		c.sendError("service_unavailable", "Game service not available")
		return
	}

	response, _ := NewMessage(MessageTypeGameList, GameListData{Games: c.gameService.ListGames()})
	_ = c.SendMessage(response)
}

func (c *Connection) handleLeaderboard(data LeaderboardRequestData) {
	if c.gameService == nil {
		c.sendError("service_unavailable", "Game service not available")
		return
	}

	entries, err := c.gameService.Leaderboard(c.ctx, data.Limit)
	if err != nil {
		c.sendError("leaderboard_failed", err.Error())
		return
	}

	response, _ := NewMessage(MessageTypeLeaderboardData, LeaderboardData{Entries: entries})
	_ = c.SendMessage(response)
}
