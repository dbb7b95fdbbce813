package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
// These are used for client-server communication protocol
const (
	// Client to server messages
	MessageTypeAuth        MessageType = "auth"
	MessageTypeSetAPIKey   MessageType = "set_api_key"
	MessageTypeCreateGame  MessageType = "create_game"
	MessageTypeJoinGame    MessageType = "join_game"
	MessageTypeAddBot      MessageType = "add_bot"
	MessageTypeStartGame   MessageType = "start_game"
	MessageTypeSubmitCards MessageType = "submit_cards"
	MessageTypeJudgeRound  MessageType = "judge_round"
	MessageTypeNextRound   MessageType = "next_round"
	MessageTypeGetState    MessageType = "get_state"
	MessageTypeListGames   MessageType = "list_games"
	MessageTypeGetHistory  MessageType = "get_history"
	MessageTypeLeaderboard MessageType = "leaderboard"

	// Server to client messages
	MessageTypeError           MessageType = "error"
	MessageTypeAuthResponse    MessageType = "auth_response"
	MessageTypeAPIKeySet       MessageType = "api_key_set"
	MessageTypeGameCreated     MessageType = "game_created"
	MessageTypeGameJoined      MessageType = "game_joined"
	MessageTypeBotAdded        MessageType = "bot_added"
	MessageTypeGameState       MessageType = "game_state"
	MessageTypeGameList        MessageType = "game_list"
	MessageTypeGameHistory     MessageType = "game_history"
	MessageTypeLeaderboardData MessageType = "leaderboard_data"

	// Game events forwarded from the engine
	MessageTypeRoundStarted       MessageType = "round_started"
	MessageTypeSubmissionReceived MessageType = "submission_received"
	MessageTypeJudgingStarted     MessageType = "judging_started"
	MessageTypeWinnerSelected     MessageType = "winner_selected"
	MessageTypeGameOver           MessageType = "game_over"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
