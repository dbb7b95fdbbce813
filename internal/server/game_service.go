package server

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/rs/zerolog"

	"github.com/francemazzi/cards-against-humanity/internal/credential"
	"github.com/francemazzi/cards-against-humanity/internal/deck"
	"github.com/francemazzi/cards-against-humanity/internal/game"
	"github.com/francemazzi/cards-against-humanity/internal/llm"
	"github.com/francemazzi/cards-against-humanity/internal/randutil"
	"github.com/francemazzi/cards-against-humanity/internal/storage"
)

// GameService coordinates sessions, seats, and message handling between
// connections and game engines.
type GameService struct {
	server   *Server
	manager  *GameManager
	agents   game.DecisionClient
	creds    *credential.Service
	store    storage.Store
	storeLog zerolog.Logger
	pack     *deck.Pack
	defaults game.Settings
	personas []llm.Persona
	logger   *log.Logger

	mu        sync.Mutex
	userKeys  map[string]credential.Credential // playerName -> sealed key
	personaIx int
	botSeq    int
}

// ServiceOption configures a GameService.
type ServiceOption func(*GameService)

// WithStore enables snapshot persistence and win recording.
func WithStore(store storage.Store, logger zerolog.Logger) ServiceOption {
	return func(s *GameService) {
		s.store = store
		s.storeLog = logger
	}
}

// WithCredentials enables per-user hosted-backend keys.
func WithCredentials(creds *credential.Service) ServiceOption {
	return func(s *GameService) { s.creds = creds }
}

// WithPack overrides the card pack used for new games.
func WithPack(pack *deck.Pack) ServiceOption {
	return func(s *GameService) { s.pack = pack }
}

// WithPersonas replaces the built-in bot persona roster.
func WithPersonas(personas []llm.Persona) ServiceOption {
	return func(s *GameService) {
		if len(personas) > 0 {
			s.personas = personas
		}
	}
}

// WithDefaultSettings overrides the settings applied when a client omits
// them.
func WithDefaultSettings(settings game.Settings) ServiceOption {
	return func(s *GameService) { s.defaults = settings }
}

// NewGameService creates the service that connections dispatch into.
func NewGameService(server *Server, manager *GameManager, agents game.DecisionClient, logger *log.Logger, opts ...ServiceOption) *GameService {
	s := &GameService{
		server:   server,
		manager:  manager,
		agents:   agents,
		pack:     deck.DefaultPack(),
		defaults: game.DefaultSettings(),
		personas: llm.BuiltinPersonas(),
		logger:   logger.WithPrefix("service"),
		userKeys: make(map[string]credential.Credential),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StoreAPIKey validates and seals a user's hosted-backend key. The plaintext
// key is never retained; it is unsealed again only when a game is created.
func (s *GameService) StoreAPIKey(ctx context.Context, owner, rawKey string) (string, error) {
	if s.creds == nil {
		return "", fmt.Errorf("api keys are not enabled on this server")
	}

	cred, err := s.creds.Create(ctx, owner, rawKey)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.userKeys[owner] = cred
	s.mu.Unlock()

	s.logger.Info("API key stored", "owner", owner, "last4", cred.KeyLast4)
	return cred.KeyLast4, nil
}

// scopeFor resolves the credential scope for games created by owner.
func (s *GameService) scopeFor(owner string) llm.CredentialScope {
	scope := llm.CredentialScope{UserID: owner}
	if s.creds == nil {
		return scope
	}

	s.mu.Lock()
	cred, ok := s.userKeys[owner]
	s.mu.Unlock()
	if !ok {
		return scope
	}

	key, err := s.creds.Open(cred)
	if err != nil {
		s.logger.Warn("Failed to open stored key, falling back", "owner", owner, "error", err)
		return scope
	}
	scope.UserKey = key
	return scope
}

// CreateGame builds a new game with the creator seated, registers its
// session, and wires event forwarding and persistence.
func (s *GameService) CreateGame(ownerName string, maxPlayers, pointsToWin int) (*GameSession, *game.Player, error) {
	settings := s.defaults
	if maxPlayers > 0 {
		settings.MaxPlayers = maxPlayers
	}
	if pointsToWin > 0 {
		settings.PointsToWin = pointsToWin
	}

	rng := randutil.New(time.Now().UnixNano())
	g, err := game.New(s.pack, settings, rng)
	if err != nil {
		return nil, nil, err
	}

	seat, err := g.AddHuman(ownerName)
	if err != nil {
		return nil, nil, err
	}

	engineOpts := []game.EngineOption{
		game.WithCredentialScope(s.scopeFor(ownerName)),
	}
	if s.store != nil {
		engineOpts = append(engineOpts, game.WithSnapshotSink(s.store))
	}

	engine := game.NewEngine(g, s.agents, s.logger, engineOpts...)
	engine.Events().Subscribe(&gameEventForwarder{
		gameID: g.ID(),
		svc:    s,
		logger: s.logger,
	})
	if s.store != nil {
		engine.Events().Subscribe(storage.NewWinRecorder(s.store, s.storeLog, func(playerID string) string {
			if p := g.Player(playerID); p != nil {
				return p.Name
			}
			return ""
		}))
	}

	session := &GameSession{
		ID:        g.ID(),
		Engine:    engine,
		Settings:  settings,
		OwnerName: ownerName,
		CreatedAt: time.Now(),
	}
	s.manager.Register(session)

	s.logger.Info("Game created", "game", g.ID(), "owner", ownerName,
		"maxPlayers", settings.MaxPlayers, "pointsToWin", settings.PointsToWin)
	return session, seat, nil
}

// JoinGame seats a human in an existing lobby and returns the seat plus the
// current roster.
func (s *GameService) JoinGame(gameID, name string) (*game.Player, []string, error) {
	session, ok := s.manager.Get(gameID)
	if !ok {
		return nil, nil, fmt.Errorf("game not found: %s", gameID)
	}

	seat, err := session.Engine.Game().AddHuman(name)
	if err != nil {
		return nil, nil, err
	}

	snap := session.Engine.Game().Snapshot("")
	names := make([]string, 0, len(snap.Players))
	for _, p := range snap.Players {
		names = append(names, p.Name)
	}

	s.logger.Info("Player joined", "game", gameID, "player", name)
	return seat, names, nil
}

// AddBot seats a bot with the named persona, or the next built-in persona
// in rotation when none is given.
func (s *GameService) AddBot(gameID, personaID string) (string, error) {
	session, ok := s.manager.Get(gameID)
	if !ok {
		return "", fmt.Errorf("game not found: %s", gameID)
	}

	persona := s.nextPersona(personaID)

	s.mu.Lock()
	s.botSeq++
	seq := s.botSeq
	s.mu.Unlock()
	name := fmt.Sprintf("%s #%d", persona.Name, seq)

	if _, err := session.Engine.Game().AddBot(name, persona); err != nil {
		return "", err
	}

	s.logger.Info("Bot added", "game", gameID, "bot", name, "persona", persona.ID)
	return name, nil
}

func (s *GameService) nextPersona(personaID string) llm.Persona {
	if personaID != "" {
		for _, p := range s.personas {
			if strings.EqualFold(p.ID, personaID) {
				return p
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	persona := s.personas[s.personaIx%len(s.personas)]
	s.personaIx++
	return persona
}

// StartGame begins the first round.
func (s *GameService) StartGame(gameID string) error {
	session, ok := s.manager.Get(gameID)
	if !ok {
		return fmt.Errorf("game not found: %s", gameID)
	}
	return session.Engine.Start()
}

// SubmitCards plays a seat's cards for the current round.
func (s *GameService) SubmitCards(gameID, playerID string, cardIDs []string) error {
	session, ok := s.manager.Get(gameID)
	if !ok {
		return fmt.Errorf("game not found: %s", gameID)
	}
	if playerID == "" {
		return fmt.Errorf("not seated in game %s", gameID)
	}
	return session.Engine.Submit(playerID, cardIDs)
}

// Judge resolves the round with the czar's pick.
func (s *GameService) Judge(gameID, playerID string, index int) error {
	session, ok := s.manager.Get(gameID)
	if !ok {
		return fmt.Errorf("game not found: %s", gameID)
	}
	if playerID == "" {
		return fmt.Errorf("not seated in game %s", gameID)
	}
	return session.Engine.Judge(playerID, index)
}

// NextRound advances a game out of ROUND_ENDED.
func (s *GameService) NextRound(gameID string) error {
	session, ok := s.manager.Get(gameID)
	if !ok {
		return fmt.Errorf("game not found: %s", gameID)
	}
	return session.Engine.NextRound()
}

// StateFor renders the game for one viewer.
func (s *GameService) StateFor(gameID, viewerID string) (game.Snapshot, error) {
	session, ok := s.manager.Get(gameID)
	if !ok {
		return game.Snapshot{}, fmt.Errorf("game not found: %s", gameID)
	}
	return session.Engine.Game().Snapshot(viewerID), nil
}

// History projects a game's resolved rounds into per-seat entries.
func (s *GameService) History(gameID string) (map[string][]game.HistoryEntry, error) {
	session, ok := s.manager.Get(gameID)
	if !ok {
		return nil, fmt.Errorf("game not found: %s", gameID)
	}
	return game.BuildPlayerHistory(session.Engine.Game().History()), nil
}

// ListGames returns summaries of running sessions.
func (s *GameService) ListGames() []GameSummary {
	return s.manager.List()
}

// Leaderboard returns the all-time round win standings.
func (s *GameService) Leaderboard(ctx context.Context, limit int) ([]storage.LeaderboardEntry, error) {
	if s.store == nil {
		return nil, fmt.Errorf("leaderboard is not enabled on this server")
	}
	return s.store.Leaderboard(ctx, limit)
}

// Close tears down all sessions.
func (s *GameService) Close() {
	s.manager.CloseAll()
}

// gameEventForwarder turns engine events into WebSocket broadcasts, and
// pushes refreshed per-seat views whenever hands change.
type gameEventForwarder struct {
	gameID string
	svc    *GameService
	logger *log.Logger
}

// OnEvent implements game.Subscriber.
func (f *gameEventForwarder) OnEvent(event game.Event) {
	f.logger.Debug("Forwarding game event", "type", event.EventType(), "game", f.gameID)

	switch e := event.(type) {
	case game.RoundStartedEvent:
		f.broadcast(MessageTypeRoundStarted, RoundStartedData{
			GameID: f.gameID,
			Round:  e.Round,
			CzarID: e.CzarID,
			Prompt: e.Prompt,
		})
		f.pushStates()

	case game.SubmissionReceivedEvent:
		f.broadcast(MessageTypeSubmissionReceived, SubmissionReceivedData{
			GameID:     f.gameID,
			Round:      e.Round,
			PlayerID:   e.PlayerID,
			TableCount: e.TableCount,
		})

	case game.JudgingStartedEvent:
		table := make([]game.TableSnapshot, len(e.Table))
		for i, sub := range e.Table {
			table[i] = game.TableSnapshot{PlayerID: sub.PlayerID, Cards: sub.Cards}
		}
		f.broadcast(MessageTypeJudgingStarted, JudgingStartedData{
			GameID: f.gameID,
			Round:  e.Round,
			CzarID: e.CzarID,
			Table:  table,
		})

	case game.WinnerSelectedEvent:
		f.broadcast(MessageTypeWinnerSelected, WinnerSelectedData{
			GameID:   f.gameID,
			Round:    e.Round,
			WinnerID: e.WinnerID,
			Cards:    e.Winning.Cards,
			Prompt:   e.Prompt,
		})

	case game.GameOverEvent:
		f.broadcast(MessageTypeGameOver, GameOverData{
			GameID:   f.gameID,
			Round:    e.Round,
			WinnerID: e.WinnerID,
		})
		f.pushStates()
	}
}

func (f *gameEventForwarder) broadcast(msgType MessageType, data interface{}) {
	msg, err := NewMessage(msgType, data)
	if err != nil {
		f.logger.Error("Failed to create event message", "type", msgType, "error", err)
		return
	}
	f.svc.server.BroadcastToGame(f.gameID, msg)
}

// pushStates sends each connected human seat its own view, hand included.
func (f *gameEventForwarder) pushStates() {
	session, ok := f.svc.manager.Get(f.gameID)
	if !ok {
		return
	}
	g := session.Engine.Game()

	for _, playerID := range f.svc.server.GamePlayers(f.gameID) {
		msg, err := NewMessage(MessageTypeGameState, GameStateData{Game: g.Snapshot(playerID)})
		if err != nil {
			f.logger.Error("Failed to create state message", "error", err)
			continue
		}
		_ = f.svc.server.SendToPlayer(playerID, msg) // Ignore send errors
	}
}
