package game

import (
	"fmt"
	rand "math/rand/v2"
	"sync"

	"github.com/google/uuid"

	"github.com/francemazzi/cards-against-humanity/internal/deck"
	"github.com/francemazzi/cards-against-humanity/internal/llm"
)

// Status is the game lifecycle state.
type Status string

const (
	StatusLobby        Status = "LOBBY"
	StatusPlayingCards Status = "PLAYING_CARDS"
	StatusJudging      Status = "JUDGING"
	StatusRoundEnded   Status = "ROUND_ENDED"
	StatusGameOver     Status = "GAME_OVER"
)

// MinSeats is the smallest playable game: one judge and two submitters.
const MinSeats = 3

// Settings are the per-game rules fixed at creation.
type Settings struct {
	MaxPlayers  int
	PointsToWin int
}

// DefaultSettings returns the standard lobby defaults.
func DefaultSettings() Settings {
	return Settings{MaxPlayers: 8, PointsToWin: 5}
}

// Submission is one seat's table entry for the current round: the exact
// ordered cards that seat played.
type Submission struct {
	PlayerID string
	Cards    []deck.AnswerCard
}

// RoundResult describes a resolved round.
type RoundResult struct {
	Round    int
	WinnerID string
	Winning  Submission
	GameOver bool
}

// Game holds all state for one session. Every state-changing operation runs
// under the game's own lock, so each game is serially mutated while many
// games run concurrently.
type Game struct {
	mu sync.Mutex

	id       string
	status   Status
	round    int
	players  []*Player
	czarIdx  int
	prompt   deck.PromptCard
	table    []Submission
	winnerID string
	settings Settings
	dealer   Dealer
	history  []RoundRecord
}

// New creates a game in LOBBY with its own shuffled piles built from the
// pack.
func New(pack *deck.Pack, settings Settings, rng *rand.Rand) (*Game, error) {
	if settings.MaxPlayers < MinSeats {
		return nil, fmt.Errorf("%w: max players %d below minimum %d", ErrConfiguration, settings.MaxPlayers, MinSeats)
	}
	if settings.PointsToWin < 1 {
		return nil, fmt.Errorf("%w: points to win must be positive", ErrConfiguration)
	}

	return &Game{
		id:       uuid.NewString(),
		status:   StatusLobby,
		czarIdx:  -1,
		settings: settings,
		dealer: Dealer{
			answers: deck.NewPile(pack.Answers, rng),
			prompts: deck.NewPile(pack.Prompts, rng),
		},
	}, nil
}

// ID returns the game's identity.
func (g *Game) ID() string { return g.id }

// Status returns the current lifecycle state.
func (g *Game) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

// Round returns the monotonic round counter.
func (g *Game) Round() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.round
}

// CzarID returns the seat currently judging, or "" before the first round.
func (g *Game) CzarID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.czarIDLocked()
}

func (g *Game) czarIDLocked() string {
	if g.czarIdx < 0 || g.czarIdx >= len(g.players) {
		return ""
	}
	return g.players[g.czarIdx].ID
}

// AddHuman seats a human player. Only legal in LOBBY.
func (g *Game) AddHuman(name string) (*Player, error) {
	return g.addPlayer(name, false, nil)
}

// AddBot seats a bot with its persona. The persona is immutable afterwards.
func (g *Game) AddBot(name string, persona llm.Persona) (*Player, error) {
	p := persona
	return g.addPlayer(name, true, &p)
}

func (g *Game) addPlayer(name string, isBot bool, persona *llm.Persona) (*Player, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StatusLobby {
		return nil, fmt.Errorf("%w: cannot join a game in %s", ErrInvalidState, g.status)
	}
	if len(g.players) >= g.settings.MaxPlayers {
		return nil, ErrGameFull
	}
	if isBot && persona == nil {
		return nil, fmt.Errorf("%w: bot seat requires a persona", ErrConfiguration)
	}

	player := &Player{
		ID:      uuid.NewString(),
		Name:    name,
		IsBot:   isBot,
		Persona: persona,
	}
	g.players = append(g.players, player)
	return player, nil
}

// Start moves LOBBY to the first round. The pack must be able to keep every
// seat's hand full; anything smaller is a configuration error, not a
// mid-game surprise.
func (g *Game) Start() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StatusLobby {
		return fmt.Errorf("%w: game already started", ErrInvalidState)
	}
	if len(g.players) < MinSeats {
		return fmt.Errorf("%w: need at least %d seats, have %d", ErrInvalidState, MinSeats, len(g.players))
	}
	if need := len(g.players) * HandCapacity; g.dealer.answers.Size() < need {
		return fmt.Errorf("%w: pack has %d answer cards, %d seats need %d", ErrConfiguration, g.dealer.answers.Size(), len(g.players), need)
	}
	if g.dealer.prompts.Size() < 1 {
		return fmt.Errorf("%w: pack has no prompt cards", ErrConfiguration)
	}

	g.round = 1
	return g.beginRoundLocked()
}

// beginRoundLocked draws a prompt, rotates the czar to the next seat in
// stable order, refills every hand, and clears the table.
func (g *Game) beginRoundLocked() error {
	// Played cards from the prior round go back to the piles.
	for _, sub := range g.table {
		g.dealer.answers.Discard(sub.Cards...)
	}
	if g.prompt.ID != "" {
		g.dealer.prompts.Discard(g.prompt)
	}
	g.table = nil
	g.winnerID = ""

	g.czarIdx = (g.czarIdx + 1) % len(g.players)

	prompt, err := g.dealer.DrawPrompt()
	if err != nil {
		return err
	}
	g.prompt = prompt

	for _, p := range g.players {
		if err := g.dealer.RefillHand(p); err != nil {
			return err
		}
	}

	g.status = StatusPlayingCards
	return nil
}

// Submit plays exactly pick cards from the seat's hand onto the table. The
// returned flag reports whether this submission completed the table and
// moved the game to JUDGING, which fires exactly when every non-czar seat
// has one entry.
func (g *Game) Submit(playerID string, cardIDs []string) (bool, error) {
	return g.submit(playerID, cardIDs, -1)
}

// SubmitIfRound is Submit with a round guard: a submission computed for a
// stale round is rejected instead of applied. Used for bot decisions that
// were in flight while the game moved on.
func (g *Game) SubmitIfRound(playerID string, cardIDs []string, round int) (bool, error) {
	return g.submit(playerID, cardIDs, round)
}

func (g *Game) submit(playerID string, cardIDs []string, expectRound int) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StatusPlayingCards {
		return false, fmt.Errorf("%w: submissions are closed in %s", ErrInvalidState, g.status)
	}
	if expectRound >= 0 && g.round != expectRound {
		return false, fmt.Errorf("%w: submission for round %d arrived in round %d", ErrInvalidState, expectRound, g.round)
	}

	player := g.playerLocked(playerID)
	if player == nil {
		return false, fmt.Errorf("%w: unknown player", ErrInvalidSelection)
	}
	if playerID == g.czarIDLocked() {
		return false, fmt.Errorf("%w: the czar does not submit", ErrInvalidSelection)
	}
	for _, sub := range g.table {
		if sub.PlayerID == playerID {
			return false, fmt.Errorf("%w: already submitted this round", ErrInvalidSelection)
		}
	}
	pick := g.prompt.PickCount()
	if len(cardIDs) != pick {
		return false, fmt.Errorf("%w: prompt requires %d cards, got %d", ErrInvalidSelection, pick, len(cardIDs))
	}
	seen := map[string]bool{}
	for _, id := range cardIDs {
		if seen[id] {
			return false, fmt.Errorf("%w: duplicate card id %s", ErrInvalidSelection, id)
		}
		seen[id] = true
	}

	cards, err := g.dealer.RemoveFromHand(player, cardIDs)
	if err != nil {
		return false, err
	}
	g.table = append(g.table, Submission{PlayerID: playerID, Cards: cards})

	if len(g.table) == len(g.players)-1 {
		g.status = StatusJudging
		return true, nil
	}
	return false, nil
}

// Judge lets the czar pick the winning submission by index into table
// order. The winner's score increases by one; no other score changes.
func (g *Game) Judge(judgeID string, index int) (RoundResult, error) {
	return g.judge(judgeID, index, -1)
}

// JudgeIfRound is Judge with the same stale-round guard as SubmitIfRound.
func (g *Game) JudgeIfRound(judgeID string, index, round int) (RoundResult, error) {
	return g.judge(judgeID, index, round)
}

func (g *Game) judge(judgeID string, index, expectRound int) (RoundResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StatusJudging {
		return RoundResult{}, fmt.Errorf("%w: not judging in %s", ErrInvalidState, g.status)
	}
	if expectRound >= 0 && g.round != expectRound {
		return RoundResult{}, fmt.Errorf("%w: judgment for round %d arrived in round %d", ErrInvalidState, expectRound, g.round)
	}
	if judgeID != g.czarIDLocked() {
		return RoundResult{}, fmt.Errorf("%w: only the czar judges", ErrInvalidSelection)
	}
	if index < 0 || index >= len(g.table) {
		return RoundResult{}, fmt.Errorf("%w: submission index %d out of range", ErrInvalidSelection, index)
	}

	winning := g.table[index]
	winner := g.playerLocked(winning.PlayerID)
	winner.Score++
	g.winnerID = winner.ID

	g.history = append(g.history, RoundRecord{
		Round:       g.round,
		Prompt:      g.prompt,
		Submissions: cloneSubmissions(g.table),
		WinnerID:    winner.ID,
	})

	result := RoundResult{
		Round:    g.round,
		WinnerID: winner.ID,
		Winning:  winning,
	}

	if winner.Score >= g.settings.PointsToWin {
		g.status = StatusGameOver
		result.GameOver = true
	} else {
		g.status = StatusRoundEnded
	}
	return result, nil
}

// NextRound advances a resolved round into the next one, incrementing the
// round counter exactly once per completed judge cycle.
func (g *Game) NextRound() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StatusRoundEnded {
		return fmt.Errorf("%w: no resolved round to advance from %s", ErrInvalidState, g.status)
	}
	g.round++
	return g.beginRoundLocked()
}

// Player returns the seat with the given id, or nil.
func (g *Game) Player(id string) *Player {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.playerLocked(id)
}

func (g *Game) playerLocked(id string) *Player {
	for _, p := range g.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// PendingBots returns, in stable seat order, the bot seats that still owe a
// submission for the current round, along with the round they owe it for.
func (g *Game) PendingBots() ([]*Player, int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StatusPlayingCards {
		return nil, g.round
	}

	submitted := map[string]bool{}
	for _, sub := range g.table {
		submitted[sub.PlayerID] = true
	}

	var pending []*Player
	czarID := g.czarIDLocked()
	for _, p := range g.players {
		if p.IsBot && p.ID != czarID && !submitted[p.ID] {
			pending = append(pending, p)
		}
	}
	return pending, g.round
}

// BotCzar returns the czar seat if judging is pending on a bot, else nil.
func (g *Game) BotCzar() (*Player, int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status != StatusJudging {
		return nil, g.round
	}
	czar := g.playerLocked(g.czarIDLocked())
	if czar == nil || !czar.IsBot {
		return nil, g.round
	}
	return czar, g.round
}

// HandOf returns a copy of a seat's current hand.
func (g *Game) HandOf(playerID string) []deck.AnswerCard {
	g.mu.Lock()
	defer g.mu.Unlock()

	p := g.playerLocked(playerID)
	if p == nil {
		return nil
	}
	return append([]deck.AnswerCard(nil), p.Hand...)
}

// Prompt returns the current round's prompt card.
func (g *Game) Prompt() deck.PromptCard {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.prompt
}

// Table returns a copy of the current submissions in arrival order. The
// order is significant: it is what the judge indexes into.
func (g *Game) Table() []Submission {
	g.mu.Lock()
	defer g.mu.Unlock()
	return cloneSubmissions(g.table)
}

// History returns a copy of the resolved-round log.
func (g *Game) History() []RoundRecord {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]RoundRecord, len(g.history))
	copy(out, g.history)
	return out
}

func cloneSubmissions(subs []Submission) []Submission {
	out := make([]Submission, len(subs))
	for i, s := range subs {
		out[i] = Submission{
			PlayerID: s.PlayerID,
			Cards:    append([]deck.AnswerCard(nil), s.Cards...),
		}
	}
	return out
}
