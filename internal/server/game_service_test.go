package server

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/francemazzi/cards-against-humanity/internal/deck"
	"github.com/francemazzi/cards-against-humanity/internal/game"
	"github.com/francemazzi/cards-against-humanity/internal/llm"
)

// scriptedAgent always picks index 0, without network calls.
type scriptedAgent struct{}

func (scriptedAgent) ChooseAnswer(_ context.Context, _ llm.Persona, _ deck.PromptCard, _ []deck.AnswerCard, _ llm.CredentialScope) int {
	return 0
}

func (scriptedAgent) JudgeSubmissions(_ context.Context, _ llm.Persona, _ deck.PromptCard, _ [][]deck.AnswerCard, _ llm.CredentialScope) int {
	return 0
}

func newTestService(t *testing.T, opts ...ServiceOption) *GameService {
	t.Helper()
	logger := log.New(io.Discard)
	srv := NewServer("localhost:0", logger)
	manager := NewGameManager(zerolog.Nop())
	svc := NewGameService(srv, manager, scriptedAgent{}, logger, opts...)
	srv.SetGameService(svc)
	t.Cleanup(svc.Close)
	return svc
}

func TestCreateGameSeatsOwner(t *testing.T) {
	svc := newTestService(t)

	session, seat, err := svc.CreateGame("alice", 0, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.NotEmpty(t, seat.ID)
	assert.Equal(t, "alice", session.OwnerName)
	assert.Equal(t, 8, session.Settings.MaxPlayers)
	assert.Equal(t, 5, session.Settings.PointsToWin)

	snap, err := svc.StateFor(session.ID, seat.ID)
	require.NoError(t, err)
	assert.Equal(t, game.StatusLobby, snap.Status)
	require.Len(t, snap.Players, 1)
	assert.Equal(t, "alice", snap.Players[0].Name)
}

func TestCreateGameHonorsOverrides(t *testing.T) {
	svc := newTestService(t)

	session, _, err := svc.CreateGame("alice", 4, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, session.Settings.MaxPlayers)
	assert.Equal(t, 3, session.Settings.PointsToWin)
}

func TestJoinGameReturnsRoster(t *testing.T) {
	svc := newTestService(t)
	session, _, err := svc.CreateGame("alice", 0, 0)
	require.NoError(t, err)

	seat, names, err := svc.JoinGame(session.ID, "bob")
	require.NoError(t, err)
	assert.NotEmpty(t, seat.ID)
	assert.Equal(t, []string{"alice", "bob"}, names)

	_, _, err = svc.JoinGame("missing", "carol")
	assert.Error(t, err)
}

func TestAddBotRotatesPersonas(t *testing.T) {
	svc := newTestService(t)
	session, _, err := svc.CreateGame("alice", 0, 0)
	require.NoError(t, err)

	first, err := svc.AddBot(session.ID, "")
	require.NoError(t, err)
	second, err := svc.AddBot(session.ID, "")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestAddBotHonorsRequestedPersona(t *testing.T) {
	svc := newTestService(t)
	session, _, err := svc.CreateGame("alice", 0, 0)
	require.NoError(t, err)

	name, err := svc.AddBot(session.ID, "wholesome")
	require.NoError(t, err)

	snap, err := svc.StateFor(session.ID, "")
	require.NoError(t, err)
	var found bool
	for _, p := range snap.Players {
		if p.Name == name {
			found = true
			assert.True(t, p.IsBot)
		}
	}
	assert.True(t, found)
}

func TestStartGameRunsBotRound(t *testing.T) {
	svc := newTestService(t)
	session, seat, err := svc.CreateGame("alice", 3, 1)
	require.NoError(t, err)

	_, err = svc.AddBot(session.ID, "")
	require.NoError(t, err)
	_, err = svc.AddBot(session.ID, "")
	require.NoError(t, err)

	require.NoError(t, svc.StartGame(session.ID))

	// Both bot seats submit through the scripted agent; the human czar
	// judges once the table is full.
	require.Eventually(t, func() bool {
		snap, err := svc.StateFor(session.ID, "")
		return err == nil && snap.Status == game.StatusJudging
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, svc.Judge(session.ID, seat.ID, 0))

	snap, err := svc.StateFor(session.ID, "")
	require.NoError(t, err)
	assert.Equal(t, game.StatusGameOver, snap.Status)
	assert.NotEmpty(t, snap.WinnerID)

	history, err := svc.History(session.ID)
	require.NoError(t, err)
	require.Len(t, history, 2, "both bot seats played round 1")
	var winners int
	for _, entries := range history {
		for _, e := range entries {
			if e.IsWinner {
				winners++
			}
		}
	}
	assert.Equal(t, 1, winners)
}

func TestSubmitRequiresSeat(t *testing.T) {
	svc := newTestService(t)
	session, _, err := svc.CreateGame("alice", 0, 0)
	require.NoError(t, err)

	assert.Error(t, svc.SubmitCards(session.ID, "", []string{"w1"}))
	assert.Error(t, svc.Judge(session.ID, "", 0))
}

func TestListGamesReflectsSessions(t *testing.T) {
	svc := newTestService(t)
	assert.Empty(t, svc.ListGames())

	session, _, err := svc.CreateGame("alice", 6, 3)
	require.NoError(t, err)

	games := svc.ListGames()
	require.Len(t, games, 1)
	assert.Equal(t, session.ID, games[0].ID)
	assert.Equal(t, string(game.StatusLobby), games[0].Status)
	assert.Equal(t, 6, games[0].MaxPlayers)
}

func TestLeaderboardDisabledWithoutStore(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Leaderboard(context.Background(), 10)
	assert.Error(t, err)
}

func TestStoreAPIKeyDisabledWithoutCredentials(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.StoreAPIKey(context.Background(), "alice", "sk-test")
	assert.Error(t, err)
}
