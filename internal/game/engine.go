package game

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/francemazzi/cards-against-humanity/internal/deck"
	"github.com/francemazzi/cards-against-humanity/internal/llm"
)

// DecisionClient is the engine's view of the agent decision pipeline. Calls
// never fail: every outcome is a bounded index, with 0 as the documented
// fallback.
type DecisionClient interface {
	ChooseAnswer(ctx context.Context, persona llm.Persona, prompt deck.PromptCard, hand []deck.AnswerCard, scope llm.CredentialScope) int
	JudgeSubmissions(ctx context.Context, persona llm.Persona, prompt deck.PromptCard, submissions [][]deck.AnswerCard, scope llm.CredentialScope) int
}

// SnapshotSink receives the game snapshot after every committed transition.
// Persistence failures are the sink's concern; the engine fires and forgets.
type SnapshotSink interface {
	SaveSnapshot(ctx context.Context, snap Snapshot) error
}

// defaultDecisionDeadline caps one bot decision end to end. It sits above
// the slowest backend timeout so the backend's own deadline normally wins.
const defaultDecisionDeadline = 45 * time.Second

// Engine drives one game's transitions. Humans act through Submit/Judge;
// the engine invokes the decision client for bot seats and routes their
// choices through the same validation. All waiting happens off the game
// lock, so a pending bot never blocks human actions beyond its own turn.
type Engine struct {
	game     *Game
	agents   DecisionClient
	scope    llm.CredentialScope
	bus      EventBus
	logger   *log.Logger
	clock    quartz.Clock
	sink     SnapshotSink
	deadline time.Duration

	ctx    context.Context
	cancel context.CancelFunc
}

// EngineOption configures an engine.
type EngineOption func(*Engine)

// WithCredentialScope sets the credential scope for the game's bot calls,
// normally the creating user's hosted-backend key.
func WithCredentialScope(scope llm.CredentialScope) EngineOption {
	return func(e *Engine) { e.scope = scope }
}

// WithClock injects the clock used for decision deadlines.
func WithClock(clock quartz.Clock) EngineOption {
	return func(e *Engine) { e.clock = clock }
}

// WithSnapshotSink sets the persistence hook.
func WithSnapshotSink(sink SnapshotSink) EngineOption {
	return func(e *Engine) { e.sink = sink }
}

// WithDecisionDeadline overrides the engine-level cap on one bot decision.
func WithDecisionDeadline(d time.Duration) EngineOption {
	return func(e *Engine) { e.deadline = d }
}

// NewEngine wires a game to its decision client and event bus.
func NewEngine(g *Game, agents DecisionClient, logger *log.Logger, opts ...EngineOption) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		game:     g,
		agents:   agents,
		bus:      NewEventBus(),
		logger:   logger.WithPrefix("engine").With("game", g.ID()),
		clock:    quartz.NewReal(),
		deadline: defaultDecisionDeadline,
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Game returns the engine's game.
func (e *Engine) Game() *Game { return e.game }

// Events returns the bus collaborators subscribe to.
func (e *Engine) Events() EventBus { return e.bus }

// Close tears the engine down. In-flight bot decisions are cancelled and
// their results discarded; they can no longer touch game state.
func (e *Engine) Close() {
	e.cancel()
}

// Start begins the first round and kicks off bot submissions.
func (e *Engine) Start() error {
	if err := e.game.Start(); err != nil {
		return err
	}
	e.announceRound()
	return nil
}

// Submit plays cards for a seat. Bot submissions go through this same path.
func (e *Engine) Submit(playerID string, cardIDs []string) error {
	toJudging, err := e.game.Submit(playerID, cardIDs)
	if err != nil {
		return err
	}
	e.afterSubmit(playerID, toJudging)
	return nil
}

// Judge resolves the round with the czar's pick.
func (e *Engine) Judge(judgeID string, index int) error {
	result, err := e.game.Judge(judgeID, index)
	if err != nil {
		return err
	}
	e.afterJudge(result)
	return nil
}

// NextRound advances a resolved round and kicks off the next set of bot
// submissions.
func (e *Engine) NextRound() error {
	if err := e.game.NextRound(); err != nil {
		return err
	}
	e.announceRound()
	return nil
}

func (e *Engine) announceRound() {
	round := e.game.Round()
	e.logger.Info("round started", "round", round, "czar", e.game.CzarID())
	e.bus.Publish(RoundStartedEvent{
		eventBase: newBase(e.game.ID()),
		Round:     round,
		CzarID:    e.game.CzarID(),
		Prompt:    e.game.Prompt(),
	})
	e.persist()
	go e.runBotSubmissions(round)
}

func (e *Engine) afterSubmit(playerID string, toJudging bool) {
	round := e.game.Round()
	e.bus.Publish(SubmissionReceivedEvent{
		eventBase:  newBase(e.game.ID()),
		Round:      round,
		PlayerID:   playerID,
		TableCount: len(e.game.Table()),
	})

	if toJudging {
		e.logger.Info("table complete, judging", "round", round)
		e.bus.Publish(JudgingStartedEvent{
			eventBase: newBase(e.game.ID()),
			Round:     round,
			CzarID:    e.game.CzarID(),
			Table:     e.game.Table(),
		})
		if czar, czarRound := e.game.BotCzar(); czar != nil {
			go e.runBotJudge(czar, czarRound)
		}
	}
	e.persist()
}

func (e *Engine) afterJudge(result RoundResult) {
	e.logger.Info("winner selected", "round", result.Round, "winner", result.WinnerID)
	e.bus.Publish(WinnerSelectedEvent{
		eventBase: newBase(e.game.ID()),
		Round:     result.Round,
		WinnerID:  result.WinnerID,
		Winning:   result.Winning,
		Prompt:    e.game.Prompt(),
	})
	if result.GameOver {
		e.logger.Info("game over", "winner", result.WinnerID)
		e.bus.Publish(GameOverEvent{
			eventBase: newBase(e.game.ID()),
			Round:     result.Round,
			WinnerID:  result.WinnerID,
		})
	}
	e.persist()
}

// runBotSubmissions invokes the decision client for each bot seat still
// owing a submission, in stable seat order. Invocation order is submission
// order, which the judge later indexes into.
func (e *Engine) runBotSubmissions(round int) {
	bots, _ := e.game.PendingBots()
	for _, bot := range bots {
		if e.ctx.Err() != nil {
			return
		}

		hand := e.game.HandOf(bot.ID)
		prompt := e.game.Prompt()
		if len(hand) == 0 {
			continue
		}

		persona := llm.Persona{}
		if bot.Persona != nil {
			persona = *bot.Persona
		}

		idx := e.decide(func(ctx context.Context) int {
			return e.agents.ChooseAnswer(ctx, persona, prompt, hand, e.scope)
		})
		if e.ctx.Err() != nil {
			// Torn down while the call was in flight; discard the result.
			return
		}

		cardIDs := pickFromHand(hand, idx, prompt.PickCount())
		toJudging, err := e.game.SubmitIfRound(bot.ID, cardIDs, round)
		if err != nil {
			// The round moved on while the decision was in flight; the
			// result is discarded.
			e.logger.Debug("discarding stale bot submission", "bot", bot.Name, "round", round, "err", err)
			return
		}
		e.logger.Info("bot submitted", "bot", bot.Name, "round", round, "index", idx)
		e.afterSubmit(bot.ID, toJudging)
	}
}

// runBotJudge invokes the decision client for a bot czar.
func (e *Engine) runBotJudge(czar *Player, round int) {
	if e.ctx.Err() != nil {
		return
	}

	table := e.game.Table()
	prompt := e.game.Prompt()
	submissions := make([][]deck.AnswerCard, len(table))
	for i, sub := range table {
		submissions[i] = sub.Cards
	}

	persona := llm.Persona{}
	if czar.Persona != nil {
		persona = *czar.Persona
	}

	idx := e.decide(func(ctx context.Context) int {
		return e.agents.JudgeSubmissions(ctx, persona, prompt, submissions, e.scope)
	})
	if e.ctx.Err() != nil {
		return
	}

	result, err := e.game.JudgeIfRound(czar.ID, idx, round)
	if err != nil {
		e.logger.Debug("discarding stale bot judgment", "czar", czar.Name, "round", round, "err", err)
		return
	}
	e.logger.Info("bot judged", "czar", czar.Name, "round", round, "index", idx)
	e.afterJudge(result)
}

// decide runs one decision call under the engine's deadline. Elapsing the
// deadline is a normal outcome that resolves to index 0; the round never
// stalls on a hung backend.
func (e *Engine) decide(run func(context.Context) int) int {
	callCtx, cancel := context.WithCancel(e.ctx)
	defer cancel()

	expired := make(chan struct{})
	timer := e.clock.AfterFunc(e.deadline, func() {
		close(expired)
	})
	defer timer.Stop()

	resultCh := make(chan int, 1)
	go func() {
		resultCh <- run(callCtx)
	}()

	select {
	case idx := <-resultCh:
		return idx
	case <-expired:
		e.logger.Warn("bot decision deadline elapsed, defaulting to first option")
		return 0
	case <-e.ctx.Done():
		return 0
	}
}

// pickFromHand maps a chosen index to the card ids a bot plays. The chosen
// card leads; prompts that need more are padded with the next cards in hand
// order.
func pickFromHand(hand []deck.AnswerCard, idx, pick int) []string {
	if idx < 0 || idx >= len(hand) {
		idx = 0
	}
	ids := []string{hand[idx].ID}
	for i := 0; len(ids) < pick && i < len(hand); i++ {
		if i == idx {
			continue
		}
		ids = append(ids, hand[i].ID)
	}
	return ids
}

func (e *Engine) persist() {
	if e.sink == nil {
		return
	}
	snap := e.game.Snapshot("")
	go func() {
		if err := e.sink.SaveSnapshot(e.ctx, snap); err != nil {
			e.logger.Warn("snapshot persistence failed", "err", err)
		}
	}()
}
