package game

import (
	"sync"
	"time"

	"github.com/francemazzi/cards-against-humanity/internal/deck"
)

// EventType identifies a game domain event.
type EventType string

const (
	EventTypeRoundStarted       EventType = "round_started"
	EventTypeSubmissionReceived EventType = "submission_received"
	EventTypeJudgingStarted     EventType = "judging_started"
	EventTypeWinnerSelected     EventType = "winner_selected"
	EventTypeGameOver           EventType = "game_over"
)

// String returns the string representation of the event type.
func (et EventType) String() string {
	return string(et)
}

// Event is anything that happens during a game that collaborators may react
// to.
type Event interface {
	EventType() EventType
	GameID() string
	Timestamp() time.Time
}

type eventBase struct {
	gameID    string
	timestamp time.Time
}

func (e eventBase) GameID() string       { return e.gameID }
func (e eventBase) Timestamp() time.Time { return e.timestamp }

func newBase(gameID string) eventBase {
	return eventBase{gameID: gameID, timestamp: time.Now()}
}

// RoundStartedEvent is published when a round begins and hands are dealt.
type RoundStartedEvent struct {
	eventBase
	Round  int
	CzarID string
	Prompt deck.PromptCard
}

func (RoundStartedEvent) EventType() EventType { return EventTypeRoundStarted }

// SubmissionReceivedEvent is published when a seat's cards hit the table.
// Card contents are withheld until judging so clients cannot peek.
type SubmissionReceivedEvent struct {
	eventBase
	Round      int
	PlayerID   string
	TableCount int
}

func (SubmissionReceivedEvent) EventType() EventType { return EventTypeSubmissionReceived }

// JudgingStartedEvent is published once every non-czar seat has submitted.
type JudgingStartedEvent struct {
	eventBase
	Round  int
	CzarID string
	Table  []Submission
}

func (JudgingStartedEvent) EventType() EventType { return EventTypeJudgingStarted }

// WinnerSelectedEvent is published when the czar resolves the round.
type WinnerSelectedEvent struct {
	eventBase
	Round    int
	WinnerID string
	Winning  Submission
	Prompt   deck.PromptCard
}

func (WinnerSelectedEvent) EventType() EventType { return EventTypeWinnerSelected }

// GameOverEvent is published on the terminal transition.
type GameOverEvent struct {
	eventBase
	Round    int
	WinnerID string
}

func (GameOverEvent) EventType() EventType { return EventTypeGameOver }

// Subscriber receives game events.
type Subscriber interface {
	OnEvent(event Event)
}

// EventBus decouples the engine from broadcast and history consumers.
type EventBus interface {
	Subscribe(sub Subscriber)
	Unsubscribe(sub Subscriber)
	Publish(event Event)
}

type eventBus struct {
	mu   sync.RWMutex
	subs []Subscriber
}

// NewEventBus creates a synchronous in-process event bus.
func NewEventBus() EventBus {
	return &eventBus{}
}

func (b *eventBus) Subscribe(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, sub)
}

func (b *eventBus) Unsubscribe(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

func (b *eventBus) Publish(event Event) {
	b.mu.RLock()
	subs := make([]Subscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, sub := range subs {
		sub.OnEvent(event)
	}
}
