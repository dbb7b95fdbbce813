package llm

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/francemazzi/cards-against-humanity/internal/deck"
)

// Defaults mirror the behavior of the hosted and local backends: the hosted
// API answers quickly, local inference can be an order of magnitude slower.
const (
	DefaultHostedModel   = "gpt-4o-mini"
	DefaultHostedTimeout = 10 * time.Second
	DefaultLocalBaseURL  = "http://ollama:11434/v1"
	DefaultLocalModel    = "qwen2.5:3b"
	DefaultLocalTimeout  = 30 * time.Second

	samplingTemperature = 0.9
	replyTokenBudget    = 10
)

// CredentialScope identifies which credential a decision call may use. A
// per-user key takes priority over the operator's shared key; with neither,
// calls go to the local backend.
type CredentialScope struct {
	UserID  string
	UserKey string
}

// Config holds backend settings for the decision client.
type Config struct {
	HostedBaseURL string // empty means the provider default
	HostedModel   string
	HostedTimeout time.Duration
	SharedKey     string // operator-level key, test/dev convenience
	LocalBaseURL  string
	LocalModel    string
	LocalTimeout  time.Duration
}

func (c Config) withDefaults() Config {
	if c.HostedModel == "" {
		c.HostedModel = DefaultHostedModel
	}
	if c.HostedTimeout <= 0 {
		c.HostedTimeout = DefaultHostedTimeout
	}
	if c.LocalBaseURL == "" {
		c.LocalBaseURL = DefaultLocalBaseURL
	}
	if c.LocalModel == "" {
		c.LocalModel = DefaultLocalModel
	}
	if c.LocalTimeout <= 0 {
		c.LocalTimeout = DefaultLocalTimeout
	}
	return c
}

// Client asks a reasoning backend to choose or judge cards. Every call
// resolves to a bounded index: timeouts, transport errors, and malformed
// replies all fall back to index 0 and are surfaced only as warnings, so a
// round continues deterministically even when the backend misbehaves.
type Client struct {
	cfg      Config
	logger   *log.Logger
	warnings atomic.Uint64
}

// NewClient creates a decision client with the given backend configuration.
func NewClient(cfg Config, logger *log.Logger) *Client {
	return &Client{
		cfg:    cfg.withDefaults(),
		logger: logger.WithPrefix("llm"),
	}
}

type backend struct {
	name    string
	api     openai.Client
	model   openai.ChatModel
	timeout time.Duration
}

// backendFor selects the backend per call: per-user key first, then the
// shared operator key, then the local fallback.
func (c *Client) backendFor(scope CredentialScope) backend {
	key := scope.UserKey
	if key == "" {
		key = c.cfg.SharedKey
	}

	if key != "" {
		opts := []option.RequestOption{option.WithAPIKey(key)}
		if c.cfg.HostedBaseURL != "" {
			opts = append(opts, option.WithBaseURL(c.cfg.HostedBaseURL))
		}
		return backend{
			name:    "hosted",
			api:     openai.NewClient(opts...),
			model:   openai.ChatModel(c.cfg.HostedModel),
			timeout: c.cfg.HostedTimeout,
		}
	}

	return backend{
		name: "local",
		api: openai.NewClient(
			option.WithBaseURL(c.cfg.LocalBaseURL),
			// The local backend ignores the key but the SDK requires one.
			option.WithAPIKey("ollama"),
		),
		model:   openai.ChatModel(c.cfg.LocalModel),
		timeout: c.cfg.LocalTimeout,
	}
}

// ChooseAnswer asks the backend to pick a card from the hand. The returned
// index is always within [0, len(hand)).
func (c *Client) ChooseAnswer(ctx context.Context, persona Persona, prompt deck.PromptCard, hand []deck.AnswerCard, scope CredentialScope) int {
	if len(hand) == 0 {
		return 0
	}
	return c.decide(ctx, persona, scope, BuildAnswerPrompt(prompt, hand), len(hand), "choose_answer")
}

// JudgeSubmissions asks the backend, acting as the round's judge, to pick
// the winning submission. The returned index is always within
// [0, len(submissions)).
func (c *Client) JudgeSubmissions(ctx context.Context, persona Persona, prompt deck.PromptCard, submissions [][]deck.AnswerCard, scope CredentialScope) int {
	if len(submissions) == 0 {
		return 0
	}
	return c.decide(ctx, persona, scope, BuildJudgePrompt(prompt, submissions), len(submissions), "judge")
}

func (c *Client) decide(ctx context.Context, persona Persona, scope CredentialScope, userPrompt string, bound int, op string) int {
	b := c.backendFor(scope)

	callCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	resp, err := b.api.Chat.Completions.New(callCtx, openai.ChatCompletionNewParams{
		Model: b.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(persona.SystemPrompt),
			openai.UserMessage(userPrompt),
		},
		Temperature: openai.Float(samplingTemperature),
		MaxTokens:   openai.Int(replyTokenBudget),
	})
	if err != nil {
		c.warn(op, b.name, persona.Name, "backend call failed", "error", err)
		return 0
	}
	if len(resp.Choices) == 0 {
		c.warn(op, b.name, persona.Name, "backend returned no choices")
		return 0
	}

	raw := resp.Choices[0].Message.Content
	idx, ok := ParseIndex(raw, bound)
	if !ok {
		c.warn(op, b.name, persona.Name, "unusable backend reply", "raw", raw, "bound", bound)
		return 0
	}
	return idx
}

func (c *Client) warn(op, backendName, persona, msg string, keyvals ...any) {
	c.warnings.Add(1)
	args := append([]any{"op", op, "backend", backendName, "persona", persona}, keyvals...)
	c.logger.Warn(msg+", defaulting to index 0", args...)
}

// Warnings reports how many calls resolved through the fallback path.
func (c *Client) Warnings() uint64 {
	return c.warnings.Load()
}

// ValidateKey checks a hosted-backend credential by listing models. It is
// used by the account-management side, never by the game engine.
func (c *Client) ValidateKey(ctx context.Context, key string) bool {
	if key == "" {
		return false
	}
	opts := []option.RequestOption{option.WithAPIKey(key)}
	if c.cfg.HostedBaseURL != "" {
		opts = append(opts, option.WithBaseURL(c.cfg.HostedBaseURL))
	}
	api := openai.NewClient(opts...)

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.HostedTimeout)
	defer cancel()

	_, err := api.Models.List(callCtx)
	return err == nil
}

// CheckLocalHealth probes the local backend's model listing endpoint.
func (c *Client) CheckLocalHealth(ctx context.Context) bool {
	api := openai.NewClient(
		option.WithBaseURL(c.cfg.LocalBaseURL),
		option.WithAPIKey("ollama"),
	)

	callCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := api.Models.List(callCtx)
	return err == nil
}
