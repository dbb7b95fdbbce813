package llm

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/francemazzi/cards-against-humanity/internal/deck"
)

// stubBackend mimics the OpenAI-compatible chat completion endpoint both
// backends speak.
type stubBackend struct {
	reply string
	delay time.Duration
	calls atomic.Int64
}

func (s *stubBackend) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls.Add(1)
		if s.delay > 0 {
			time.Sleep(s.delay)
		}
		switch {
		case strings.HasSuffix(r.URL.Path, "/chat/completions"):
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"id":"chatcmpl-test","object":"chat.completion","created":1,"model":"test",`+
				`"choices":[{"index":0,"message":{"role":"assistant","content":%q},"finish_reason":"stop"}]}`, s.reply)
		case strings.HasSuffix(r.URL.Path, "/models"):
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"object":"list","data":[{"id":"test","object":"model","created":1,"owned_by":"test"}]}`)
		default:
			http.NotFound(w, r)
		}
	})
}

func testClient(t *testing.T, cfg Config) *Client {
	t.Helper()
	return NewClient(cfg, log.New(io.Discard))
}

func testHand() (deck.PromptCard, []deck.AnswerCard) {
	prompt := deck.PromptCard{Text: "Why did ___ cross the road?", Pick: 1}
	hand := []deck.AnswerCard{
		{ID: "w1", Text: "a cat"},
		{ID: "w2", Text: "a chicken"},
		{ID: "w3", Text: "a goose"},
	}
	return prompt, hand
}

func TestChooseAnswerUsesHostedBackendWithUserKey(t *testing.T) {
	hosted := &stubBackend{reply: "2"}
	local := &stubBackend{reply: "1"}
	hostedSrv := httptest.NewServer(hosted.handler())
	defer hostedSrv.Close()
	localSrv := httptest.NewServer(local.handler())
	defer localSrv.Close()

	c := testClient(t, Config{HostedBaseURL: hostedSrv.URL, LocalBaseURL: localSrv.URL})
	prompt, hand := testHand()

	idx := c.ChooseAnswer(context.Background(), Persona{Name: "t"}, prompt, hand, CredentialScope{UserKey: "sk-user"})
	assert.Equal(t, 2, idx)
	assert.EqualValues(t, 1, hosted.calls.Load())
	assert.EqualValues(t, 0, local.calls.Load())
	assert.EqualValues(t, 0, c.Warnings())
}

func TestChooseAnswerFallsBackToLocalWithoutKey(t *testing.T) {
	local := &stubBackend{reply: "1"}
	localSrv := httptest.NewServer(local.handler())
	defer localSrv.Close()

	c := testClient(t, Config{LocalBaseURL: localSrv.URL})
	prompt, hand := testHand()

	idx := c.ChooseAnswer(context.Background(), Persona{Name: "t"}, prompt, hand, CredentialScope{})
	assert.Equal(t, 1, idx)
	assert.EqualValues(t, 1, local.calls.Load())
}

func TestSharedOperatorKeySelectsHostedBackend(t *testing.T) {
	hosted := &stubBackend{reply: "0"}
	hostedSrv := httptest.NewServer(hosted.handler())
	defer hostedSrv.Close()

	c := testClient(t, Config{HostedBaseURL: hostedSrv.URL, SharedKey: "sk-operator"})
	prompt, hand := testHand()

	idx := c.ChooseAnswer(context.Background(), Persona{Name: "t"}, prompt, hand, CredentialScope{})
	assert.Equal(t, 0, idx)
	assert.EqualValues(t, 1, hosted.calls.Load())
}

func TestGarbageReplyResolvesToZero(t *testing.T) {
	hosted := &stubBackend{reply: "definitely the chicken one"}
	hostedSrv := httptest.NewServer(hosted.handler())
	defer hostedSrv.Close()

	c := testClient(t, Config{HostedBaseURL: hostedSrv.URL})
	prompt, hand := testHand()

	idx := c.ChooseAnswer(context.Background(), Persona{Name: "t"}, prompt, hand, CredentialScope{UserKey: "sk"})
	assert.Equal(t, 0, idx)
	assert.EqualValues(t, 1, c.Warnings())
}

func TestOutOfRangeReplyResolvesToZero(t *testing.T) {
	hosted := &stubBackend{reply: "9"}
	hostedSrv := httptest.NewServer(hosted.handler())
	defer hostedSrv.Close()

	c := testClient(t, Config{HostedBaseURL: hostedSrv.URL})
	prompt, hand := testHand()

	idx := c.ChooseAnswer(context.Background(), Persona{Name: "t"}, prompt, hand, CredentialScope{UserKey: "sk"})
	assert.Equal(t, 0, idx)
	assert.EqualValues(t, 1, c.Warnings())
}

func TestBackendTimeoutResolvesToZero(t *testing.T) {
	hosted := &stubBackend{reply: "1", delay: 300 * time.Millisecond}
	hostedSrv := httptest.NewServer(hosted.handler())
	defer hostedSrv.Close()

	c := testClient(t, Config{HostedBaseURL: hostedSrv.URL, HostedTimeout: 30 * time.Millisecond})
	prompt, hand := testHand()

	idx := c.ChooseAnswer(context.Background(), Persona{Name: "t"}, prompt, hand, CredentialScope{UserKey: "sk"})
	assert.Equal(t, 0, idx)
	assert.EqualValues(t, 1, c.Warnings())
}

func TestJudgeSubmissions(t *testing.T) {
	hosted := &stubBackend{reply: "1"}
	hostedSrv := httptest.NewServer(hosted.handler())
	defer hostedSrv.Close()

	c := testClient(t, Config{HostedBaseURL: hostedSrv.URL})
	prompt := deck.PromptCard{Text: "Why did ___ cross the road?", Pick: 1}
	subs := [][]deck.AnswerCard{
		{{ID: "w1", Text: "cat"}},
		{{ID: "w2", Text: "chicken"}},
	}

	idx := c.JudgeSubmissions(context.Background(), Persona{Name: "judge"}, prompt, subs, CredentialScope{UserKey: "sk"})
	assert.Equal(t, 1, idx)
}

func TestValidateKey(t *testing.T) {
	hosted := &stubBackend{reply: "0"}
	hostedSrv := httptest.NewServer(hosted.handler())
	defer hostedSrv.Close()

	c := testClient(t, Config{HostedBaseURL: hostedSrv.URL})
	require.True(t, c.ValidateKey(context.Background(), "sk-valid"))
	require.False(t, c.ValidateKey(context.Background(), ""))
}

func TestCheckLocalHealth(t *testing.T) {
	local := &stubBackend{reply: "0"}
	localSrv := httptest.NewServer(local.handler())

	c := testClient(t, Config{LocalBaseURL: localSrv.URL})
	assert.True(t, c.CheckLocalHealth(context.Background()))

	localSrv.Close()
	assert.False(t, c.CheckLocalHealth(context.Background()))
}
