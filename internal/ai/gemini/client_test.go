package gemini

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/spigell/hh-screener/internal/ai"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

type fakeChatCreator struct {
	mu    sync.Mutex
	calls []chatCallRecord
	queue map[string][]fakeChatResponse
}

type chatCallRecord struct {
	model  string
	config *genai.GenerateContentConfig
	chat   *fakeChat
}

type fakeChatResponse struct {
	resp  *genai.GenerateContentResponse
	err   error
	block bool
}

type fakeChat struct {
	mu       sync.Mutex
	response fakeChatResponse
	messages []string
}

func (f *fakeChat) SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	for _, part := range parts {
		f.messages = append(f.messages, part.Text)
	}
	f.mu.Unlock()

	if f.response.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.response.resp, f.response.err
}

func newFakeChatCreator() *fakeChatCreator {
	return &fakeChatCreator{queue: make(map[string][]fakeChatResponse)}
}

func (f *fakeChatCreator) enqueue(model string, resp *genai.GenerateContentResponse, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue[model] = append(f.queue[model], fakeChatResponse{resp: resp, err: err})
}

func (f *fakeChatCreator) enqueueBlocking(model string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue[model] = append(f.queue[model], fakeChatResponse{block: true})
}

func (f *fakeChatCreator) Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	responses := f.queue[model]
	if len(responses) == 0 {
		return nil, errors.New("unexpected call")
	}
	res := responses[0]
	f.queue[model] = responses[1:]
	chat := &fakeChat{response: res}
	f.calls = append(f.calls, chatCallRecord{model: model, config: config, chat: chat})
	return chat, nil
}

func (f *fakeChatCreator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

type recordedWaits struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordedWaits) wait(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return nil
}

func newTestGenerator(chats chatCreator, cfg Config) (*Generator, *recordedWaits) {
	if cfg.Model == "" {
		cfg.Model = "gemini-pro"
	}
	g := newGenerator(chats, cfg, zap.NewNop())
	waits := &recordedWaits{}
	g.wait = waits.wait
	return g, waits
}

func TestGeneratorRetriesOnTemporaryError(t *testing.T) {
	chats := newFakeChatCreator()
	tempErr := genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"}
	chats.enqueue("gemini-pro", nil, tempErr)
	chats.enqueue("gemini-pro", textResponse("retry ok"), nil)

	g, waits := newTestGenerator(chats, Config{MaxRetries: 2, SystemInstruction: "system"})

	output, err := g.GenerateContent(context.Background(), "message")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if output != "retry ok" {
		t.Fatalf("unexpected output: %q", output)
	}

	if len(chats.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(chats.calls))
	}

	if len(waits.delays) != 1 || waits.delays[0] != baseRetryDelay {
		t.Fatalf("unexpected waits: %v", waits.delays)
	}

	for _, call := range chats.calls {
		if call.config == nil || call.config.SystemInstruction == nil {
			t.Fatalf("expected system instruction to be set")
		}
		if got := call.config.SystemInstruction.Parts[0].Text; got != "system" {
			t.Fatalf("unexpected system instruction: %q", got)
		}
		if len(call.chat.messages) != 1 || call.chat.messages[0] != "message" {
			t.Fatalf("unexpected chat message: %+v", call.chat.messages)
		}
	}
}

func TestGeneratorOmitsEmptySystemInstruction(t *testing.T) {
	chats := newFakeChatCreator()
	chats.enqueue("gemini-pro", textResponse("ok"), nil)

	g, _ := newTestGenerator(chats, Config{})

	if _, err := g.GenerateContent(context.Background(), "message"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if chats.calls[0].config != nil {
		t.Fatalf("expected nil config without system instruction")
	}
}

func TestGeneratorStopsAfterRetriesExhausted(t *testing.T) {
	chats := newFakeChatCreator()
	tempErr := genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"}
	chats.enqueue("gemini-pro", nil, tempErr)
	chats.enqueue("gemini-pro", nil, tempErr)

	g, _ := newTestGenerator(chats, Config{MaxRetries: 2})

	_, err := g.GenerateContent(context.Background(), "msg")
	if err == nil {
		t.Fatal("expected error after retries exhausted")
	}

	if !errors.Is(err, ai.ErrOracleUnavailable) {
		t.Fatalf("expected oracle unavailable error, got %v", err)
	}

	if len(chats.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(chats.calls))
	}
}

func TestGeneratorDoesNotRetryOnLongQuotaDelay(t *testing.T) {
	chats := newFakeChatCreator()
	quotaErr := genai.APIError{
		Code:    http.StatusTooManyRequests,
		Status:  "RESOURCE_EXHAUSTED",
		Message: "quota exhausted, retry after 60 seconds",
	}
	chats.enqueue("gemini-pro", nil, quotaErr)

	g, _ := newTestGenerator(chats, Config{MaxRetries: 3})

	_, err := g.GenerateContent(context.Background(), "msg")
	if err == nil {
		t.Fatal("expected error when quota delay too long")
	}

	if len(chats.calls) != 1 {
		t.Fatalf("expected single call, got %d", len(chats.calls))
	}
}

func TestGeneratorHonoursShortRetryHint(t *testing.T) {
	chats := newFakeChatCreator()
	quotaErr := genai.APIError{
		Code:   http.StatusTooManyRequests,
		Status: "RESOURCE_EXHAUSTED",
		Details: []map[string]any{{
			"@type":      "type.googleapis.com/google.rpc.RetryInfo",
			"retryDelay": "2s",
		}},
	}
	chats.enqueue("gemini-pro", nil, quotaErr)
	chats.enqueue("gemini-pro", textResponse("ok"), nil)

	g, waits := newTestGenerator(chats, Config{MaxRetries: 3})

	if _, err := g.GenerateContent(context.Background(), "msg"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(waits.delays) != 1 || waits.delays[0] != 2*time.Second {
		t.Fatalf("expected a single 2s wait, got %v", waits.delays)
	}
}

func TestGeneratorDoesNotRetryClientErrors(t *testing.T) {
	chats := newFakeChatCreator()
	chats.enqueue("gemini-pro", nil, genai.APIError{Code: http.StatusBadRequest, Status: "INVALID_ARGUMENT"})

	g, _ := newTestGenerator(chats, Config{MaxRetries: 3})

	if _, err := g.GenerateContent(context.Background(), "msg"); err == nil {
		t.Fatal("expected error")
	}

	if len(chats.calls) != 1 {
		t.Fatalf("expected single call, got %d", len(chats.calls))
	}
}

func TestGeneratorRejectsEmptyResponse(t *testing.T) {
	chats := newFakeChatCreator()
	chats.enqueue("gemini-pro", textResponse("   "), nil)

	g, _ := newTestGenerator(chats, Config{MaxRetries: 1})

	_, err := g.GenerateContent(context.Background(), "msg")
	if !errors.Is(err, ai.ErrOracleUnavailable) {
		t.Fatalf("expected oracle unavailable error, got %v", err)
	}
}

func TestGeneratorTimeout(t *testing.T) {
	chats := newFakeChatCreator()
	chats.enqueueBlocking("gemini-pro")

	g, _ := newTestGenerator(chats, Config{MaxRetries: 1, Timeout: 10 * time.Millisecond})

	_, err := g.GenerateContent(context.Background(), "msg")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	if !errors.Is(err, ai.ErrOracleUnavailable) {
		t.Fatalf("expected oracle unavailable error, got %v", err)
	}
}

func TestGeneratorCircuitBreakerOpens(t *testing.T) {
	chats := newFakeChatCreator()
	chats.enqueue("gemini-pro", nil, genai.APIError{Code: http.StatusBadRequest})

	g, _ := newTestGenerator(chats, Config{
		MaxRetries: 1,
		Breaker: BreakerSettings{
			Enabled:          true,
			MaxRequests:      1,
			Timeout:          time.Minute,
			MinRequests:      1,
			FailureThreshold: 1,
		},
	})

	if _, err := g.GenerateContent(context.Background(), "first"); err == nil {
		t.Fatal("expected first call to fail")
	}

	if got := g.BreakerState(); got != gobreaker.StateOpen.String() {
		t.Fatalf("expected open breaker, got %q", got)
	}

	_, err := g.GenerateContent(context.Background(), "second")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open state error, got %v", err)
	}

	if !errors.Is(err, ai.ErrOracleUnavailable) {
		t.Fatalf("expected oracle unavailable error, got %v", err)
	}

	if chats.callCount() != 1 {
		t.Fatalf("expected the open breaker to short-circuit, got %d calls", chats.callCount())
	}
}

func TestGeneratorRejectsEmptyPrompt(t *testing.T) {
	g, _ := newTestGenerator(newFakeChatCreator(), Config{})

	if _, err := g.GenerateContent(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty prompt")
	}
}

func TestNewGeneratorRequiresAPIKey(t *testing.T) {
	_, err := NewGenerator(context.Background(), Config{APIKey: "  "}, zap.NewNop())
	if !errors.Is(err, ai.ErrOracleUnavailable) {
		t.Fatalf("expected oracle unavailable error, got %v", err)
	}
}

func TestRetryHintFromMessage(t *testing.T) {
	tests := []struct {
		message string
		want    time.Duration
		found   bool
	}{
		{message: "retry after 60 seconds", want: 60 * time.Second, found: true},
		{message: "Please retry in 1.5s.", want: 1500 * time.Millisecond, found: true},
		{message: "retry in 200ms", want: 200 * time.Millisecond, found: true},
		{message: "quota exhausted", found: false},
	}

	for _, tt := range tests {
		got, found := retryHint(genai.APIError{Message: tt.message})
		if found != tt.found || got != tt.want {
			t.Fatalf("retryHint(%q) = %v, %v; want %v, %v", tt.message, got, found, tt.want, tt.found)
		}
	}
}
