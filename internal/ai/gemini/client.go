package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spigell/hh-screener/internal/ai"
	"github.com/spigell/hh-screener/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

const (
	Provider = "gemini"

	defaultModel      = "gemini-2.0-flash-lite"
	defaultMaxRetries = 3
	defaultTimeout    = 30 * time.Second
	baseRetryDelay    = time.Second
	// Quota hints longer than this are not worth waiting for inside one turn.
	maxRetryDelay = 10 * time.Second
)

var retryHintRe = regexp.MustCompile(`(?i)retry (?:after|in) ([0-9]+(?:\.[0-9]+)?)\s*(ms|s|sec|secs|seconds?)\b`)

type chatCreator interface {
	Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error)
}

type chatSession interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type genaiChats struct {
	chats *genai.Chats
}

func (c genaiChats) Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error) {
	chat, err := c.chats.Create(ctx, model, config, history)
	if err != nil {
		return nil, err
	}
	return chat, nil
}

// Config collects everything needed to talk to the Gemini API.
type Config struct {
	APIKey            string
	Model             string
	SystemInstruction string
	MaxRetries        int
	Timeout           time.Duration
	RequestsPerMinute int
	Burst             int
	Breaker           BreakerSettings
}

// Generator wraps the Google GenAI client to provide simple prompt-based interactions.
// Every failure it returns wraps ai.ErrOracleUnavailable.
type Generator struct {
	chats      chatCreator
	model      string
	system     string
	maxRetries int
	timeout    time.Duration
	limiter    *rate.Limiter
	breaker    *circuitBreaker
	wait       func(ctx context.Context, d time.Duration) error
	logger     *zap.Logger
}

// NewGenerator creates a new Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, cfg Config, logger *zap.Logger) (*Generator, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: gemini api key is required", ai.ErrOracleUnavailable)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGenerator(genaiChats{chats: client.Chats}, cfg, logger), nil
}

func newGenerator(chats chatCreator, cfg Config, logger *zap.Logger) *Generator {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = defaultMaxRetries
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), burst)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{
		chats:      chats,
		model:      model,
		system:     strings.TrimSpace(cfg.SystemInstruction),
		maxRetries: retries,
		timeout:    timeout,
		limiter:    limiter,
		breaker:    newCircuitBreaker(model, cfg.Breaker, logger),
		wait:       utils.WaitFor,
		logger:     logger,
	}
}

// GenerateContent sends the prompt to Gemini and returns the joined textual response.
func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.chats == nil {
		return "", fmt.Errorf("%w: gemini generator is not initialized", ai.ErrOracleUnavailable)
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	output, err := g.breaker.Execute(func() (string, error) {
		return g.generateWithRetry(ctx, prompt)
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ai.ErrOracleUnavailable, err)
	}

	return output, nil
}

func (g *Generator) generateWithRetry(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= g.maxRetries; attempt++ {
		if g.limiter != nil {
			if err := g.limiter.Wait(ctx); err != nil {
				return "", fmt.Errorf("waiting for rate limiter: %w", err)
			}
		}

		output, err := g.generateOnce(ctx, prompt)
		if err == nil {
			return output, nil
		}
		lastErr = err

		delay, retry := retryDelay(err, attempt)
		if !retry || attempt == g.maxRetries {
			break
		}

		g.logger.Warn("gemini request failed, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", g.maxRetries),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		wait := g.wait
		if wait == nil {
			wait = utils.WaitFor
		}
		if err := wait(ctx, delay); err != nil {
			return "", fmt.Errorf("waiting before retry: %w (last error: %w)", err, lastErr)
		}
	}

	return "", lastErr
}

func (g *Generator) generateOnce(ctx context.Context, prompt string) (string, error) {
	var config *genai.GenerateContentConfig
	if g.system != "" {
		config = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(g.system, genai.RoleUser),
		}
	}

	chat, err := g.chats.Create(ctx, g.model, config, nil)
	if err != nil {
		return "", fmt.Errorf("create chat: %w", err)
	}

	resp, err := chat.SendMessage(ctx, genai.Part{Text: prompt})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	output := joinText(resp)
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	return output, nil
}

func joinText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	return strings.TrimSpace(builder.String())
}

// retryDelay decides whether err is temporary and how long to wait before the next attempt.
func retryDelay(err error, attempt int) (time.Duration, bool) {
	apiErr, ok := asAPIError(err)
	if !ok {
		return 0, false
	}

	backoff := baseRetryDelay << (attempt - 1)

	switch {
	case apiErr.Code >= http.StatusInternalServerError:
		return backoff, true
	case apiErr.Code == http.StatusTooManyRequests:
		hint, found := retryHint(apiErr)
		if !found {
			return backoff, true
		}
		if hint > maxRetryDelay {
			return 0, false
		}
		return hint, true
	default:
		return 0, false
	}
}

func asAPIError(err error) (genai.APIError, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}

	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return *apiErrPtr, true
	}

	return genai.APIError{}, false
}

func retryHint(apiErr genai.APIError) (time.Duration, bool) {
	for _, detail := range apiErr.Details {
		kind, _ := detail["@type"].(string)
		if !strings.HasSuffix(kind, "RetryInfo") {
			continue
		}
		if raw, ok := detail["retryDelay"].(string); ok {
			if d, err := time.ParseDuration(raw); err == nil {
				return d, true
			}
		}
	}

	match := retryHintRe.FindStringSubmatch(apiErr.Message)
	if match == nil {
		return 0, false
	}

	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}

	unit := time.Second
	if strings.EqualFold(match[2], "ms") {
		unit = time.Millisecond
	}

	return time.Duration(value * float64(unit)), true
}

// BreakerState reports the circuit breaker state for health checks.
func (g *Generator) BreakerState() string {
	if g == nil {
		return "disabled"
	}
	return g.breaker.State()
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}
