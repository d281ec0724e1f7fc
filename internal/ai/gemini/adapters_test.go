package gemini

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/spigell/hh-screener/internal/ai"
	"github.com/spigell/hh-screener/internal/candidate"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubGenerator struct {
	mu       sync.Mutex
	response string
	err      error
	prompts  []string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	return s.response, s.err
}

func (s *stubGenerator) lastPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.prompts) == 0 {
		return ""
	}
	return s.prompts[len(s.prompts)-1]
}

func TestQuestionerBatchParsesFencedArray(t *testing.T) {
	gen := &stubGenerator{response: "```json\n[\"q1\",\"q2\",\"q3\",\"q4\",\"q5\"]\n```"}
	q := NewQuestioner(gen, zap.NewNop(), 0)

	questions := q.Batch(context.Background(), "Python")
	if len(questions) != ai.BatchSize {
		t.Fatalf("expected %d questions, got %d", ai.BatchSize, len(questions))
	}
	if questions[0] != "q1" || questions[4] != "q5" {
		t.Fatalf("unexpected questions: %#v", questions)
	}

	if !strings.Contains(gen.lastPrompt(), "proficiency in Python") {
		t.Fatalf("expected tech in prompt, got %q", gen.lastPrompt())
	}
}

func TestQuestionerBatchTruncatesToFive(t *testing.T) {
	gen := &stubGenerator{response: `["1","2","3","4","5","6","7"]`}
	q := NewQuestioner(gen, zap.NewNop(), 0)

	questions := q.Batch(context.Background(), "Go")
	if len(questions) != ai.BatchSize {
		t.Fatalf("expected %d questions, got %d", ai.BatchSize, len(questions))
	}
	if questions[4] != "5" {
		t.Fatalf("expected the first five to be kept, got %#v", questions)
	}
}

func TestQuestionerBatchPadsShortArray(t *testing.T) {
	gen := &stubGenerator{response: `["only one", "two"]`}
	q := NewQuestioner(gen, zap.NewNop(), 0)

	questions := q.Batch(context.Background(), "Go")
	if len(questions) != ai.BatchSize {
		t.Fatalf("expected %d questions, got %d", ai.BatchSize, len(questions))
	}

	template := FallbackQuestions("Go")
	if questions[0] != "only one" || questions[1] != "two" || questions[2] != template[2] || questions[4] != template[4] {
		t.Fatalf("unexpected padded questions: %#v", questions)
	}
}

func TestQuestionerBatchFallsBack(t *testing.T) {
	tests := []struct {
		name string
		gen  *stubGenerator
	}{
		{name: "call failure", gen: &stubGenerator{err: ai.ErrOracleUnavailable}},
		{name: "invalid json", gen: &stubGenerator{response: "not json at all"}},
		{name: "not an array", gen: &stubGenerator{response: `{"q": "x"}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.WarnLevel)
			q := NewQuestioner(tt.gen, zap.New(core), 0)

			var fallbacks int
			q.OnFallback(func(tech string, err error) {
				if tech != "Rust" || err == nil {
					t.Fatalf("unexpected fallback hook args: %q %v", tech, err)
				}
				fallbacks++
			})

			questions := q.Batch(context.Background(), "Rust")
			want := FallbackQuestions("Rust")
			if len(questions) != len(want) {
				t.Fatalf("expected %d questions, got %d", len(want), len(questions))
			}
			for i := range want {
				if questions[i] != want[i] {
					t.Fatalf("question %d = %q, want %q", i, questions[i], want[i])
				}
			}

			if fallbacks != 1 {
				t.Fatalf("expected fallback hook to fire once, got %d", fallbacks)
			}
			if logs.FilterMessage("using template questions").Len() != 1 {
				t.Fatalf("expected a warning about template questions")
			}
		})
	}
}

func TestQuestionerSingle(t *testing.T) {
	gen := &stubGenerator{response: "  What is a goroutine leak?  \n"}
	q := NewQuestioner(gen, zap.NewNop(), 0)

	got, err := q.Single(context.Background(), "Go", "", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "What is a goroutine leak?" {
		t.Fatalf("unexpected question: %q", got)
	}
	if !strings.Contains(gen.lastPrompt(), "question #1 about Go") {
		t.Fatalf("expected fresh prompt, got %q", gen.lastPrompt())
	}
	if strings.Contains(gen.lastPrompt(), "previous answer") {
		t.Fatalf("did not expect follow-up wording in fresh prompt")
	}

	if _, err := q.Single(context.Background(), "Go", "channels everywhere", 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(gen.lastPrompt(), `previous answer: "channels everywhere"`) {
		t.Fatalf("expected follow-up prompt, got %q", gen.lastPrompt())
	}
}

func TestQuestionerSinglePropagatesErrors(t *testing.T) {
	q := NewQuestioner(&stubGenerator{err: ai.ErrOracleUnavailable}, zap.NewNop(), 0)

	_, err := q.Single(context.Background(), "Go", "", 1)
	if !errors.Is(err, ai.ErrOracleUnavailable) {
		t.Fatalf("expected oracle unavailable error, got %v", err)
	}
}

func TestAnalyzer(t *testing.T) {
	gen := &stubGenerator{response: " Solid answer. Shows practical depth. "}
	a := NewAnalyzer(gen, zap.NewNop(), 0)

	note, err := a.Analyze(context.Background(), "Go", "What is a channel?", "A typed conduit")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if note != "Solid answer. Shows practical depth." {
		t.Fatalf("unexpected note: %q", note)
	}

	prompt := gen.lastPrompt()
	if !strings.Contains(prompt, "Question: What is a channel?") || !strings.Contains(prompt, "Answer: A typed conduit") {
		t.Fatalf("unexpected prompt: %q", prompt)
	}

	a = NewAnalyzer(&stubGenerator{err: errors.New("boom")}, zap.NewNop(), 0)
	if _, err := a.Analyze(context.Background(), "Go", "q", "a"); err == nil {
		t.Fatal("expected error")
	}
}

func TestGrader(t *testing.T) {
	c := candidate.New()
	c.Name = candidate.Ptr("Jane Doe")
	c.Experience = candidate.Ptr("3 years")
	c.TechStack = []string{"Python", "Go"}
	c.Questions = []string{"q1", "q2"}
	c.Answers = []string{"a1"}
	c.SentimentScore = 3

	tests := []struct {
		name string
		gen  *stubGenerator
		want int
	}{
		{name: "bare integer", gen: &stubGenerator{response: "8"}, want: 8},
		{name: "clamped high", gen: &stubGenerator{response: "Score: 15"}, want: 10},
		{name: "clamped low", gen: &stubGenerator{response: "0"}, want: 1},
		{name: "no integer", gen: &stubGenerator{response: "great candidate"}, want: ai.DefaultGrade},
		{name: "call failure", gen: &stubGenerator{err: ai.ErrOracleUnavailable}, want: ai.DefaultGrade},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGrader(tt.gen, zap.NewNop(), 0)
			if got := g.Grade(context.Background(), c); got != tt.want {
				t.Fatalf("Grade() = %d, want %d", got, tt.want)
			}
		})
	}

	gen := &stubGenerator{response: "7"}
	NewGrader(gen, zap.NewNop(), 0).Grade(context.Background(), c)
	prompt := gen.lastPrompt()
	for _, want := range []string{"Name: Jane Doe", "Desired Position: N/A", "Tech Stack: Python, Go", "Sentiment Score: 3", "Q: q1\nA: a1"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("expected prompt to contain %q, got %q", want, prompt)
		}
	}
	if strings.Contains(prompt, "Q: q2") {
		t.Fatalf("unanswered question should not be graded: %q", prompt)
	}

	if got := NewGrader(gen, zap.NewNop(), 0).Grade(context.Background(), nil); got != ai.DefaultGrade {
		t.Fatalf("expected default grade for nil candidate, got %d", got)
	}
}
