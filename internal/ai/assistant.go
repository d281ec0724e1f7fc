package ai

import (
	"context"
	"errors"

	"github.com/spigell/hh-screener/internal/candidate"
)

var (
	// ErrOracleUnavailable marks a failed model call: transport error, timeout, open breaker or missing credentials.
	ErrOracleUnavailable = errors.New("language model is unavailable")
	// ErrGenerationParse marks model output that could not be parsed into the expected shape.
	ErrGenerationParse = errors.New("unable to parse model output")
)

// Generator is the raw text-generation capability.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Questioner produces technical interview questions.
type Questioner interface {
	// Batch always returns exactly BatchSize questions, falling back to a template on failure.
	Batch(ctx context.Context, tech string) []string
	// Single asks for one question. A non-empty previousAnswer makes it a follow-up.
	Single(ctx context.Context, tech, previousAnswer string, number int) (string, error)
}

// Analyzer writes a short advisory note about one answer.
type Analyzer interface {
	Analyze(ctx context.Context, tech, question, answer string) (string, error)
}

// Grader maps a finished record to a 1-10 suitability score. It never fails.
type Grader interface {
	Grade(ctx context.Context, c *candidate.Candidate) int
}

const (
	BatchSize    = 5
	MinGrade     = 1
	MaxGrade     = 10
	DefaultGrade = 5
)
