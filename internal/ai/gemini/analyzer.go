package gemini

import (
	"context"
	"fmt"
	"strings"

	_ "embed"

	"github.com/spigell/hh-screener/internal/ai"
	"go.uber.org/zap"
)

const OperationAnalyze = "analyze_answer"

//go:embed prompts/analyze.md
var analyzePromptTemplate string

// Analyzer produces a short note on the quality of one answer.
type Analyzer struct {
	caller
}

var _ ai.Analyzer = (*Analyzer)(nil)

func NewAnalyzer(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Analyzer {
	return &Analyzer{caller: newCaller(generator, logger, maxLogLength)}
}

func (a *Analyzer) Analyze(ctx context.Context, tech, question, answer string) (string, error) {
	prompt := render(analyzePromptTemplate,
		"TECH", strings.TrimSpace(tech),
		"QUESTION", strings.TrimSpace(question),
		"ANSWER", strings.TrimSpace(answer),
	)

	raw, err := a.generate(ctx, OperationAnalyze, prompt)
	if err != nil {
		return "", fmt.Errorf("analyze %s answer: %w", tech, err)
	}

	return strings.TrimSpace(raw), nil
}
