package gemini

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	_ "embed"

	"github.com/spigell/hh-screener/internal/ai"
	"github.com/spigell/hh-screener/internal/candidate"
	"go.uber.org/zap"
)

const OperationGrade = "grade"

//go:embed prompts/grade.md
var gradePromptTemplate string

// Grader scores a finished interview. It never fails: unusable output yields ai.DefaultGrade.
type Grader struct {
	caller
}

var _ ai.Grader = (*Grader)(nil)

func NewGrader(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Grader {
	return &Grader{caller: newCaller(generator, logger, maxLogLength)}
}

func (g *Grader) Grade(ctx context.Context, c *candidate.Candidate) int {
	if c == nil {
		return ai.DefaultGrade
	}

	raw, err := g.generate(ctx, OperationGrade, buildGradePrompt(c))
	if err != nil {
		g.logger.Warn("grading failed, using default grade",
			zap.Int("grade", ai.DefaultGrade),
			zap.Error(err),
		)
		return ai.DefaultGrade
	}

	grade, err := parseGrade(raw)
	if err != nil {
		g.logger.Warn("unparseable grade, using default grade",
			zap.Int("grade", ai.DefaultGrade),
			zap.Error(err),
		)
		return ai.DefaultGrade
	}

	return grade
}

func buildGradePrompt(c *candidate.Candidate) string {
	var qa strings.Builder
	for _, pair := range c.Answered() {
		fmt.Fprintf(&qa, "Q: %s\nA: %s\n\n", pair.Question, pair.Answer)
	}

	return render(gradePromptTemplate,
		"NAME", candidate.Value(c.Name, "Unknown"),
		"EXPERIENCE", candidate.Value(c.Experience, "N/A"),
		"POSITION", candidate.Value(c.DesiredPosition, "N/A"),
		"TECH_STACK", strings.Join(c.TechStack, ", "),
		"SENTIMENT", strconv.Itoa(c.SentimentScore),
		"QA", strings.TrimSpace(qa.String()),
	)
}
