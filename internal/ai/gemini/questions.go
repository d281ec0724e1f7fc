package gemini

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	_ "embed"

	"github.com/spigell/hh-screener/internal/ai"
	"go.uber.org/zap"
)

const (
	OperationQuestionBatch  = "question_batch"
	OperationQuestionSingle = "question_single"
)

var (
	//go:embed prompts/questions_batch.md
	batchPromptTemplate string
	//go:embed prompts/question_single.md
	singlePromptTemplate string
	//go:embed prompts/question_followup.md
	followUpPromptTemplate string
)

// Questioner asks the model for technical interview questions.
type Questioner struct {
	caller
	onFallback func(tech string, err error)
}

var _ ai.Questioner = (*Questioner)(nil)

func NewQuestioner(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Questioner {
	return &Questioner{caller: newCaller(generator, logger, maxLogLength)}
}

// OnFallback registers a hook called whenever Batch serves template questions.
func (q *Questioner) OnFallback(fn func(tech string, err error)) {
	q.onFallback = fn
}

// Batch returns exactly ai.BatchSize questions about tech. Any failure is
// logged and answered with template questions.
func (q *Questioner) Batch(ctx context.Context, tech string) []string {
	tech = strings.TrimSpace(tech)
	prompt := render(batchPromptTemplate, "TECH", tech)

	raw, err := q.generate(ctx, OperationQuestionBatch, prompt)
	if err != nil {
		return q.fallback(tech, err)
	}

	questions, err := parseQuestions(raw)
	if err != nil {
		return q.fallback(tech, err)
	}

	if len(questions) > ai.BatchSize {
		questions = questions[:ai.BatchSize]
	}

	if len(questions) < ai.BatchSize {
		q.logger.Debug("padding short question batch",
			zap.String("tech", tech),
			zap.Int("parsed", len(questions)),
		)
		questions = append(questions, FallbackQuestions(tech)[len(questions):]...)
	}

	return questions
}

// Single asks for one question. Model errors are returned as is.
func (q *Questioner) Single(ctx context.Context, tech, previousAnswer string, number int) (string, error) {
	tech = strings.TrimSpace(tech)
	if number <= 0 {
		number = 1
	}

	template := singlePromptTemplate
	if strings.TrimSpace(previousAnswer) != "" {
		template = followUpPromptTemplate
	}

	prompt := render(template,
		"TECH", tech,
		"NUMBER", strconv.Itoa(number),
		"PREVIOUS_ANSWER", strings.TrimSpace(previousAnswer),
	)

	raw, err := q.generate(ctx, OperationQuestionSingle, prompt)
	if err != nil {
		return "", fmt.Errorf("generate %s question #%d: %w", tech, number, err)
	}

	return strings.TrimSpace(raw), nil
}

func (q *Questioner) fallback(tech string, err error) []string {
	q.logger.Warn("using template questions", zap.String("tech", tech), zap.Error(err))
	if q.onFallback != nil {
		q.onFallback(tech, err)
	}
	return FallbackQuestions(tech)
}

// FallbackQuestions is the deterministic template used when the model output is unusable.
func FallbackQuestions(tech string) []string {
	return []string{
		fmt.Sprintf("Can you explain your experience with %s?", tech),
		fmt.Sprintf("What are the key features of %s?", tech),
		fmt.Sprintf("Describe a challenging problem you solved using %s.", tech),
		fmt.Sprintf("How do you stay updated with the latest developments in %s?", tech),
		fmt.Sprintf("What best practices do you follow when working with %s?", tech),
	}
}
