package gemini

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/spigell/hh-screener/internal/logger"
	"github.com/spigell/hh-screener/internal/utils"
	"go.uber.org/zap"
)

const defaultMaxLogLength = 200

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// render substitutes {{KEY}} placeholders. Keys are given without braces.
func render(template string, pairs ...string) string {
	replacements := make([]string, 0, len(pairs))
	for i := 0; i+1 < len(pairs); i += 2 {
		replacements = append(replacements, "{{"+pairs[i]+"}}", pairs[i+1])
	}
	return strings.NewReplacer(replacements...).Replace(template)
}

// caller is the request/response plumbing shared by the adapters.
type caller struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func newCaller(generator contentGenerator, log *zap.Logger, maxLogLength int) caller {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return caller{
		generator: generator,
		logger:    logger.WithFields(log),
		maxLogLen: maxLogLength,
	}
}

func (c caller) generate(ctx context.Context, operation, prompt string) (string, error) {
	c.logger.Debug("gemini generate content request",
		zap.String(logger.FieldOperation, operation),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, c.maxLogLen)),
	)

	raw, err := c.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}

	c.logger.Debug("gemini generate content response",
		zap.String(logger.FieldOperation, operation),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, c.maxLogLen)),
	)

	return raw, nil
}
