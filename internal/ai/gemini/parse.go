package gemini

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/spigell/hh-screener/internal/ai"
	"github.com/tidwall/gjson"
)

var integerRe = regexp.MustCompile(`\d+`)

// extractJSON strips a fenced code block (with or without a language tag) and
// surrounding prose, leaving the outermost JSON array when one is present.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	if start := strings.Index(raw, "```"); start != -1 {
		body := raw[start+3:]
		if end := strings.Index(body, "```"); end != -1 {
			body = body[:end]
		}
		// Drop a language tag such as "json" sitting on the fence line.
		if nl := strings.IndexByte(body, '\n'); nl != -1 {
			tag := strings.TrimSpace(body[:nl])
			if tag != "" && !strings.ContainsAny(tag, "[{\"") {
				body = body[nl+1:]
			}
		}
		raw = strings.TrimSpace(body)
	}

	raw = strings.Trim(raw, "`")
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "[") || strings.HasPrefix(raw, "{") {
		return raw
	}

	open := strings.Index(raw, "[")
	closing := strings.LastIndex(raw, "]")
	if open != -1 && closing > open {
		return raw[open : closing+1]
	}

	return raw
}

// parseQuestions reads a JSON array of question strings. Blank and non-string entries are skipped.
func parseQuestions(raw string) ([]string, error) {
	cleaned := extractJSON(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty response", ai.ErrGenerationParse)
	}

	if !gjson.Valid(cleaned) {
		return nil, fmt.Errorf("%w: response is not valid json", ai.ErrGenerationParse)
	}

	result := gjson.Parse(cleaned)
	if !result.IsArray() {
		return nil, fmt.Errorf("%w: expected a json array, got %s", ai.ErrGenerationParse, result.Type)
	}

	questions := make([]string, 0, ai.BatchSize)
	result.ForEach(func(_, value gjson.Result) bool {
		if value.Type != gjson.String {
			return true
		}
		if q := strings.TrimSpace(value.String()); q != "" {
			questions = append(questions, q)
		}
		return true
	})

	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no questions in array", ai.ErrGenerationParse)
	}

	return questions, nil
}

// parseGrade takes the first integer anywhere in raw and clamps it into the grade range.
func parseGrade(raw string) (int, error) {
	match := integerRe.FindString(raw)
	if match == "" {
		return ai.DefaultGrade, fmt.Errorf("%w: no integer in %q", ai.ErrGenerationParse, raw)
	}

	grade, err := strconv.Atoi(match)
	if err != nil {
		// Only an out-of-range value can fail here since the match is all digits.
		if errors.Is(err, strconv.ErrRange) {
			return ai.MaxGrade, nil
		}
		return ai.DefaultGrade, fmt.Errorf("%w: %w", ai.ErrGenerationParse, err)
	}

	return clampGrade(grade), nil
}

func clampGrade(grade int) int {
	return max(ai.MinGrade, min(ai.MaxGrade, grade))
}
