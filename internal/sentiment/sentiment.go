// Package sentiment scores utterances by counting vocabulary hits.
// It is a lexical counter, not a language model.
package sentiment

import "strings"

var (
	DefaultPositive = []string{
		"happy", "great", "good", "excellent", "thank", "appreciate", "excited",
		"love", "enjoy", "passionate", "interested", "eager", "enthusiastic",
		"delighted", "pleased", "satisfied", "helpful", "positive", "wonderful",
		"fantastic", "amazing", "awesome", "impressive", "brilliant", "valuable",
		"confident", "skilled", "capable", "successful", "experienced", "effective",
	}

	DefaultNegative = []string{
		"bad", "poor", "frustrated", "annoyed", "difficult", "problem", "issue",
		"hate", "dislike", "boring", "confused", "challenging", "hard", "worry",
		"concerned", "trouble", "disappointed", "negative", "terrible", "horrible",
		"awful", "unfortunate", "struggle", "complicated", "uncertain", "doubt",
		"lacking", "insufficient", "ineffective", "dissatisfied", "unfamiliar",
	}
)

// Scorer adds one per positive keyword present and subtracts one per negative keyword present.
// A keyword counts once per utterance however often it appears.
type Scorer struct {
	positive []string
	negative []string
}

// New builds a Scorer. Empty vocabularies fall back to the defaults.
func New(positive, negative []string) *Scorer {
	positive = normalize(positive)
	if len(positive) == 0 {
		positive = DefaultPositive
	}

	negative = normalize(negative)
	if len(negative) == 0 {
		negative = DefaultNegative
	}

	return &Scorer{positive: positive, negative: negative}
}

var defaultScorer = New(nil, nil)

// Score uses the default vocabularies.
func Score(text string) int {
	return defaultScorer.Score(text)
}

func (s *Scorer) Score(text string) int {
	text = strings.ToLower(text)

	score := 0
	for _, word := range s.positive {
		if strings.Contains(text, word) {
			score++
		}
	}
	for _, word := range s.negative {
		if strings.Contains(text, word) {
			score--
		}
	}

	return score
}

func normalize(words []string) []string {
	out := make([]string, 0, len(words))
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}
