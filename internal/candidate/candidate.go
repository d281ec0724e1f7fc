// Package candidate defines the record gathered for one screening session.
package candidate

import (
	"strings"
	"time"
)

const (
	SentimentVeryPositive = "Very Positive"
	SentimentPositive     = "Positive"
	SentimentNeutral      = "Neutral"
	SentimentNegative     = "Negative"

	BandHigh    = "high"
	BandAverage = "average"
	BandLow     = "low"
)

// Candidate is filled monotonically while the interview advances.
// Answers never outgrow Questions.
type Candidate struct {
	Name            *string `json:"name,omitempty"`
	Email           *string `json:"email,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	Experience      *string `json:"experience,omitempty"`
	DesiredPosition *string `json:"desired_position,omitempty"`
	Location        *string `json:"location,omitempty"`

	TechStack   []string `json:"tech_stack"`
	Questions   []string `json:"questions"`
	Answers     []string `json:"answers"`
	Assessments []string `json:"assessments,omitempty"`

	SentimentScore int  `json:"sentiment_score"`
	Grade          *int `json:"grade,omitempty"`

	SessionID   string    `json:"session_id,omitempty"`
	CompletedAt time.Time `json:"completed_at,omitempty"`
}

// QA is one asked question with the answer given to it, if any.
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func New() *Candidate {
	return &Candidate{
		TechStack: []string{},
		Questions: []string{},
		Answers:   []string{},
	}
}

// Clone returns a deep copy so the stored record never shares memory with a live session.
func (c *Candidate) Clone() *Candidate {
	if c == nil {
		return nil
	}

	out := *c
	out.Name = cloneString(c.Name)
	out.Email = cloneString(c.Email)
	out.Phone = cloneString(c.Phone)
	out.Experience = cloneString(c.Experience)
	out.DesiredPosition = cloneString(c.DesiredPosition)
	out.Location = cloneString(c.Location)
	out.TechStack = cloneSlice(c.TechStack)
	out.Questions = cloneSlice(c.Questions)
	out.Answers = cloneSlice(c.Answers)
	out.Assessments = cloneSlice(c.Assessments)

	if c.Grade != nil {
		g := *c.Grade
		out.Grade = &g
	}

	return &out
}

// Pairs zips questions with answers. A pending question gets an empty answer.
func (c *Candidate) Pairs() []QA {
	if c == nil {
		return nil
	}

	pairs := make([]QA, 0, len(c.Questions))
	for i, q := range c.Questions {
		pair := QA{Question: q}
		if i < len(c.Answers) {
			pair.Answer = c.Answers[i]
		}
		pairs = append(pairs, pair)
	}

	return pairs
}

// Answered returns only the pairs that already have an answer.
func (c *Candidate) Answered() []QA {
	pairs := c.Pairs()
	if len(c.Answers) < len(pairs) {
		pairs = pairs[:len(c.Answers)]
	}
	return pairs
}

func (c *Candidate) HasName() bool {
	return c != nil && c.Name != nil && strings.TrimSpace(*c.Name) != ""
}

// EmailKey is the normalized email used for de-duplication. Empty when no email was captured.
func (c *Candidate) EmailKey() string {
	if c == nil || c.Email == nil {
		return ""
	}
	return NormalizeEmail(*c.Email)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (c *Candidate) SentimentLabel() string {
	return SentimentLabel(c.SentimentScore)
}

// SentimentLabel classifies a running sentiment score.
func SentimentLabel(score int) string {
	switch {
	case score > 3:
		return SentimentVeryPositive
	case score > 0:
		return SentimentPositive
	case score == 0:
		return SentimentNeutral
	default:
		return SentimentNegative
	}
}

// GradeBand returns an empty string for an ungraded record.
func (c *Candidate) GradeBand() string {
	if c == nil || c.Grade == nil {
		return ""
	}
	return GradeBand(*c.Grade)
}

func GradeBand(grade int) string {
	switch {
	case grade >= 8:
		return BandHigh
	case grade >= 4:
		return BandAverage
	default:
		return BandLow
	}
}

// Value dereferences an optional field, returning fallback when it is unset.
func Value(s *string, fallback string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return fallback
	}
	return *s
}

func Ptr[T any](v T) *T {
	return &v
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneSlice(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
