package interview

import (
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/spigell/hh-screener/internal/candidate"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Session is the whole per-conversation state. It is not safe for concurrent use.
// TechQuestions caches batch questions by technology name.
type Session struct {
	ID             string               `json:"id"`
	Phase          Phase                `json:"phase"`
	TechIndex      int                  `json:"tech_index"`
	QuestionsAsked int                  `json:"questions_asked"`
	CurrentTech    string               `json:"current_tech,omitempty"`
	TechQuestions  map[string][]string  `json:"tech_questions,omitempty"`
	Messages       []Message            `json:"messages"`
	Candidate      *candidate.Candidate `json:"candidate"`
	Finalized      bool                 `json:"finalized"`
	StartedAt      time.Time            `json:"started_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

func NewSession() *Session {
	now := time.Now()
	return &Session{
		ID:            uuid.NewString(),
		Phase:         PhaseGreeting,
		TechQuestions: make(map[string][]string),
		Messages:      []Message{},
		Candidate:     candidate.New(),
		StartedAt:     now,
		UpdatedAt:     now,
	}
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}

	out := *s
	out.Messages = slices.Clone(s.Messages)
	out.Candidate = s.Candidate.Clone()

	if s.TechQuestions != nil {
		out.TechQuestions = maps.Clone(s.TechQuestions)
		for tech, questions := range out.TechQuestions {
			out.TechQuestions[tech] = slices.Clone(questions)
		}
	}

	return &out
}

// LastReply returns the latest assistant message, or an empty string.
func (s *Session) LastReply() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleAssistant {
			return s.Messages[i].Content
		}
	}
	return ""
}

func (s *Session) appendMessage(role Role, content string) {
	s.Messages = append(s.Messages, Message{Role: role, Content: content})
}

// history returns at most n trailing transcript entries.
func (s *Session) history(n int) []Message {
	if n <= 0 || len(s.Messages) <= n {
		return s.Messages
	}
	return s.Messages[len(s.Messages)-n:]
}
