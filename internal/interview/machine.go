// Package interview drives the screening conversation one utterance at a time.
package interview

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spigell/hh-screener/internal/ai"
	"github.com/spigell/hh-screener/internal/candidate"
	"github.com/spigell/hh-screener/internal/logger"
	"github.com/spigell/hh-screener/internal/sentiment"
	"github.com/spigell/hh-screener/internal/utils"
	"github.com/spigell/hh-screener/internal/validate"
	"go.uber.org/zap"
)

const (
	ReasonCompleted   = "completed"
	ReasonNoTechStack = "no_tech_stack"
	ReasonExit        = "exit"

	defaultHistoryTurns = 5
)

// Exit keywords match whole words only, so "Backend" does not end the interview.
var exitRe = regexp.MustCompile(`(?i)\b(?:exit|quit|goodbye|bye|end|stop)\b`)

// IsExit reports whether the utterance asks to end the conversation.
func IsExit(utterance string) bool {
	return exitRe.MatchString(utterance)
}

// Store receives finalized records. Add reports false for a duplicate email.
type Store interface {
	Add(c *candidate.Candidate) bool
}

// Observer is notified about session lifecycle events.
type Observer interface {
	SessionStarted()
	SessionCompleted(reason string, c *candidate.Candidate)
}

type Options struct {
	Strategy            Strategy
	MaxQuestionsPerTech int
	HistoryTurns        int
	// Analyzer is used by the incremental strategy only and may be nil.
	Analyzer ai.Analyzer
	// Generator answers free-form turns and may be nil.
	Generator ai.Generator
	Scorer    *sentiment.Scorer
	Observer  Observer
}

// Machine holds no per-session state and may serve many sessions concurrently.
type Machine struct {
	grader       ai.Grader
	generator    ai.Generator
	store        Store
	scorer       *sentiment.Scorer
	assessment   assessment
	observer     Observer
	historyTurns int
	logger       *zap.Logger
	now          func() time.Time
}

func NewMachine(questioner ai.Questioner, grader ai.Grader, store Store, log *zap.Logger, opts Options) (*Machine, error) {
	if questioner == nil {
		return nil, errors.New("questioner is required")
	}
	if grader == nil {
		return nil, errors.New("grader is required")
	}
	if store == nil {
		return nil, errors.New("store is required")
	}

	log = logger.WithFields(log)

	strategy, err := ParseStrategy(string(opts.Strategy))
	if err != nil {
		return nil, err
	}

	var flow assessment
	switch strategy {
	case StrategyIncremental:
		maxPerTech := opts.MaxQuestionsPerTech
		if maxPerTech <= 0 {
			maxPerTech = defaultMaxQuestionsPerTech
		}
		flow = &incrementalAssessment{
			questioner: questioner,
			analyzer:   opts.Analyzer,
			maxPerTech: maxPerTech,
			logger:     log,
		}
	default:
		flow = &batchAssessment{questioner: questioner}
	}

	scorer := opts.Scorer
	if scorer == nil {
		scorer = sentiment.New(nil, nil)
	}

	turns := opts.HistoryTurns
	if turns <= 0 {
		turns = defaultHistoryTurns
	}

	return &Machine{
		grader:       grader,
		generator:    opts.Generator,
		store:        store,
		scorer:       scorer,
		assessment:   flow,
		observer:     opts.Observer,
		historyTurns: turns,
		logger:       log,
		now:          time.Now,
	}, nil
}

// Start greets a fresh session and moves it to PhaseAskName. For a session
// that is already running it returns the last assistant reply.
func (m *Machine) Start(s *Session) string {
	if s.Phase != PhaseGreeting {
		return s.LastReply()
	}

	reply := m.greet(s)
	s.appendMessage(RoleAssistant, reply)
	s.UpdatedAt = m.now()
	return reply
}

// Process consumes one utterance and returns the assistant reply. A turn is
// atomic: when the model is unavailable the session is restored to its state
// before the call and MsgUnavailable is returned with an error wrapping
// ai.ErrOracleUnavailable.
func (m *Machine) Process(ctx context.Context, s *Session, utterance string) (string, error) {
	if s == nil {
		return "", errors.New("session is required")
	}
	if s.Candidate == nil {
		s.Candidate = candidate.New()
	}

	log := logger.WithSession(m.logger, s.ID, s.Phase.String())
	snapshot := s.Clone()

	reply, err := m.process(ctx, s, utterance)
	if err != nil {
		*s = *snapshot
		if !errors.Is(err, ai.ErrOracleUnavailable) {
			err = fmt.Errorf("%w: %w", ai.ErrOracleUnavailable, err)
		}
		log.Error("turn failed, session restored", zap.Error(err))
		return MsgUnavailable, fmt.Errorf("process %s turn: %w", snapshot.Phase, err)
	}

	s.appendMessage(RoleUser, utterance)
	s.appendMessage(RoleAssistant, reply)
	s.UpdatedAt = m.now()

	log.Debug("turn processed",
		zap.String("next_phase", s.Phase.String()),
		zap.Int("sentiment_score", s.Candidate.SentimentScore),
	)

	return reply, nil
}

func (m *Machine) process(ctx context.Context, s *Session, utterance string) (string, error) {
	if IsExit(utterance) {
		if s.Phase != PhaseFarewell {
			m.finish(ctx, s, ReasonExit)
		}
		return MsgGoodbye, nil
	}

	// A finalized record is immutable, so the closing phase does not score.
	if s.Phase == PhaseFarewell {
		return MsgClosed, nil
	}

	s.Candidate.SentimentScore += m.scorer.Score(utterance)
	input := strings.TrimSpace(utterance)

	switch s.Phase {
	case PhaseGreeting:
		return m.greet(s), nil

	case PhaseAskName:
		s.Candidate.Name = candidate.Ptr(input)
		s.Phase = PhaseAskEmail
		return msgAskEmail(input), nil

	case PhaseAskEmail:
		if err := validate.Email(input); err != nil {
			return MsgInvalidEmail, nil
		}
		s.Candidate.Email = candidate.Ptr(input)
		s.Phase = PhaseAskPhone
		return MsgAskPhone, nil

	case PhaseAskPhone:
		if err := validate.Phone(input); err != nil {
			return MsgInvalidPhone, nil
		}
		s.Candidate.Phone = candidate.Ptr(input)
		s.Phase = PhaseAskExperience
		return MsgAskExperience, nil

	case PhaseAskExperience:
		s.Candidate.Experience = candidate.Ptr(input)
		s.Phase = PhaseAskPosition
		return MsgAskPosition, nil

	case PhaseAskPosition:
		s.Candidate.DesiredPosition = candidate.Ptr(input)
		s.Phase = PhaseAskLocation
		return MsgAskLocation, nil

	case PhaseAskLocation:
		s.Candidate.Location = candidate.Ptr(input)
		s.Phase = PhaseAskTechStack
		return MsgAskTechStack, nil

	case PhaseAskTechStack:
		return m.techStack(ctx, s, input)

	case PhaseTechQuestions:
		if len(s.Candidate.TechStack) == 0 || s.TechIndex >= len(s.Candidate.TechStack) {
			m.finish(ctx, s, ReasonCompleted)
			return MsgAssessmentComplete, nil
		}

		reply, done, err := m.assessment.answer(ctx, s, input)
		if err != nil {
			return "", err
		}
		if done {
			m.finish(ctx, s, ReasonCompleted)
			return MsgAssessmentComplete, nil
		}
		return reply, nil

	default:
		return m.freeForm(ctx, s, utterance)
	}
}

func (m *Machine) greet(s *Session) string {
	s.Phase = PhaseAskName
	if m.observer != nil {
		m.observer.SessionStarted()
	}
	return MsgWelcome
}

func (m *Machine) techStack(ctx context.Context, s *Session, input string) (string, error) {
	s.Candidate.TechStack = utils.SplitList(input, ",")

	if len(s.Candidate.TechStack) == 0 {
		m.finish(ctx, s, ReasonNoTechStack)
		return MsgNoTechStack, nil
	}

	s.Phase = PhaseTechQuestions
	return m.assessment.start(ctx, s)
}

// finish moves the session to PhaseFarewell, grading and storing the record
// when a name was captured.
func (m *Machine) finish(ctx context.Context, s *Session, reason string) {
	s.Phase = PhaseFarewell
	m.finalize(ctx, s)

	if m.observer != nil {
		m.observer.SessionCompleted(reason, s.Candidate)
	}
}

func (m *Machine) finalize(ctx context.Context, s *Session) {
	if s.Finalized || !s.Candidate.HasName() {
		return
	}

	grade := m.grader.Grade(ctx, s.Candidate)
	s.Candidate.Grade = &grade
	s.Candidate.SessionID = s.ID
	s.Candidate.CompletedAt = m.now().UTC()
	s.Finalized = true

	stored := m.store.Add(s.Candidate.Clone())

	m.logger.Info("candidate finalized",
		zap.String(logger.FieldSessionID, s.ID),
		zap.Int("grade", grade),
		zap.Int("sentiment_score", s.Candidate.SentimentScore),
		zap.Bool("stored", stored),
	)
}
