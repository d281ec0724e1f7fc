package interview

import (
	"context"
	"fmt"

	"github.com/spigell/hh-screener/internal/ai"
	"go.uber.org/zap"
)

const defaultMaxQuestionsPerTech = 2

// assessment runs the technical sub-flow. start is called once on entering
// PhaseTechQuestions with a non-empty tech stack; answer consumes each later
// utterance and reports done after the last technology.
type assessment interface {
	start(ctx context.Context, s *Session) (string, error)
	answer(ctx context.Context, s *Session, utterance string) (reply string, done bool, err error)
}

type batchAssessment struct {
	questioner ai.Questioner
}

func (b *batchAssessment) start(ctx context.Context, s *Session) (string, error) {
	if s.TechQuestions == nil {
		s.TechQuestions = make(map[string][]string)
	}

	for _, tech := range s.Candidate.TechStack {
		if _, ok := s.TechQuestions[tech]; ok {
			continue
		}
		s.TechQuestions[tech] = b.questioner.Batch(ctx, tech)
	}

	s.TechIndex = 0
	s.QuestionsAsked = 0
	s.CurrentTech = s.Candidate.TechStack[0]

	question, err := b.question(s)
	if err != nil {
		return "", err
	}

	return msgFirstQuestion(s.CurrentTech, question), nil
}

func (b *batchAssessment) answer(_ context.Context, s *Session, utterance string) (string, bool, error) {
	s.Candidate.Answers = append(s.Candidate.Answers, utterance)
	s.QuestionsAsked++

	if s.QuestionsAsked < len(s.TechQuestions[s.CurrentTech]) {
		question, err := b.question(s)
		if err != nil {
			return "", false, err
		}
		return msgNextQuestion(question), false, nil
	}

	s.TechIndex++
	s.QuestionsAsked = 0
	if s.TechIndex >= len(s.Candidate.TechStack) {
		s.CurrentTech = ""
		return "", true, nil
	}

	s.CurrentTech = s.Candidate.TechStack[s.TechIndex]
	question, err := b.question(s)
	if err != nil {
		return "", false, err
	}

	return msgNextTech(s.CurrentTech, question), false, nil
}

// question records and returns the pending question for the current technology.
func (b *batchAssessment) question(s *Session) (string, error) {
	questions := s.TechQuestions[s.CurrentTech]
	if s.QuestionsAsked >= len(questions) {
		return "", fmt.Errorf("no question #%d cached for %q", s.QuestionsAsked+1, s.CurrentTech)
	}

	question := questions[s.QuestionsAsked]
	s.Candidate.Questions = append(s.Candidate.Questions, question)
	return question, nil
}

type incrementalAssessment struct {
	questioner ai.Questioner
	analyzer   ai.Analyzer
	maxPerTech int
	logger     *zap.Logger
}

func (a *incrementalAssessment) start(ctx context.Context, s *Session) (string, error) {
	s.TechIndex = 0
	s.QuestionsAsked = 0
	s.CurrentTech = s.Candidate.TechStack[0]

	question, err := a.ask(ctx, s, "")
	if err != nil {
		return "", err
	}

	return msgFirstQuestion(s.CurrentTech, question), nil
}

func (a *incrementalAssessment) answer(ctx context.Context, s *Session, utterance string) (string, bool, error) {
	question := ""
	if n := len(s.Candidate.Questions); n > 0 {
		question = s.Candidate.Questions[n-1]
	}

	s.Candidate.Answers = append(s.Candidate.Answers, utterance)
	s.Candidate.Assessments = append(s.Candidate.Assessments, a.analyze(ctx, s, question, utterance))
	s.QuestionsAsked++

	if s.QuestionsAsked < a.maxPerTech {
		followUp, err := a.ask(ctx, s, utterance)
		if err != nil {
			return "", false, err
		}
		return msgNextQuestion(followUp), false, nil
	}

	s.TechIndex++
	s.QuestionsAsked = 0
	if s.TechIndex >= len(s.Candidate.TechStack) {
		s.CurrentTech = ""
		return "", true, nil
	}

	s.CurrentTech = s.Candidate.TechStack[s.TechIndex]
	next, err := a.ask(ctx, s, "")
	if err != nil {
		return "", false, err
	}

	return msgNextTech(s.CurrentTech, next), false, nil
}

func (a *incrementalAssessment) ask(ctx context.Context, s *Session, previousAnswer string) (string, error) {
	question, err := a.questioner.Single(ctx, s.CurrentTech, previousAnswer, s.QuestionsAsked+1)
	if err != nil {
		return "", err
	}

	s.Candidate.Questions = append(s.Candidate.Questions, question)
	return question, nil
}

// analyze never fails the turn. A missing note is stored as an empty string.
func (a *incrementalAssessment) analyze(ctx context.Context, s *Session, question, answer string) string {
	if a.analyzer == nil {
		return ""
	}

	note, err := a.analyzer.Analyze(ctx, s.CurrentTech, question, answer)
	if err != nil {
		a.logger.Warn("answer analysis failed",
			zap.String("tech", s.CurrentTech),
			zap.Error(err),
		)
		return ""
	}

	return note
}
