package interview

import (
	"fmt"
	"strings"
)

// Phase is a named state of the conversation.
type Phase string

const (
	PhaseGreeting      Phase = "greeting"
	PhaseAskName       Phase = "ask_name"
	PhaseAskEmail      Phase = "ask_email"
	PhaseAskPhone      Phase = "ask_phone"
	PhaseAskExperience Phase = "ask_experience"
	PhaseAskPosition   Phase = "ask_position"
	PhaseAskLocation   Phase = "ask_location"
	PhaseAskTechStack  Phase = "ask_tech_stack"
	PhaseTechQuestions Phase = "tech_questions"
	PhaseFarewell      Phase = "farewell"
	// PhaseFreeForm is never entered on purpose. Any unrecognised phase is handled as free form.
	PhaseFreeForm Phase = "free_form"
)

var knownPhases = map[Phase]struct{}{
	PhaseGreeting:      {},
	PhaseAskName:       {},
	PhaseAskEmail:      {},
	PhaseAskPhone:      {},
	PhaseAskExperience: {},
	PhaseAskPosition:   {},
	PhaseAskLocation:   {},
	PhaseAskTechStack:  {},
	PhaseTechQuestions: {},
	PhaseFarewell:      {},
}

// Known reports whether the machine has a dedicated handler for p.
func (p Phase) Known() bool {
	_, ok := knownPhases[p]
	return ok
}

func (p Phase) String() string {
	return string(p)
}

// Strategy selects how the technical assessment is run.
type Strategy string

const (
	// StrategyBatch pre-generates five questions per technology.
	StrategyBatch Strategy = "batch"
	// StrategyIncremental asks generated questions one by one with follow-ups.
	StrategyIncremental Strategy = "incremental"
)

func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyBatch:
		return StrategyBatch, nil
	case StrategyIncremental:
		return StrategyIncremental, nil
	default:
		return "", fmt.Errorf("unknown interview strategy %q (want %q or %q)", s, StrategyBatch, StrategyIncremental)
	}
}
