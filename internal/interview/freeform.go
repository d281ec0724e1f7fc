package interview

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// OperationFreeForm names free-form model calls in logs and metrics.
const OperationFreeForm = "free_form"

const personaTemplate = `You are a hiring assistant chatbot for a recruitment agency specializing in technology placements.
Your primary tasks are:
1. Collect candidate information (name, email, phone, experience, desired position, location, tech stack)
2. Ask relevant technical questions based on their declared tech stack
3. Maintain a professional and friendly tone throughout the conversation

Current candidate information: %s
Current state: %s

Rules:
- Keep responses concise and professional.
- Focus on collecting required information in a conversational manner.
- Do not hallucinate or make up information about the candidate.
- Do not deviate from the purpose of candidate screening.
- If the candidate wants to end the conversation, thank them and close politely.`

// freeForm answers a turn in a phase the machine has no handler for.
func (m *Machine) freeForm(ctx context.Context, s *Session, utterance string) (string, error) {
	if m.generator == nil {
		return "", fmt.Errorf("no generator configured for phase %q", s.Phase)
	}

	prompt, err := m.freeFormPrompt(s, utterance)
	if err != nil {
		return "", err
	}

	return m.generator.GenerateContent(ctx, prompt)
}

func (m *Machine) freeFormPrompt(s *Session, utterance string) (string, error) {
	record, err := json.MarshalIndent(s.Candidate, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal candidate snapshot: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, personaTemplate, record, s.Phase)
	for _, msg := range s.history(m.historyTurns) {
		fmt.Fprintf(&b, "\n%s: %s", msg.Role, msg.Content)
	}
	fmt.Fprintf(&b, "\nUser: %s\nAssistant:", utterance)

	return b.String(), nil
}
