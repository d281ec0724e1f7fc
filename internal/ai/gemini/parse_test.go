package gemini

import (
	"errors"
	"testing"

	"github.com/spigell/hh-screener/internal/ai"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "plain", raw: `["a","b"]`, want: `["a","b"]`},
		{name: "json fence", raw: "```json\n[\"a\"]\n```", want: `["a"]`},
		{name: "bare fence", raw: "```\n[\"a\"]\n```", want: `["a"]`},
		{name: "fence with prose", raw: "Here you go:\n```json\n[\"a\"]\n```\nGood luck!", want: `["a"]`},
		{name: "prose without fence", raw: `Sure! ["a", "b"] Hope it helps.`, want: `["a", "b"]`},
		{name: "tag on same line", raw: "```json [\"a\"]```", want: `["a"]`},
		{name: "no json", raw: "nothing here", want: "nothing here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.raw); got != tt.want {
				t.Fatalf("extractJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseQuestions(t *testing.T) {
	questions, err := parseQuestions("```json\n[\" q1 \", \"\", 42, \"q2\"]\n```")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(questions) != 2 || questions[0] != "q1" || questions[1] != "q2" {
		t.Fatalf("unexpected questions: %#v", questions)
	}
}

func TestParseQuestionsErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "invalid json", raw: "[\"unterminated"},
		{name: "object", raw: `{"questions": ["a"]}`},
		{name: "no strings", raw: `[1, 2, 3]`},
		{name: "prose", raw: "I cannot help with that."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseQuestions(tt.raw)
			if !errors.Is(err, ai.ErrGenerationParse) {
				t.Fatalf("expected parse error, got %v", err)
			}
		})
	}
}

func TestParseGrade(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{name: "bare", raw: "7", want: 7},
		{name: "with prose", raw: "I would rate them 8 out of 10.", want: 8},
		{name: "above range", raw: "42", want: 10},
		{name: "below range", raw: "0", want: 1},
		{name: "huge", raw: "99999999999999999999999", want: 10},
		{name: "no integer", raw: "excellent", want: 5, wantErr: true},
		{name: "empty", raw: "", want: 5, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseGrade(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseGrade(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("parseGrade(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}
