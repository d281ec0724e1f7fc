package report

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// Formatter renders a Report in one output format.
type Formatter interface {
	Format(r Report) (string, error)
}

// Registry maps format names to formatters.
type Registry struct {
	formatters map[string]Formatter
}

// NewRegistry returns a registry with the text, markdown and json formatters.
func NewRegistry() *Registry {
	r := &Registry{formatters: make(map[string]Formatter)}
	r.Register(FormatText, TextFormatter{})
	r.Register(FormatMarkdown, MarkdownFormatter{})
	r.Register(FormatJSON, JSONFormatter{})
	return r
}

func (r *Registry) Register(format string, f Formatter) {
	r.formatters[strings.ToLower(format)] = f
}

func (r *Registry) Format(report Report, format string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatText
	}
	if format == "md" {
		format = FormatMarkdown
	}

	f, ok := r.formatters[format]
	if !ok {
		return "", fmt.Errorf("unsupported report format %q (supported: %s)", format, strings.Join(r.Formats(), ", "))
	}
	return f.Format(report)
}

// Formats lists the registered format names in sorted order.
func (r *Registry) Formats() []string {
	formats := make([]string, 0, len(r.formatters))
	for format := range r.formatters {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	return formats
}

type JSONFormatter struct{}

func (JSONFormatter) Format(r Report) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	return string(data) + "\n", nil
}

type TextFormatter struct{}

func (TextFormatter) Format(r Report) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "=== CANDIDATES REPORT - %s ===\n", r.GeneratedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "Total candidates: %d\n", r.Total)

	if r.Total == 0 {
		b.WriteString("\nNo candidates have completed the interview yet.\n")
		return b.String(), nil
	}

	for i, e := range r.Candidates {
		fmt.Fprintf(&b, "\n--- Candidate #%d: %s ---\n", i+1, e.Name)
		fmt.Fprintf(&b, "Email:           %s\n", e.Email)
		fmt.Fprintf(&b, "Phone:           %s\n", e.Phone)
		fmt.Fprintf(&b, "Experience:      %s\n", e.Experience)
		fmt.Fprintf(&b, "Position:        %s\n", e.DesiredPosition)
		fmt.Fprintf(&b, "Location:        %s\n", e.Location)
		fmt.Fprintf(&b, "Tech Stack:      %s\n", e.techStack())
		fmt.Fprintf(&b, "Sentiment Score: %d (%s)\n", e.SentimentScore, e.Sentiment)
		fmt.Fprintf(&b, "AI Grade:        %s\n", e.gradeLine())

		if len(e.Transcript) == 0 {
			continue
		}

		b.WriteString("\nTechnical Assessment:\n")
		for j, qa := range e.Transcript {
			fmt.Fprintf(&b, "  Q%d: %s\n", j+1, qa.Question)
			fmt.Fprintf(&b, "  A%d: %s\n", j+1, qa.Answer)
		}
	}

	return b.String(), nil
}

type MarkdownFormatter struct{}

func (MarkdownFormatter) Format(r Report) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "# Candidates Report - %s\n\n", r.GeneratedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "Total candidates: **%d**\n", r.Total)

	if r.Total == 0 {
		b.WriteString("\n_No candidates have completed the interview yet._\n")
		return b.String(), nil
	}

	for i, e := range r.Candidates {
		fmt.Fprintf(&b, "\n## Candidate #%d: %s\n\n", i+1, e.Name)
		b.WriteString("| Field | Value |\n|---|---|\n")
		writeRow(&b, "Email", e.Email)
		writeRow(&b, "Phone", e.Phone)
		writeRow(&b, "Experience", e.Experience)
		writeRow(&b, "Position", e.DesiredPosition)
		writeRow(&b, "Location", e.Location)
		writeRow(&b, "Tech Stack", e.techStack())
		writeRow(&b, "Sentiment Score", fmt.Sprintf("%d (%s)", e.SentimentScore, e.Sentiment))
		writeRow(&b, "AI Grade", e.gradeLine())

		if len(e.Transcript) == 0 {
			continue
		}

		b.WriteString("\n### Technical Assessment\n\n| # | Question | Answer |\n|---|---|---|\n")
		for j, qa := range e.Transcript {
			fmt.Fprintf(&b, "| %d | %s | %s |\n", j+1, escapeCell(qa.Question), escapeCell(qa.Answer))
		}
	}

	return b.String(), nil
}

func writeRow(b *strings.Builder, field, value string) {
	fmt.Fprintf(b, "| %s | %s |\n", field, escapeCell(value))
}

// escapeCell keeps free text inside one markdown table cell.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}
