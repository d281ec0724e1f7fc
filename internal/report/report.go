// Package report renders stored candidates into shareable documents.
package report

import (
	"strconv"
	"strings"
	"time"

	"github.com/spigell/hh-screener/internal/candidate"
)

const notAvailable = "N/A"

// Report is the format-independent view of the store.
type Report struct {
	GeneratedAt time.Time `json:"generated_at"`
	Total       int       `json:"total"`
	Candidates  []Entry   `json:"candidates"`
}

// Entry is one candidate as it appears in a report.
type Entry struct {
	Name            string         `json:"name"`
	Email           string         `json:"email"`
	Phone           string         `json:"phone"`
	Experience      string         `json:"experience"`
	DesiredPosition string         `json:"desired_position"`
	Location        string         `json:"location"`
	TechStack       []string       `json:"tech_stack"`
	SentimentScore  int            `json:"sentiment_score"`
	Sentiment       string         `json:"sentiment"`
	Grade           *int           `json:"grade,omitempty"`
	GradeBand       string         `json:"grade_band,omitempty"`
	Transcript      []candidate.QA `json:"transcript"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty"`
}

func Build(candidates []*candidate.Candidate, generatedAt time.Time) Report {
	r := Report{
		GeneratedAt: generatedAt,
		Candidates:  make([]Entry, 0, len(candidates)),
	}

	for _, c := range candidates {
		if c == nil {
			continue
		}
		r.Candidates = append(r.Candidates, NewEntry(c))
	}
	r.Total = len(r.Candidates)

	return r
}

func NewEntry(c *candidate.Candidate) Entry {
	e := Entry{
		Name:            candidate.Value(c.Name, "Unknown"),
		Email:           candidate.Value(c.Email, notAvailable),
		Phone:           candidate.Value(c.Phone, notAvailable),
		Experience:      candidate.Value(c.Experience, notAvailable),
		DesiredPosition: candidate.Value(c.DesiredPosition, notAvailable),
		Location:        candidate.Value(c.Location, notAvailable),
		TechStack:       append([]string{}, c.TechStack...),
		SentimentScore:  c.SentimentScore,
		Sentiment:       c.SentimentLabel(),
		GradeBand:       c.GradeBand(),
		Transcript:      c.Answered(),
	}

	if c.Grade != nil {
		g := *c.Grade
		e.Grade = &g
	}

	if !c.CompletedAt.IsZero() {
		t := c.CompletedAt
		e.CompletedAt = &t
	}

	return e
}

func (e Entry) techStack() string {
	if len(e.TechStack) == 0 {
		return notAvailable
	}
	return strings.Join(e.TechStack, ", ")
}

// gradeLine reads like "High potential candidate: 8/10".
func (e Entry) gradeLine() string {
	if e.Grade == nil {
		return "Not graded"
	}

	band := e.GradeBand
	if band != "" {
		band = strings.ToUpper(band[:1]) + band[1:]
	}
	return band + " potential candidate: " + strconv.Itoa(*e.Grade) + "/10"
}
