package candidate

import "testing"

func TestCloneIsDeep(t *testing.T) {
	orig := New()
	orig.Name = Ptr("Jane Doe")
	orig.Email = Ptr("jane@x.com")
	orig.TechStack = append(orig.TechStack, "Go")
	orig.Questions = append(orig.Questions, "q1")
	orig.Answers = append(orig.Answers, "a1")
	orig.Assessments = []string{"solid"}
	orig.Grade = Ptr(7)

	clone := orig.Clone()

	*orig.Name = "John"
	*orig.Grade = 2
	orig.TechStack[0] = "Rust"
	orig.Questions[0] = "changed"
	orig.Answers = append(orig.Answers, "a2")
	orig.Assessments[0] = "weak"

	if *clone.Name != "Jane Doe" {
		t.Fatalf("name leaked into clone: %q", *clone.Name)
	}
	if *clone.Grade != 7 {
		t.Fatalf("grade leaked into clone: %d", *clone.Grade)
	}
	if clone.TechStack[0] != "Go" || clone.Questions[0] != "q1" || clone.Assessments[0] != "solid" {
		t.Fatalf("slices leaked into clone: %+v", clone)
	}
	if len(clone.Answers) != 1 {
		t.Fatalf("expected 1 answer in clone, got %d", len(clone.Answers))
	}

	var nilCandidate *Candidate
	if nilCandidate.Clone() != nil {
		t.Fatalf("expected nil clone of nil candidate")
	}
}

func TestPairs(t *testing.T) {
	c := New()
	c.Questions = []string{"q1", "q2"}
	c.Answers = []string{"a1"}

	pairs := c.Pairs()
	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(pairs))
	}
	if pairs[0] != (QA{Question: "q1", Answer: "a1"}) {
		t.Fatalf("unexpected first pair: %+v", pairs[0])
	}
	if pairs[1].Answer != "" {
		t.Fatalf("expected pending answer to be empty, got %q", pairs[1].Answer)
	}

	answered := c.Answered()
	if len(answered) != 1 || answered[0].Question != "q1" {
		t.Fatalf("unexpected answered pairs: %+v", answered)
	}
}

func TestSentimentLabel(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{score: 5, want: SentimentVeryPositive},
		{score: 4, want: SentimentVeryPositive},
		{score: 3, want: SentimentPositive},
		{score: 1, want: SentimentPositive},
		{score: 0, want: SentimentNeutral},
		{score: -1, want: SentimentNegative},
	}

	for _, tt := range tests {
		if got := SentimentLabel(tt.score); got != tt.want {
			t.Fatalf("SentimentLabel(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestGradeBand(t *testing.T) {
	tests := []struct {
		grade int
		want  string
	}{
		{grade: 10, want: BandHigh},
		{grade: 8, want: BandHigh},
		{grade: 7, want: BandAverage},
		{grade: 4, want: BandAverage},
		{grade: 3, want: BandLow},
		{grade: 1, want: BandLow},
	}

	for _, tt := range tests {
		if got := GradeBand(tt.grade); got != tt.want {
			t.Fatalf("GradeBand(%d) = %q, want %q", tt.grade, got, tt.want)
		}
	}

	if got := New().GradeBand(); got != "" {
		t.Fatalf("expected empty band for ungraded record, got %q", got)
	}
}

func TestEmailKey(t *testing.T) {
	c := New()
	if c.EmailKey() != "" {
		t.Fatalf("expected empty key without email")
	}

	c.Email = Ptr("  Jane@X.com ")
	if got := c.EmailKey(); got != "jane@x.com" {
		t.Fatalf("unexpected key: %q", got)
	}
}
