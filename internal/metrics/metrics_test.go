package metrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spigell/hh-screener/internal/ai"
	"github.com/spigell/hh-screener/internal/candidate"
)

type stubGenerator struct {
	err error
}

func (s stubGenerator) GenerateContent(context.Context, string) (string, error) {
	return "ok", s.err
}

func TestSessionCounters(t *testing.T) {
	r := New()

	r.SessionStarted()
	r.SessionStarted()

	graded := candidate.New()
	graded.Grade = candidate.Ptr(8)
	r.SessionCompleted("completed", graded)
	r.SessionCompleted("exit", candidate.New())

	if got := testutil.ToFloat64(r.sessionsStarted); got != 2 {
		t.Fatalf("expected 2 started sessions, got %v", got)
	}
	if got := testutil.ToFloat64(r.sessionsCompleted.WithLabelValues("completed")); got != 1 {
		t.Fatalf("expected 1 completed session, got %v", got)
	}
	if got := testutil.ToFloat64(r.sessionsCompleted.WithLabelValues("exit")); got != 1 {
		t.Fatalf("expected 1 exited session, got %v", got)
	}
	if got := testutil.CollectAndCount(r.grades); got != 1 {
		t.Fatalf("expected grade histogram to be collected, got %d", got)
	}
}

func TestInstrument(t *testing.T) {
	r := New()

	ok := r.Instrument(stubGenerator{}, "grade")
	failing := r.Instrument(stubGenerator{err: fmt.Errorf("%w: boom", ai.ErrOracleUnavailable)}, "grade")
	broken := r.Instrument(stubGenerator{err: errors.New("bad prompt")}, "grade")

	for _, gen := range []ai.Generator{ok, ok, failing, broken} {
		_, _ = gen.GenerateContent(context.Background(), "p")
	}

	tests := map[string]float64{
		OutcomeSuccess:     2,
		OutcomeUnavailable: 1,
		OutcomeError:       1,
	}
	for outcome, want := range tests {
		if got := testutil.ToFloat64(r.oracleRequests.WithLabelValues("grade", outcome)); got != want {
			t.Fatalf("outcome %s: expected %v, got %v", outcome, want, got)
		}
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	r := New()
	r.QuestionFallback("Go", errors.New("bad json"))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "hh_screener_question_fallbacks_total 1") {
		t.Fatalf("expected fallback counter in output, got:\n%s", body)
	}
}
