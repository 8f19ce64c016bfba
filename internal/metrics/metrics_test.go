package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestRecorder_ExposesCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.Cascade(true, 500000)
	r.Cascade(false, 0)
	r.Override("applied")
	r.Override("fixed")
	r.Reset()
	r.SessionOpened()
	r.SessionOpened()
	r.SessionsExpired(1)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	out := string(body)

	for _, want := range []string{
		"aquaquote_cascade_runs_total 1",
		"aquaquote_cascade_skipped_total 1",
		`aquaquote_quantity_overrides_total{outcome="applied"} 1`,
		`aquaquote_quantity_overrides_total{outcome="fixed"} 1`,
		"aquaquote_resets_total 1",
		"aquaquote_sessions 1",
		"aquaquote_sessions_expired_total 1",
		"aquaquote_quote_total_cost_count 1",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("metrics output missing %q:\n%s", want, out)
		}
	}
}

func TestRecorder_NilIsSafe(t *testing.T) {
	var r *Recorder
	r.Cascade(true, 1)
	r.Override("applied")
	r.Reset()
	r.SessionOpened()
	r.SessionClosed()
}
