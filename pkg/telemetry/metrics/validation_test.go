package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordCounters(t *testing.T) {
	registry := prometheus.NewRegistry()
	vm := NewValidationMetrics("lcopilot", "rules", registry)

	vm.RecordEvaluation("UCP-14D", "passed")
	vm.RecordEvaluation("UCP-14D", "passed")
	vm.RecordEvaluation("UCP-14D", "failed")
	vm.RecordSemanticComparison("fuzzy")
	vm.RecordLoadFailure("icc.ucp600")
	vm.RecordImport("draft")

	if got := testutil.ToFloat64(vm.evaluationsTotal.WithLabelValues("UCP-14D", "passed")); got != 2 {
		t.Errorf("passed evaluations = %v, want 2", got)
	}
	if got := testutil.ToFloat64(vm.evaluationsTotal.WithLabelValues("UCP-14D", "failed")); got != 1 {
		t.Errorf("failed evaluations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(vm.semanticComparisons.WithLabelValues("fuzzy")); got != 1 {
		t.Errorf("semantic comparisons = %v, want 1", got)
	}
	if got := testutil.ToFloat64(vm.loadFailures.WithLabelValues("icc.ucp600")); got != 1 {
		t.Errorf("load failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(vm.importsTotal.WithLabelValues("draft")); got != 1 {
		t.Errorf("imports = %v, want 1", got)
	}
}

func TestHandlerServesRegisteredMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	vm := NewValidationMetrics("lcopilot", "rules", registry)

	vm.RecordValidation("icc.ucp600", 25*time.Millisecond)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler(registry).ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "lcopilot_rules_validation_duration_seconds") {
		t.Errorf("scrape output missing duration histogram:\n%s", body)
	}
}
