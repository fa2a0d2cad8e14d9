package metrics

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRecorderObserve(t *testing.T) {
	recorder := NewRecorder()
	ctx := context.Background()

	recorder.Observe(ctx, "merge", true, 40*time.Millisecond)
	recorder.Observe(ctx, "merge", false, 10*time.Millisecond)
	recorder.Observe(ctx, "", true, time.Millisecond)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	recorder.Handler().ServeHTTP(rec, req)

	body, err := io.ReadAll(rec.Result().Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	text := string(body)

	for _, want := range []string{
		`feedstockcore_pipeline_stage_runs_total{result="success",stage="merge"} 1`,
		`feedstockcore_pipeline_stage_runs_total{result="error",stage="merge"} 1`,
		`feedstockcore_pipeline_stage_duration_seconds_count{stage="merge"} 2`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("metrics output missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, `stage=""`) {
		t.Error("empty stage must not be recorded")
	}
}
