// Unit tests for live-data fetchers and chart summarization.
package livedata

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/plantcopilot/plantcopilot/internal/infra/postgres"
)

// ============================================================================
// Alert client tests
// ============================================================================

func TestAlertClient_Fetch_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("resource") != "urn:iff:asset:7" {
			http.Error(w, "missing resource", http.StatusBadRequest)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"alerts": []Alert{{ID: "a1", Resource: "urn:iff:asset:7", Severity: "warning", Text: "high temp"}},
		})
	}))
	defer srv.Close()

	c := NewAlertClient(srv.URL, "test-key")
	alerts := c.Fetch(context.Background(), "urn:iff:asset:7")
	if len(alerts) != 1 || alerts[0].ID != "a1" {
		t.Errorf("expected one alert a1, got %+v", alerts)
	}
}

func TestAlertClient_Fetch_ZeroAlerts_ReturnsEmptyNotNil(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"alerts":[]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	alerts := NewAlertClient(srv.URL, "").Fetch(context.Background(), "urn:iff:asset:7")
	if alerts == nil {
		t.Fatal("expected non-nil empty slice")
	}
	if len(alerts) != 0 {
		t.Errorf("expected 0 alerts, got %d", len(alerts))
	}
}

func TestAlertClient_Fetch_ServerError_ReturnsEmpty(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	alerts := NewAlertClient(srv.URL, "").Fetch(context.Background(), "urn:iff:asset:7")
	if len(alerts) != 0 {
		t.Errorf("expected empty list on server error, got %+v", alerts)
	}
}

func TestAlertClient_Fetch_Unreachable_ReturnsEmpty(t *testing.T) {
	t.Parallel()

	alerts := NewAlertClient("http://127.0.0.1:1", "").Fetch(context.Background(), "urn:iff:asset:7")
	if len(alerts) != 0 {
		t.Errorf("expected empty list when API is unreachable, got %+v", alerts)
	}
}

// ============================================================================
// Time-series store tests
// ============================================================================

func TestAttributeID_PrefixesNamespace(t *testing.T) {
	t.Parallel()

	got := AttributeID("pressure")
	want := "https://industry-fusion.com/types/v0.9/pressure"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestTimeSeriesStore_Fetch_DBUnreachable_ReturnsEmpty(t *testing.T) {
	t.Parallel()

	db := postgres.Connect("postgres://user@127.0.0.1:1/none", "")
	defer db.Close() //nolint:errcheck

	s := NewTimeSeriesStore(db)
	points := s.Fetch(context.Background(), "urn:iff:asset:42", "pressure", time.Now().Add(-time.Hour), time.Now())
	if points == nil {
		t.Fatal("expected non-nil empty slice")
	}
	if len(points) != 0 {
		t.Errorf("expected empty series on query failure, got %d points", len(points))
	}
}

// ============================================================================
// Summarize tests
// ============================================================================

func TestSummarize_CountMinMax(t *testing.T) {
	t.Parallel()

	now := time.Now()
	points := []Point{
		{Timestamp: now, Value: 4.5},
		{Timestamp: now.Add(-time.Minute), Value: 1.5},
		{Timestamp: now.Add(-2 * time.Minute), Value: 9.25},
	}
	s := Summarize(points)
	if s.Summary != "3 data points, min 1.5, max 9.25" {
		t.Errorf("unexpected summary: %q", s.Summary)
	}
	if len(s.First) != 3 || len(s.Last) != 3 {
		t.Errorf("expected full slices for a short series, got %d/%d", len(s.First), len(s.Last))
	}
}

func TestSummarize_LongSeries_SlicesCappedAt100(t *testing.T) {
	t.Parallel()

	points := make([]Point, 250)
	base := time.Now()
	for i := range points {
		points[i] = Point{Timestamp: base.Add(-time.Duration(i) * time.Minute), Value: float64(i)}
	}

	s := Summarize(points)
	if len(s.First) != 100 || len(s.Last) != 100 {
		t.Fatalf("expected 100-point head/tail, got %d/%d", len(s.First), len(s.Last))
	}
	if s.First[0].Value != 0 {
		t.Errorf("expected head to start at newest point, got %v", s.First[0].Value)
	}
	if s.Last[99].Value != 249 {
		t.Errorf("expected tail to end at oldest point, got %v", s.Last[99].Value)
	}
}

func TestSummarize_Empty(t *testing.T) {
	t.Parallel()

	s := Summarize(nil)
	if s.Summary != "No data points in the requested range." {
		t.Errorf("unexpected empty-series summary: %q", s.Summary)
	}
	if s.First == nil || s.Last == nil {
		t.Error("expected non-nil empty slices")
	}
}
