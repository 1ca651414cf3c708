package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/meltforce/ironlog/internal/models"
)

// newRouteServer creates an httptest server that routes requests to handler
// functions keyed by path. Verifies the HTTP client sends correct paths and
// query params.
func newRouteServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

// TestQuerySetLogs verifies the client sends the exercise filter and time
// range and parses the JSON array response.
func TestQuerySetLogs(t *testing.T) {
	ts := newRouteServer(t, map[string]http.HandlerFunc{
		"/api/v1/sets": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("exercise"); got != "bench" {
				t.Errorf("exercise=%q, want bench", got)
			}
			if got := r.URL.Query().Get("start"); got == "" {
				t.Error("start param missing")
			}
			writeTestJSON(t, w, []models.SetLogRow{
				{ExerciseName: "Bench Press", WeightKg: 102.5, Reps: 6},
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	rows, err := client.QuerySetLogs(context.Background(), start, end, 1, "bench")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].WeightKg != 102.5 {
		t.Errorf("weightKg=%v, want 102.5", rows[0].WeightKg)
	}
}

// TestLatestSessionSets verifies the previous-session path and name param.
func TestLatestSessionSets(t *testing.T) {
	ts := newRouteServer(t, map[string]http.HandlerFunc{
		"/api/v1/exercises/previous": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("name"); got != "Squat" {
				t.Errorf("name=%q, want Squat", got)
			}
			writeTestJSON(t, w, []models.SetLogRow{{ExerciseName: "Squat", Reps: 5}})
		},
	})
	defer ts.Close()

	rows, err := NewHTTPClient(ts.URL).LatestSessionSets(context.Background(), 1, "Squat")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Reps != 5 {
		t.Errorf("rows = %+v, want one Squat set with 5 reps", rows)
	}
}

// TestGetErrorStatus verifies non-200 responses surface as errors with the
// status code included.
func TestGetErrorStatus(t *testing.T) {
	ts := newRouteServer(t, map[string]http.HandlerFunc{
		"/api/v1/workouts": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
		},
	})
	defer ts.Close()

	_, err := NewHTTPClient(ts.URL).QueryWorkoutSummaries(context.Background(), time.Now().AddDate(0, 0, -7), time.Now(), 1)
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error = %v, want it to mention status 500", err)
	}
}
