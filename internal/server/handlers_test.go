package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/ironlog/internal/models"
	"github.com/meltforce/ironlog/internal/units"
)

// stubStore records inserts and serves canned query results, so handler
// tests run without Postgres.
type stubStore struct {
	inserted []models.SetLogRow
	latest   []models.SetLogRow
}

func (s *stubStore) InsertSetLogs(_ context.Context, rows []models.SetLogRow) (int64, error) {
	s.inserted = append(s.inserted, rows...)
	return int64(len(rows)), nil
}

func (s *stubStore) QuerySetLogs(context.Context, time.Time, time.Time, int, string) ([]models.SetLogRow, error) {
	return s.inserted, nil
}

func (s *stubStore) LatestSessionSets(context.Context, int, string) ([]models.SetLogRow, error) {
	return s.latest, nil
}

func (s *stubStore) DeleteSetLog(context.Context, int, uuid.UUID) (bool, error) {
	return false, nil
}

func (s *stubStore) QueryWorkoutSummaries(context.Context, time.Time, time.Time, int) ([]models.WorkoutSummaryRow, error) {
	return nil, nil
}

func (s *stubStore) GetExerciseProgression(context.Context, int, string, int) ([]models.ProgressionPoint, error) {
	return nil, nil
}

func (s *stubStore) GetOrCreateUser(context.Context, string, string) (int, error) {
	return 1, nil
}

func newTestServer(store Store) *Server {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store, nil, "test-key", units.KG, log)
}

func doJSON(t *testing.T, s *Server, method, path string, body any) (*httptest.ResponseRecorder, workoutView) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	var view workoutView
	if rec.Code < 300 {
		if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
	}
	return rec, view
}

func createWorkout(t *testing.T, s *Server) workoutView {
	t.Helper()
	rec, view := doJSON(t, s, http.MethodPost, "/api/v1/live", map[string]any{
		"name": "Push Day",
		"exercises": []map[string]any{
			{"name": "Bench Press", "equipment": "Barbell", "targetWeightKg": 100.0, "targetReps": 10, "sets": 3},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	return view
}

// TestCreateWorkout verifies the create endpoint builds the full set plan
// and reports the first row as current.
func TestCreateWorkout(t *testing.T) {
	s := newTestServer(&stubStore{})
	view := createWorkout(t, s)

	if len(view.Exercises) != 1 {
		t.Fatalf("exercises = %d, want 1", len(view.Exercises))
	}
	ex := view.Exercises[0]
	if ex.TotalSets != 5 {
		t.Errorf("totalSets = %d, want 5 (2 warmups + 3 working)", ex.TotalSets)
	}
	if got := ex.Rows[0].State; got != "current" {
		t.Errorf("rows[0].state = %q, want %q", got, "current")
	}
	if got := ex.Rows[1].State; got != "pending" {
		t.Errorf("rows[1].state = %q, want %q", got, "pending")
	}
}

// TestCompleteAdvancesCurrent verifies completing a set through the API
// moves the current marker to the next row.
func TestCompleteAdvancesCurrent(t *testing.T) {
	s := newTestServer(&stubStore{})
	view := createWorkout(t, s)

	rec, view := doJSON(t, s, http.MethodPost, "/api/v1/live/"+view.ID.String()+"/exercises/0/sets/complete", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("complete status = %d: %s", rec.Code, rec.Body.String())
	}
	ex := view.Exercises[0]
	if got := ex.Rows[0].State; got != "completed" {
		t.Errorf("rows[0].state = %q, want %q", got, "completed")
	}
	if got := ex.Rows[1].State; got != "current" {
		t.Errorf("rows[1].state = %q, want %q", got, "current")
	}
	if ex.CompletedCount != 1 {
		t.Errorf("completedCount = %d, want 1", ex.CompletedCount)
	}
}

// TestSetInputConvertsUnit verifies weight typed under an lbs override is
// stored as canonical kg.
func TestSetInputConvertsUnit(t *testing.T) {
	s := newTestServer(&stubStore{})
	view := createWorkout(t, s)
	base := "/api/v1/live/" + view.ID.String() + "/exercises/0"

	rec, _ := doJSON(t, s, http.MethodPost, base+"/unit", map[string]any{"unit": "lbs"})
	if rec.Code != http.StatusOK {
		t.Fatalf("unit override status = %d: %s", rec.Code, rec.Body.String())
	}
	weight := "220.462"
	rec, view = doJSON(t, s, http.MethodPost, base+"/sets/2/input", map[string]any{"weight": weight})
	if rec.Code != http.StatusOK {
		t.Fatalf("input status = %d: %s", rec.Code, rec.Body.String())
	}
	got := view.Exercises[0].Rows[2].WeightKg
	if math.Abs(got-100) > 0.001 {
		t.Errorf("weightKg = %v, want ~100", got)
	}
}

// TestFinishPersistsCompletedSets verifies finishing a workout writes one
// log row per completed set and drops the live session.
func TestFinishPersistsCompletedSets(t *testing.T) {
	store := &stubStore{}
	s := newTestServer(store)
	view := createWorkout(t, s)
	base := "/api/v1/live/" + view.ID.String()

	for i := 0; i < 2; i++ {
		rec, _ := doJSON(t, s, http.MethodPost, base+"/exercises/0/sets/complete", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("complete status = %d", rec.Code)
		}
	}

	rec, _ := doJSON(t, s, http.MethodPost, base+"/finish", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("finish status = %d: %s", rec.Code, rec.Body.String())
	}
	if len(store.inserted) != 2 {
		t.Fatalf("inserted rows = %d, want 2", len(store.inserted))
	}
	row := store.inserted[0]
	if row.ExerciseName != "Bench Press" || row.SessionName != "Push Day" {
		t.Errorf("row identity = %q/%q, want Bench Press/Push Day", row.ExerciseName, row.SessionName)
	}
	if row.SetType != "warmup" {
		t.Errorf("first row setType = %q, want warmup", row.SetType)
	}

	rec, _ = doJSON(t, s, http.MethodGet, base, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("state after finish = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

// TestSaveEditRejectsInvalid verifies a zero-weight edit is refused and the
// edit stays open.
func TestSaveEditRejectsInvalid(t *testing.T) {
	s := newTestServer(&stubStore{})
	view := createWorkout(t, s)
	base := "/api/v1/live/" + view.ID.String() + "/exercises/0"

	doJSON(t, s, http.MethodPost, base+"/sets/complete", nil)
	rec, _ := doJSON(t, s, http.MethodPost, base+"/sets/0/edit", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("begin edit status = %d: %s", rec.Code, rec.Body.String())
	}
	doJSON(t, s, http.MethodPost, base+"/edit/input", map[string]any{"weight": "0"})
	rec, _ = doJSON(t, s, http.MethodPost, base+"/edit/save", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("save status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}

	rec, view = doJSON(t, s, http.MethodGet, "/api/v1/live/"+view.ID.String(), nil)
	if got := view.Exercises[0].EditingIndex; got != 0 {
		t.Errorf("editingIndex after rejected save = %d, want 0", got)
	}
}

// TestWorkoutNotFound verifies unknown and malformed workout IDs map to
// 404 and 400.
func TestWorkoutNotFound(t *testing.T) {
	s := newTestServer(&stubStore{})

	rec, _ := doJSON(t, s, http.MethodGet, "/api/v1/live/"+uuid.NewString(), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown ID status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	rec, _ = doJSON(t, s, http.MethodGet, "/api/v1/live/not-a-uuid", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad ID status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

// TestCreateSeedsPreviousSets verifies latest-session history shows up on
// the matching set rows.
func TestCreateSeedsPreviousSets(t *testing.T) {
	store := &stubStore{latest: []models.SetLogRow{
		{ExerciseName: "Bench Press", SetType: "working", WeightKg: 95, Reps: 9},
		{ExerciseName: "Bench Press", SetType: "working", WeightKg: 95, Reps: 8},
	}}
	s := newTestServer(store)
	view := createWorkout(t, s)

	rows := view.Exercises[0].Rows
	if rows[0].PrevWeightKg != nil {
		t.Errorf("warmup row has prev data, want none")
	}
	if rows[2].PrevWeightKg == nil || *rows[2].PrevWeightKg != 95 {
		t.Errorf("first working row prev weight = %v, want 95", rows[2].PrevWeightKg)
	}
	if rows[2].PrevDisplay == "" {
		t.Errorf("first working row prevDisplay empty, want rendered string")
	}
}

const sampleImport = `"Push · Day 1";"2026-02-17 5:04 h";"1:12 hr"
"1. Bench Press · Barbell · 6 reps";"WU1 · 37,5 kg · 9 reps<br>WU2 · 72,5 kg · 7 reps"
#;KG;REPS;RIR
1;102,5;6;0
2;102,5;5;0
`

// TestImportRequiresAPIKey verifies the import route rejects requests
// without a valid key.
func TestImportRequiresAPIKey(t *testing.T) {
	s := newTestServer(&stubStore{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/import", strings.NewReader(sampleImport))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

// TestImportPersistsSets verifies a CSV export is parsed and every set,
// warmups included, becomes a log row with a stable ID.
func TestImportPersistsSets(t *testing.T) {
	store := &stubStore{}
	s := newTestServer(store)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/import", strings.NewReader(sampleImport))
	req.Header.Set("X-API-Key", "test-key")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if len(store.inserted) != 4 {
		t.Fatalf("inserted rows = %d, want 4 (2 warmups + 2 working)", len(store.inserted))
	}
	warmups := 0
	for _, row := range store.inserted {
		if row.SetType == "warmup" {
			warmups++
			if row.RIR != nil {
				t.Errorf("warmup row has RIR %d, want none", *row.RIR)
			}
		}
	}
	if warmups != 2 {
		t.Errorf("warmup rows = %d, want 2", warmups)
	}

	// Same export again yields identical IDs for dedup on insert.
	first := store.inserted[0].ID
	store.inserted = nil
	req = httptest.NewRequest(http.MethodPost, "/api/v1/import", strings.NewReader(sampleImport))
	req.Header.Set("X-API-Key", "test-key")
	s.ServeHTTP(httptest.NewRecorder(), req)
	if store.inserted[0].ID != first {
		t.Errorf("re-import ID = %v, want %v", store.inserted[0].ID, first)
	}
}
