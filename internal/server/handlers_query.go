package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/meltforce/ironlog/internal/history"
	"github.com/meltforce/ironlog/internal/models"
)

func (s *Server) handleQuerySetLogs(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	rows, err := s.db.QuerySetLogs(r.Context(), start, end, s.userID(r), r.URL.Query().Get("exercise"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleQueryWorkouts(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	workouts, err := s.db.QueryWorkoutSummaries(r.Context(), start, end, s.userID(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) handlePreviousSession(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name parameter required"})
		return
	}
	rows, err := s.db.LatestSessionSets(r.Context(), s.userID(r), name)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleProgression(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name parameter required"})
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}
	points, err := s.db.GetExerciseProgression(r.Context(), s.userID(r), name, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleDeleteSetLog(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid set ID"})
		return
	}
	deleted, err := s.db.DeleteSetLog(r.Context(), s.userID(r), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "set not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleImport ingests a strength log CSV export and persists every set as
// a log row. Re-imports are idempotent: row IDs are derived from the set's
// identity, so ON CONFLICT skips already-imported sets.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	sessions, err := history.Parse(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	userID := s.userID(r)

	var rows []models.SetLogRow
	for _, sess := range sessions {
		workoutID := deterministicID("workout", sess.Name, sess.Date.Format(time.RFC3339))
		for _, ex := range sess.Exercises {
			for _, set := range ex.Sets {
				setType := "working"
				if set.IsWarmup {
					setType = "warmup"
				}
				var rir *int
				if !set.IsWarmup {
					v := int(set.RIR)
					rir = &v
				}
				rows = append(rows, models.SetLogRow{
					ID: deterministicID("set", sess.Name, sess.Date.Format(time.RFC3339),
						ex.Name, setType, strconv.Itoa(set.Number)),
					UserID:       userID,
					WorkoutID:    workoutID,
					SessionName:  sess.Name,
					SessionDate:  sess.Date,
					ExerciseName: ex.Name,
					Equipment:    ex.Equipment,
					SetNumber:    set.Number,
					SetType:      setType,
					WeightKg:     set.WeightKg,
					Reps:         set.Reps,
					RIR:          rir,
					CompletedAt:  sess.Date,
				})
			}
		}
	}

	inserted, err := s.db.InsertSetLogs(r.Context(), rows)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	s.log.Info("history imported", "sessions", len(sessions), "sets_parsed", len(rows), "sets_inserted", inserted)
	writeJSON(w, http.StatusOK, map[string]any{
		"sessions":     len(sessions),
		"setsParsed":   len(rows),
		"setsInserted": inserted,
	})
}

func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	if s.media == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "media resolver not configured"})
		return
	}
	name := chi.URLParam(r, "exercise")
	ill, err := s.media.Illustration(r.Context(), name)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, ill)
}

// deterministicID builds a stable UUID from identity parts so repeated
// imports of the same export produce identical row IDs.
func deterministicID(parts ...string) uuid.UUID {
	joined := ""
	for i, p := range parts {
		if i > 0 {
			joined += "|"
		}
		joined += p
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(joined))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		// Default: last 30 days
		end = time.Now()
		start = end.AddDate(0, 0, -30)
		return
	}

	start, err = time.Parse(time.RFC3339, startStr)
	if err != nil {
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	if endStr == "" {
		end = time.Now()
	} else {
		end, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			end, err = time.Parse("2006-01-02", endStr)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			// End of day for date-only
			end = end.Add(24 * time.Hour)
		}
	}
	return
}
