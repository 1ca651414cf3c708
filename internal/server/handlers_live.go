package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/meltforce/ironlog/internal/models"
	"github.com/meltforce/ironlog/internal/prescription"
	"github.com/meltforce/ironlog/internal/tracker"
	"github.com/meltforce/ironlog/internal/units"
)

type createWorkoutRequest struct {
	Name      string                      `json:"name"`
	Unit      string                      `json:"unit"`
	Exercises []prescription.ExerciseSpec `json:"exercises"`
}

func (s *Server) handleCreateWorkout(w http.ResponseWriter, r *http.Request) {
	var req createWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if len(req.Exercises) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "at least one exercise required"})
		return
	}
	unit := s.defaultUnit
	if req.Unit != "" {
		unit = units.ParseUnit(req.Unit)
	}

	userID := s.userID(r)

	// Previous-session sets are display context only; a missing history is
	// the normal first-time case, a failing query just degrades it.
	prev := make([][]tracker.PrevSet, len(req.Exercises))
	for i, spec := range req.Exercises {
		rows, err := s.db.LatestSessionSets(r.Context(), userID, spec.Name)
		if err != nil {
			s.log.Warn("previous session lookup failed", "exercise", spec.Name, "error", err)
			continue
		}
		for _, row := range rows {
			if row.SetType == string(prescription.Warmup) {
				continue
			}
			prev[i] = append(prev[i], tracker.PrevSet{WeightKg: row.WeightKg, Reps: row.Reps})
		}
	}

	lw := &liveWorkout{
		w:         tracker.NewWorkout(req.Exercises, prev, unit),
		userID:    userID,
		name:      req.Name,
		startedAt: time.Now(),
	}
	s.live.add(lw)
	s.log.Info("workout started", "workout_id", lw.w.ID, "exercises", len(req.Exercises), "unit", unit)

	lw.mu.Lock()
	defer lw.mu.Unlock()
	writeJSON(w, http.StatusCreated, buildWorkoutView(lw.w))
}

func (s *Server) handleWorkoutState(w http.ResponseWriter, r *http.Request) {
	s.withWorkout(w, r, func(lw *liveWorkout) {
		writeJSON(w, http.StatusOK, buildWorkoutView(lw.w))
	})
}

func (s *Server) handleFinishWorkout(w http.ResponseWriter, r *http.Request) {
	lw, ok := s.lookupWorkout(w, r)
	if !ok {
		return
	}
	lw.mu.Lock()
	rows := finishedRows(lw)
	lw.mu.Unlock()

	inserted, err := s.db.InsertSetLogs(r.Context(), rows)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	s.live.remove(lw.w.ID)
	s.log.Info("workout finished", "workout_id", lw.w.ID, "sets", inserted)
	writeJSON(w, http.StatusOK, map[string]any{
		"workoutId": lw.w.ID,
		"sets":      inserted,
	})
}

// finishedRows freezes every completed set into a persistence row. Caller
// holds the workout lock.
func finishedRows(lw *liveWorkout) []models.SetLogRow {
	var rows []models.SetLogRow
	for _, sess := range lw.w.Sessions() {
		for _, c := range sess.Completed() {
			rows = append(rows, models.SetLogRow{
				ID:           c.ID,
				UserID:       lw.userID,
				WorkoutID:    lw.w.ID,
				SessionName:  lw.name,
				SessionDate:  lw.startedAt,
				ExerciseName: sess.Spec.Name,
				Equipment:    sess.Spec.Equipment,
				SetNumber:    c.SetNumber,
				SetType:      string(c.Type),
				WeightKg:     c.WeightKg,
				Reps:         c.Reps,
				RPE:          c.RPE,
				RIR:          c.RIR,
				CompletedAt:  c.CompletedAt,
			})
		}
	}
	return rows
}

func (s *Server) handleToggleUnit(w http.ResponseWriter, r *http.Request) {
	s.withWorkout(w, r, func(lw *liveWorkout) {
		lw.w.ToggleUnit()
		writeJSON(w, http.StatusOK, buildWorkoutView(lw.w))
	})
}

func (s *Server) handleMinimize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Minimized bool `json:"minimized"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	s.withWorkout(w, r, func(lw *liveWorkout) {
		lw.w.SetMinimized(req.Minimized)
		writeJSON(w, http.StatusOK, buildWorkoutView(lw.w))
	})
}

func (s *Server) handleViewNext(w http.ResponseWriter, r *http.Request) {
	s.withWorkout(w, r, func(lw *liveWorkout) {
		lw.w.ViewNext()
		writeJSON(w, http.StatusOK, buildWorkoutView(lw.w))
	})
}

func (s *Server) handleViewPrev(w http.ResponseWriter, r *http.Request) {
	s.withWorkout(w, r, func(lw *liveWorkout) {
		lw.w.ViewPrev()
		writeJSON(w, http.StatusOK, buildWorkoutView(lw.w))
	})
}

func (s *Server) handleAdvanceExercise(w http.ResponseWriter, r *http.Request) {
	s.withWorkout(w, r, func(lw *liveWorkout) {
		lw.w.AdvanceExercise()
		writeJSON(w, http.StatusOK, buildWorkoutView(lw.w))
	})
}

func (s *Server) handleUnitOverride(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Unit string `json:"unit"` // empty string clears the override
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	var override *units.Unit
	if req.Unit != "" {
		u := units.ParseUnit(req.Unit)
		override = &u
	}
	s.withExercise(w, r, func(lw *liveWorkout, idx int, _ *tracker.ExerciseSession) {
		lw.w.SetUnitOverride(idx, override)
		writeJSON(w, http.StatusOK, buildWorkoutView(lw.w))
	})
}

func (s *Server) handleCompleteSet(w http.ResponseWriter, r *http.Request) {
	s.withExercise(w, r, func(lw *liveWorkout, _ int, sess *tracker.ExerciseSession) {
		if sess.CompleteCurrent() == nil {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "no current set to complete"})
			return
		}
		writeJSON(w, http.StatusOK, buildWorkoutView(lw.w))
	})
}

func (s *Server) handleUncompleteSet(w http.ResponseWriter, r *http.Request) {
	s.withExercise(w, r, func(lw *liveWorkout, _ int, sess *tracker.ExerciseSession) {
		sess.UncompleteLast()
		writeJSON(w, http.StatusOK, buildWorkoutView(lw.w))
	})
}

func (s *Server) handleAddSet(w http.ResponseWriter, r *http.Request) {
	s.withExercise(w, r, func(lw *liveWorkout, _ int, sess *tracker.ExerciseSession) {
		sess.AddSet()
		writeJSON(w, http.StatusOK, buildWorkoutView(lw.w))
	})
}

func (s *Server) handleRemoveSet(w http.ResponseWriter, r *http.Request) {
	s.withExercise(w, r, func(lw *liveWorkout, _ int, sess *tracker.ExerciseSession) {
		sess.RemoveSet()
		writeJSON(w, http.StatusOK, buildWorkoutView(lw.w))
	})
}

type setInputRequest struct {
	Weight *string `json:"weight"`
	Reps   *string `json:"reps"`
	RPE    *int    `json:"rpe"`
	RIR    *int    `json:"rir"`
}

func (s *Server) handleSetInput(w http.ResponseWriter, r *http.Request) {
	var req setInputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	s.withRow(w, r, func(lw *liveWorkout, idx, row int, sess *tracker.ExerciseSession) {
		u := lw.w.UnitFor(idx)
		if req.Weight != nil {
			sess.UpdateWeightInput(row, *req.Weight, u)
		}
		if req.Reps != nil {
			sess.UpdateRepsInput(row, *req.Reps)
		}
		if req.RPE != nil {
			sess.SetRPE(row, *req.RPE)
		}
		if req.RIR != nil {
			sess.SetRIR(row, *req.RIR)
		}
		writeJSON(w, http.StatusOK, buildWorkoutView(lw.w))
	})
}

func (s *Server) handleDeleteSet(w http.ResponseWriter, r *http.Request) {
	s.withRow(w, r, func(lw *liveWorkout, _, row int, sess *tracker.ExerciseSession) {
		sess.DeleteSet(row)
		writeJSON(w, http.StatusOK, buildWorkoutView(lw.w))
	})
}

func (s *Server) handleBeginEdit(w http.ResponseWriter, r *http.Request) {
	s.withRow(w, r, func(lw *liveWorkout, _, row int, sess *tracker.ExerciseSession) {
		sess.BeginEdit(row)
		if sess.EditingIndex() != row {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "set is not editable"})
			return
		}
		writeJSON(w, http.StatusOK, buildWorkoutView(lw.w))
	})
}

func (s *Server) handleEditInput(w http.ResponseWriter, r *http.Request) {
	var req setInputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	s.withExercise(w, r, func(lw *liveWorkout, idx int, sess *tracker.ExerciseSession) {
		if sess.EditingIndex() < 0 {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "no edit in progress"})
			return
		}
		if req.Weight != nil {
			sess.UpdateEditWeight(*req.Weight, lw.w.UnitFor(idx))
		}
		if req.Reps != nil {
			sess.UpdateEditReps(*req.Reps)
		}
		if req.RPE != nil {
			sess.UpdateEditRPE(*req.RPE)
		}
		if req.RIR != nil {
			sess.UpdateEditRIR(*req.RIR)
		}
		writeJSON(w, http.StatusOK, buildWorkoutView(lw.w))
	})
}

func (s *Server) handleSaveEdit(w http.ResponseWriter, r *http.Request) {
	s.withExercise(w, r, func(lw *liveWorkout, _ int, sess *tracker.ExerciseSession) {
		if sess.EditingIndex() < 0 {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "no edit in progress"})
			return
		}
		if !sess.SaveEdit() {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "weight and reps must be positive"})
			return
		}
		writeJSON(w, http.StatusOK, buildWorkoutView(lw.w))
	})
}

func (s *Server) handleCancelEdit(w http.ResponseWriter, r *http.Request) {
	s.withExercise(w, r, func(lw *liveWorkout, _ int, sess *tracker.ExerciseSession) {
		sess.CancelEdit()
		writeJSON(w, http.StatusOK, buildWorkoutView(lw.w))
	})
}

// lookupWorkout resolves the {id} route param to a live workout, writing
// the error response itself when the ID is bad or unknown.
func (s *Server) lookupWorkout(w http.ResponseWriter, r *http.Request) (*liveWorkout, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return nil, false
	}
	lw, ok := s.live.get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return nil, false
	}
	return lw, true
}

func (s *Server) withWorkout(w http.ResponseWriter, r *http.Request, fn func(*liveWorkout)) {
	lw, ok := s.lookupWorkout(w, r)
	if !ok {
		return
	}
	lw.mu.Lock()
	defer lw.mu.Unlock()
	fn(lw)
}

func (s *Server) withExercise(w http.ResponseWriter, r *http.Request, fn func(*liveWorkout, int, *tracker.ExerciseSession)) {
	lw, ok := s.lookupWorkout(w, r)
	if !ok {
		return
	}
	idx, err := strconv.Atoi(chi.URLParam(r, "idx"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise index"})
		return
	}
	lw.mu.Lock()
	defer lw.mu.Unlock()
	sess := lw.w.Session(idx)
	if sess == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "exercise not found"})
		return
	}
	fn(lw, idx, sess)
}

func (s *Server) withRow(w http.ResponseWriter, r *http.Request, fn func(*liveWorkout, int, int, *tracker.ExerciseSession)) {
	row, err := strconv.Atoi(chi.URLParam(r, "row"))
	if err != nil || row < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid set index"})
		return
	}
	s.withExercise(w, r, func(lw *liveWorkout, idx int, sess *tracker.ExerciseSession) {
		fn(lw, idx, row, sess)
	})
}
