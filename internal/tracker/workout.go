package tracker

import (
	"github.com/google/uuid"
	"github.com/meltforce/ironlog/internal/prescription"
	"github.com/meltforce/ironlog/internal/units"
)

// Workout coordinates the exercise sessions of one workout: which exercise
// is being performed, which is being viewed (these diverge while browsing),
// the global display unit, and the minimized card flag. It reports derived
// booleans only; advancing the workout is always an explicit call.
type Workout struct {
	ID        uuid.UUID
	Unit      units.Unit
	Minimized bool

	sessions   []*ExerciseSession
	performing int
	viewing    int
}

// NewWorkout builds a workout from ordered exercise specs with per-exercise
// previous-session history (prev may be shorter than specs or hold nils).
func NewWorkout(specs []prescription.ExerciseSpec, prev [][]PrevSet, unit units.Unit) *Workout {
	w := &Workout{
		ID:   uuid.New(),
		Unit: unit,
	}
	for i, spec := range specs {
		var p []PrevSet
		if i < len(prev) {
			p = prev[i]
		}
		w.sessions = append(w.sessions, NewExerciseSession(spec, p))
	}
	return w
}

// Sessions returns the ordered exercise sessions.
func (w *Workout) Sessions() []*ExerciseSession { return w.sessions }

// Session returns the session at index i, or nil when out of range.
func (w *Workout) Session(i int) *ExerciseSession {
	if i < 0 || i >= len(w.sessions) {
		return nil
	}
	return w.sessions[i]
}

// PerformingIndex returns the index of the exercise currently being
// performed.
func (w *Workout) PerformingIndex() int { return w.performing }

// ViewingIndex returns the index of the exercise currently on screen.
func (w *Workout) ViewingIndex() int { return w.viewing }

// IsViewingCurrent reports whether the viewed exercise is the one being
// performed. Set transitions are only meaningful while this holds.
func (w *Workout) IsViewingCurrent() bool { return w.viewing == w.performing }

// CanGoPrev reports whether backward navigation is possible.
func (w *Workout) CanGoPrev() bool { return w.viewing > 0 }

// CanGoNext reports whether forward navigation is possible.
func (w *Workout) CanGoNext() bool { return w.viewing < len(w.sessions)-1 }

// ViewPrev moves the viewed exercise back one. No-op at the first.
func (w *Workout) ViewPrev() {
	if w.CanGoPrev() {
		w.viewing--
	}
}

// ViewNext moves the viewed exercise forward one. No-op at the last.
func (w *Workout) ViewNext() {
	if w.CanGoNext() {
		w.viewing++
	}
}

// AdvanceExercise moves the performing marker to the next exercise and
// snaps the view to it. No-op on the last exercise.
func (w *Workout) AdvanceExercise() {
	if w.performing < len(w.sessions)-1 {
		w.performing++
		w.viewing = w.performing
	}
}

// SetMinimized flips the minimized display flag. Purely presentational;
// it never affects set state.
func (w *Workout) SetMinimized(min bool) { w.Minimized = min }

// UnitFor resolves the display unit for the exercise at index i, honoring
// the per-exercise override.
func (w *Workout) UnitFor(i int) units.Unit {
	if s := w.Session(i); s != nil {
		return s.Unit(w.Unit)
	}
	return w.Unit
}

// ToggleUnit flips the workout-level display unit. Exercises with a local
// override are unaffected.
func (w *Workout) ToggleUnit() {
	if w.Unit == units.KG {
		w.Unit = units.LB
	} else {
		w.Unit = units.KG
	}
}

// SetUnitOverride sets or clears (nil) the local unit override for the
// exercise at index i without touching the workout-level preference.
func (w *Workout) SetUnitOverride(i int, u *units.Unit) {
	if s := w.Session(i); s != nil {
		s.Override = u
	}
}

// Done reports whether every exercise's sets are completed.
func (w *Workout) Done() bool {
	for _, s := range w.sessions {
		if !s.AllSetsCompleted() {
			return false
		}
	}
	return len(w.sessions) > 0
}
