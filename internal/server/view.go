package server

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/meltforce/ironlog/internal/prescription"
	"github.com/meltforce/ironlog/internal/tracker"
	"github.com/meltforce/ironlog/internal/units"
)

// workoutView is the JSON projection of a live workout. All weights are
// pre-converted to the effective display unit of their exercise so clients
// never do unit math.
type workoutView struct {
	ID               uuid.UUID      `json:"id"`
	Unit             units.Unit     `json:"unit"`
	Minimized        bool           `json:"minimized"`
	PerformingIndex  int            `json:"performingIndex"`
	ViewingIndex     int            `json:"viewingIndex"`
	IsViewingCurrent bool           `json:"isViewingCurrent"`
	CanGoPrev        bool           `json:"canGoPrev"`
	CanGoNext        bool           `json:"canGoNext"`
	Done             bool           `json:"done"`
	Exercises        []exerciseView `json:"exercises"`
}

type exerciseView struct {
	Name             string                 `json:"name"`
	Equipment        string                 `json:"equipment"`
	Unit             units.Unit             `json:"unit"`
	RestSeconds      int                    `json:"restSeconds"`
	DurationSeconds  *int                   `json:"durationSeconds,omitempty"`
	TotalSets        int                    `json:"totalSets"`
	CompletedCount   int                    `json:"completedCount"`
	CurrentIndex     int                    `json:"currentIndex"`
	AllSetsCompleted bool                   `json:"allSetsCompleted"`
	EditingIndex     int                    `json:"editingIndex"` // -1 when no edit is open
	EditBuffer       *editView              `json:"editBuffer,omitempty"`
	Rows             []setRowView           `json:"rows"`
	Completed        []tracker.CompletedSet `json:"completed"`
}

// setRowView decorates the immutable set snapshot with its derived state
// and display strings in the exercise's effective unit.
type setRowView struct {
	tracker.ActiveSet
	State         tracker.SetState `json:"state"`
	WeightDisplay string           `json:"weightDisplay"`
	TargetDisplay string           `json:"targetDisplay"`
	PrevDisplay   string           `json:"prevDisplay,omitempty"`
}

type editView struct {
	WeightKg      float64 `json:"weightKg"`
	WeightDisplay string  `json:"weightDisplay"`
	Reps          int     `json:"reps"`
	RPE           *int    `json:"rpe,omitempty"`
	RIR           *int    `json:"rir,omitempty"`
}

func buildWorkoutView(w *tracker.Workout) workoutView {
	view := workoutView{
		ID:               w.ID,
		Unit:             w.Unit,
		Minimized:        w.Minimized,
		PerformingIndex:  w.PerformingIndex(),
		ViewingIndex:     w.ViewingIndex(),
		IsViewingCurrent: w.IsViewingCurrent(),
		CanGoPrev:        w.CanGoPrev(),
		CanGoNext:        w.CanGoNext(),
		Done:             w.Done(),
	}
	for i, sess := range w.Sessions() {
		view.Exercises = append(view.Exercises, buildExerciseView(sess, w.UnitFor(i)))
	}
	return view
}

func buildExerciseView(sess *tracker.ExerciseSession, u units.Unit) exerciseView {
	spec := sess.Spec
	ev := exerciseView{
		Name:             spec.Name,
		Equipment:        spec.Equipment,
		Unit:             u,
		RestSeconds:      spec.RestSeconds,
		DurationSeconds:  spec.DurationSeconds,
		TotalSets:        sess.TotalSets(),
		CompletedCount:   sess.CompletedCount(),
		CurrentIndex:     sess.CurrentIndex(),
		AllSetsCompleted: sess.AllSetsCompleted(),
		EditingIndex:     sess.EditingIndex(),
		Completed:        sess.Completed(),
	}
	if ev.EditingIndex >= 0 {
		weightKg, reps, rpe, rir := sess.EditBuffer()
		ev.EditBuffer = &editView{
			WeightKg:      weightKg,
			WeightDisplay: units.FormatWeight(units.FromKg(weightKg, u)),
			Reps:          reps,
			RPE:           rpe,
			RIR:           rir,
		}
	}
	targets := sess.Targets()
	for i := 0; i < sess.TotalSets(); i++ {
		row := sess.Row(i)
		rv := setRowView{
			ActiveSet:     row,
			State:         sess.StateOf(i),
			WeightDisplay: units.FormatWeight(units.FromKg(row.WeightKg, u)),
			TargetDisplay: prescription.NoTargetPlaceholder,
		}
		if i < len(targets) {
			rv.TargetDisplay = prescription.TargetDisplay(targets[i], u)
		}
		if row.PrevWeightKg != nil && row.PrevReps != nil {
			rv.PrevDisplay = fmt.Sprintf("%s %s × %d",
				units.FormatWeight(units.FromKg(*row.PrevWeightKg, u)), u, *row.PrevReps)
		}
		ev.Rows = append(ev.Rows, rv)
	}
	return ev
}
