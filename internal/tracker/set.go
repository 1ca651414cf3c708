// Package tracker holds the live state of a workout as it is performed:
// per-set lifecycle within each exercise, the completed-set log, and the
// workout-level coordination between the exercise being performed and the
// exercise being viewed.
package tracker

import (
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/ironlog/internal/prescription"
)

// SetState is the derived lifecycle state of one set row. It is never
// stored; it is recomputed from the completed list on every read.
type SetState string

const (
	StatePending   SetState = "pending"
	StateCurrent   SetState = "current"
	StateCompleted SetState = "completed"
	StateEditing   SetState = "editing"
)

// Bounds for subjective effort ratings.
const (
	RPEMin = 1
	RPEMax = 10
	RIRMin = 0
	RIRMax = 5
)

// ActiveSet is an immutable snapshot of one set as it is being performed.
// Sessions never mutate a snapshot in place; every change produces a new
// copy with overrides, so a holder of an old snapshot never observes a
// later edit. Actual weight and reps default to the target until edited.
// All weights are canonical kg.
type ActiveSet struct {
	ID             uuid.UUID            `json:"id"`
	SetNumber      int                  `json:"setNumber"` // 1-based
	Type           prescription.SetType `json:"setType"`
	Label          string               `json:"label"`
	Equipment      string               `json:"equipment"`
	TargetWeightKg *float64             `json:"targetWeightKg,omitempty"`
	TargetReps     int                  `json:"targetReps"`
	TargetRIR      *int                 `json:"targetRir,omitempty"`
	WeightKg       float64              `json:"weightKg"`
	Reps           int                  `json:"reps"`
	RPE            *int                 `json:"rpe,omitempty"`
	RIR            *int                 `json:"rir,omitempty"`
	PrevWeightKg   *float64             `json:"prevWeightKg,omitempty"`
	PrevReps       *int                 `json:"prevReps,omitempty"`
}

// withWeight returns a copy with a new actual weight.
func (s ActiveSet) withWeight(kg float64) ActiveSet {
	s.WeightKg = kg
	return s
}

// withReps returns a copy with a new actual rep count.
func (s ActiveSet) withReps(reps int) ActiveSet {
	s.Reps = reps
	return s
}

// withRPE returns a copy with a new RPE rating.
func (s ActiveSet) withRPE(rpe int) ActiveSet {
	s.RPE = &rpe
	return s
}

// withRIR returns a copy with a new RIR rating.
func (s ActiveSet) withRIR(rir int) ActiveSet {
	s.RIR = &rir
	return s
}

// CompletedSet is the frozen record of a finished set. Immutable after
// creation: it may be replaced via an explicit edit or removed via an
// explicit delete, never patched.
type CompletedSet struct {
	ID          uuid.UUID            `json:"id"`
	SetNumber   int                  `json:"setNumber"`
	Type        prescription.SetType `json:"setType"`
	WeightKg    float64              `json:"weightKg"`
	Reps        int                  `json:"reps"`
	RPE         *int                 `json:"rpe,omitempty"`
	RIR         *int                 `json:"rir,omitempty"`
	CompletedAt time.Time            `json:"completedAt"`
}

// PrevSet is a read-only previous-session record, aligned to the current
// session by set index. Used for display and autofill only; it never
// feeds target computation.
type PrevSet struct {
	WeightKg float64 `json:"weightKg"`
	Reps     int     `json:"reps"`
}
