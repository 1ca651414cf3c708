// Package models holds the row types shared between the storage layer and
// the API surface.
package models

import (
	"time"

	"github.com/google/uuid"
)

// SetLogRow is one completed set ready for the set_logs table. Weight is
// always canonical kg; display-unit conversion never crosses persistence.
type SetLogRow struct {
	ID           uuid.UUID `json:"id"`
	UserID       int       `json:"userId"`
	WorkoutID    uuid.UUID `json:"workoutId"`
	SessionName  string    `json:"sessionName"`
	SessionDate  time.Time `json:"sessionDate"`
	ExerciseName string    `json:"exerciseName"`
	Equipment    string    `json:"equipment"`
	SetNumber    int       `json:"setNumber"`
	SetType      string    `json:"setType"`
	WeightKg     float64   `json:"weightKg"`
	Reps         int       `json:"reps"`
	RPE          *int      `json:"rpe,omitempty"`
	RIR          *int      `json:"rir,omitempty"`
	CompletedAt  time.Time `json:"completedAt"`
}

// WorkoutSummaryRow aggregates one logged workout for listing.
type WorkoutSummaryRow struct {
	WorkoutID   uuid.UUID `json:"workoutId"`
	SessionName string    `json:"sessionName"`
	SessionDate time.Time `json:"sessionDate"`
	Exercises   int       `json:"exercises"`
	Sets        int       `json:"sets"`
	TotalReps   int       `json:"totalReps"`
	TonnageKg   float64   `json:"tonnageKg"`
}

// ProgressionPoint is the best working set of one session for an exercise,
// used for progression queries.
type ProgressionPoint struct {
	SessionDate  time.Time `json:"sessionDate"`
	BestWeightKg float64   `json:"bestWeightKg"`
	RepsAtBest   int       `json:"repsAtBest"`
	Sets         int       `json:"sets"`
}
