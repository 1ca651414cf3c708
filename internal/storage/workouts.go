package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/meltforce/ironlog/internal/models"
)

// QueryWorkoutSummaries aggregates logged workouts in a date range: one row
// per workout with set, rep, and tonnage totals (working sets only).
func (db *DB) QueryWorkoutSummaries(ctx context.Context, start, end time.Time, userID int) ([]models.WorkoutSummaryRow, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT workout_id, MIN(session_name), MIN(session_date),
		       COUNT(DISTINCT exercise_name),
		       COUNT(*),
		       COALESCE(SUM(reps), 0),
		       COALESCE(SUM(weight_kg * reps), 0)
		FROM set_logs
		WHERE session_date >= $1 AND session_date < $2 AND user_id = $3
		  AND set_type <> 'warmup'
		GROUP BY workout_id
		ORDER BY MIN(session_date) DESC`,
		start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying workout summaries: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutSummaryRow
	for rows.Next() {
		var r models.WorkoutSummaryRow
		if err := rows.Scan(&r.WorkoutID, &r.SessionName, &r.SessionDate,
			&r.Exercises, &r.Sets, &r.TotalReps, &r.TonnageKg); err != nil {
			return nil, fmt.Errorf("scanning workout summary: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// GetExerciseProgression returns the best working set per session for an
// exercise, most recent first, limited to the last `limit` sessions.
func (db *DB) GetExerciseProgression(ctx context.Context, userID int, exerciseName string, limit int) ([]models.ProgressionPoint, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.Pool.Query(ctx, `
		SELECT session_date,
		       MAX(weight_kg),
		       (ARRAY_AGG(reps ORDER BY weight_kg DESC, reps DESC))[1],
		       COUNT(*)
		FROM set_logs
		WHERE user_id = $1 AND exercise_name ILIKE $2 AND set_type <> 'warmup'
		GROUP BY session_date
		ORDER BY session_date DESC
		LIMIT $3`,
		userID, "%"+exerciseName+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("querying exercise progression: %w", err)
	}
	defer rows.Close()

	var result []models.ProgressionPoint
	for rows.Next() {
		var p models.ProgressionPoint
		if err := rows.Scan(&p.SessionDate, &p.BestWeightKg, &p.RepsAtBest, &p.Sets); err != nil {
			return nil, fmt.Errorf("scanning progression point: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}
