package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/ironlog/internal/models"
)

// InsertSetLogs batch-inserts completed sets. Returns the count inserted;
// re-sent rows are skipped via ON CONFLICT on the set id.
func (db *DB) InsertSetLogs(ctx context.Context, rows []models.SetLogRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	query := `INSERT INTO set_logs (id, user_id, workout_id, session_name, session_date,
		exercise_name, equipment, set_number, set_type, weight_kg, reps, rpe, rir,
		completed_at) VALUES `
	args := make([]any, 0, len(rows)*14)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		base := i * 14
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7,
			base+8, base+9, base+10, base+11, base+12, base+13, base+14,
		))
		args = append(args, r.ID, r.UserID, r.WorkoutID, r.SessionName, r.SessionDate,
			r.ExerciseName, r.Equipment, r.SetNumber, r.SetType, r.WeightKg,
			r.Reps, r.RPE, r.RIR, r.CompletedAt)
	}

	query += strings.Join(valueStrings, ",") + " ON CONFLICT (id) DO NOTHING"

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting set logs: %w", err)
	}
	return tag.RowsAffected(), nil
}

// QuerySetLogs retrieves set logs in a date range, optionally filtered by
// exercise name (partial, case-insensitive).
func (db *DB) QuerySetLogs(ctx context.Context, start, end time.Time, userID int, exerciseFilter string) ([]models.SetLogRow, error) {
	query := `SELECT id, user_id, workout_id, session_name, session_date, exercise_name,
		 equipment, set_number, set_type, weight_kg, reps, rpe, rir, completed_at
		 FROM set_logs
		 WHERE session_date >= $1 AND session_date < $2 AND user_id = $3`
	args := []any{start, end, userID}
	if exerciseFilter != "" {
		query += ` AND exercise_name ILIKE $4`
		args = append(args, "%"+exerciseFilter+"%")
	}
	query += ` ORDER BY session_date DESC, exercise_name ASC, set_number ASC`

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying set logs: %w", err)
	}
	defer rows.Close()

	var result []models.SetLogRow
	for rows.Next() {
		var r models.SetLogRow
		if err := rows.Scan(&r.ID, &r.UserID, &r.WorkoutID, &r.SessionName, &r.SessionDate,
			&r.ExerciseName, &r.Equipment, &r.SetNumber, &r.SetType, &r.WeightKg,
			&r.Reps, &r.RPE, &r.RIR, &r.CompletedAt); err != nil {
			return nil, fmt.Errorf("scanning set log: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// LatestSessionSets returns the sets of the most recent session in which
// the exercise was performed, ordered by set number. An empty result is
// the normal first-time case, not an error.
func (db *DB) LatestSessionSets(ctx context.Context, userID int, exerciseName string) ([]models.SetLogRow, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, user_id, workout_id, session_name, session_date, exercise_name,
		       equipment, set_number, set_type, weight_kg, reps, rpe, rir, completed_at
		FROM set_logs
		WHERE user_id = $1 AND exercise_name ILIKE $2
		  AND session_date = (
		      SELECT MAX(session_date) FROM set_logs
		      WHERE user_id = $1 AND exercise_name ILIKE $2)
		ORDER BY set_number ASC`,
		userID, exerciseName)
	if err != nil {
		return nil, fmt.Errorf("querying latest session sets: %w", err)
	}
	defer rows.Close()

	var result []models.SetLogRow
	for rows.Next() {
		var r models.SetLogRow
		if err := rows.Scan(&r.ID, &r.UserID, &r.WorkoutID, &r.SessionName, &r.SessionDate,
			&r.ExerciseName, &r.Equipment, &r.SetNumber, &r.SetType, &r.WeightKg,
			&r.Reps, &r.RPE, &r.RIR, &r.CompletedAt); err != nil {
			return nil, fmt.Errorf("scanning latest session set: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// DeleteSetLog removes one logged set by id. Returns whether a row was
// actually deleted.
func (db *DB) DeleteSetLog(ctx context.Context, userID int, id uuid.UUID) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM set_logs WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("deleting set log: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
