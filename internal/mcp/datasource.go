package mcp

import (
	"context"
	"time"

	"github.com/meltforce/ironlog/internal/models"
	"github.com/meltforce/ironlog/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. *storage.DB satisfies
// it; tests supply fakes.
type DataSource interface {
	QuerySetLogs(ctx context.Context, start, end time.Time, userID int, exerciseFilter string) ([]models.SetLogRow, error)
	LatestSessionSets(ctx context.Context, userID int, exerciseName string) ([]models.SetLogRow, error)
	GetExerciseProgression(ctx context.Context, userID int, exerciseName string, limit int) ([]models.ProgressionPoint, error)
	QueryWorkoutSummaries(ctx context.Context, start, end time.Time, userID int) ([]models.WorkoutSummaryRow, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
