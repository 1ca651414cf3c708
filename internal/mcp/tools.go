package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/ironlog/internal/prescription"
	"github.com/meltforce/ironlog/internal/units"
)

// defaultTimeRange returns start/end defaulting to the last 30 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -30)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var toolGetSetLogs = mcp.NewTool("get_set_logs",
	mcp.WithDescription("Query logged sets. Returns weight (kg), reps, RPE/RIR, and set type for every set in the range."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
	mcp.WithString("exercise", mcp.Description("Filter by exercise name (partial match, e.g. 'bench press')")),
)

var toolGetPreviousSession = mcp.NewTool("get_previous_session",
	mcp.WithDescription("Get every set of the most recent session that included the given exercise, ordered by set number."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exact exercise name (case-insensitive)")),
)

var toolGetProgression = mcp.NewTool("get_exercise_progression",
	mcp.WithDescription("Session-by-session progression for an exercise: the best working set of each session with its rep count."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exact exercise name (case-insensitive)")),
	mcp.WithNumber("limit", mcp.Description("Number of sessions to return, most recent first. Defaults to 10.")),
)

var toolGetWorkoutSummaries = mcp.NewTool("get_workout_summaries",
	mcp.WithDescription("Per-workout aggregates: exercise count, working sets, total reps, and tonnage (kg lifted)."),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
)

var toolPrescribeSets = mcp.NewTool("prescribe_sets",
	mcp.WithDescription("Build a set plan for an exercise: warmups, working sets with per-set RIR targets, and display strings. Pure computation, nothing is logged."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name")),
	mcp.WithString("equipment", mcp.Description("Equipment (e.g. Barbell, Dumbbell, Machine); drives weight increment resolution")),
	mcp.WithNumber("weight_kg", mcp.Description("Target working weight in kilograms")),
	mcp.WithNumber("reps", mcp.Description("Target reps per working set. Defaults to 10.")),
	mcp.WithNumber("sets", mcp.Description("Number of working sets. Defaults to 3.")),
	mcp.WithString("unit", mcp.Description("Display unit for rendered targets"), mcp.Enum("kg", "lbs")),
)

// --- Tool handlers ---

func (h *handlers) getSetLogs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	uid := UserIDFromContext(ctx)
	rows, err := h.ds.QuerySetLogs(ctx, start, end, uid, req.GetString("exercise", ""))
	if err != nil {
		h.log.Error("mcp get_set_logs", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(rows)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getPreviousSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}

	uid := UserIDFromContext(ctx)
	rows, err := h.ds.LatestSessionSets(ctx, uid, exercise)
	if err != nil {
		h.log.Error("mcp get_previous_session", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(rows)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getProgression(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}

	uid := UserIDFromContext(ctx)
	points, err := h.ds.GetExerciseProgression(ctx, uid, exercise, req.GetInt("limit", 0))
	if err != nil {
		h.log.Error("mcp get_exercise_progression", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(points)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkoutSummaries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	uid := UserIDFromContext(ctx)
	summaries, err := h.ds.QueryWorkoutSummaries(ctx, start, end, uid)
	if err != nil {
		h.log.Error("mcp get_workout_summaries", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(summaries)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// prescribedSet is one rendered plan entry.
type prescribedSet struct {
	Index    int      `json:"index"`
	Type     string   `json:"setType"`
	Label    string   `json:"label"`
	WeightKg *float64 `json:"weightKg,omitempty"`
	Reps     int      `json:"reps"`
	RIR      *int     `json:"rir,omitempty"`
	Display  string   `json:"display"`
}

func (h *handlers) prescribeSets(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}

	unit := units.ParseUnit(req.GetString("unit", ""))

	spec := prescription.ExerciseSpec{
		Name:           exercise,
		Equipment:      req.GetString("equipment", ""),
		TargetWeightKg: req.GetFloat("weight_kg", 0),
		TargetReps:     req.GetInt("reps", 0),
		Sets:           req.GetInt("sets", 0),
	}
	targets := prescription.GenerateTargets(spec)

	plan := make([]prescribedSet, 0, len(targets))
	for _, t := range targets {
		plan = append(plan, prescribedSet{
			Index:    t.Index,
			Type:     string(t.Type),
			Label:    t.Label,
			WeightKg: t.WeightKg,
			Reps:     t.Reps,
			RIR:      t.RIR,
			Display:  prescription.TargetDisplay(t, unit),
		})
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"exercise":    exercise,
		"unit":        unit,
		"incrementKg": units.IncrementFor(spec.Equipment),
		"plan":        plan,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
