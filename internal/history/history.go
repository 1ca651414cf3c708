// Package history supplies previous-session set data: parsed from strength
// log CSV exports and projected into the read-only snapshots the tracker
// displays alongside live sets. History never feeds target computation.
package history

import (
	"strings"
	"time"

	"github.com/meltforce/ironlog/internal/tracker"
)

// Session is one logged workout session.
type Session struct {
	Name      string     `json:"name"`
	Date      time.Time  `json:"date"`
	Duration  string     `json:"duration"`
	Exercises []Exercise `json:"exercises"`
}

// Exercise is one exercise within a logged session.
type Exercise struct {
	Number     int    `json:"number"`
	Name       string `json:"name"`
	Equipment  string `json:"equipment"`
	TargetReps int    `json:"targetReps"`
	Sets       []Set  `json:"sets"`
}

// Set is one logged set, warmup or working.
type Set struct {
	Number           int     `json:"number"`
	WeightKg         float64 `json:"weightKg"`
	IsBodyweightPlus bool    `json:"isBodyweightPlus"`
	Reps             int     `json:"reps"`
	RIR              float64 `json:"rir"`
	IsWarmup         bool    `json:"isWarmup"`
}

// PrevSets projects the working sets of the named exercise from a session
// into tracker snapshots, ordered and aligned by set index. Warmups are
// excluded. A nil result is the normal first-time-performing case.
func PrevSets(sess *Session, exerciseName string) []tracker.PrevSet {
	if sess == nil {
		return nil
	}
	name := strings.ToLower(strings.TrimSpace(exerciseName))
	for _, ex := range sess.Exercises {
		if strings.ToLower(strings.TrimSpace(ex.Name)) != name {
			continue
		}
		var prev []tracker.PrevSet
		for _, set := range ex.Sets {
			if set.IsWarmup {
				continue
			}
			prev = append(prev, tracker.PrevSet{WeightKg: set.WeightKg, Reps: set.Reps})
		}
		return prev
	}
	return nil
}
