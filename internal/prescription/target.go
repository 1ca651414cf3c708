package prescription

import (
	"strconv"

	"github.com/meltforce/ironlog/internal/units"
)

// Legacy plan defaults, used when a spec carries no explicit set targets.
const (
	defaultWorkingSets = 3
	defaultReps        = 10
	legacyWarmupSets   = 2
)

// NoTargetPlaceholder is rendered when a target has neither weight nor reps.
const NoTargetPlaceholder = "—"

// ExerciseSpec is the immutable per-exercise prescription. Exactly one of
// SetTargets (when non-empty) or the legacy fields drives target generation;
// a non-empty SetTargets list is authoritative and the legacy fields are
// ignored.
type ExerciseSpec struct {
	Name            string      `json:"name"`
	Equipment       string      `json:"equipment"`
	TargetWeightKg  float64     `json:"targetWeightKg"`
	TargetReps      int         `json:"targetReps"`
	RestSeconds     int         `json:"restSeconds"`
	DurationSeconds *int        `json:"durationSeconds,omitempty"`
	Sets            int         `json:"sets"`
	SetTargets      []SetTarget `json:"setTargets,omitempty"`
	IsDropSet       bool        `json:"isDropSet"`
	IsFailureSet    bool        `json:"isFailureSet"`
}

// SetTarget is one prescribed set.
type SetTarget struct {
	Index    int      `json:"index"` // 1-based position in the plan
	Type     SetType  `json:"setType"`
	WeightKg *float64 `json:"weightKg,omitempty"`
	Reps     int      `json:"reps"`
	RIR      *int     `json:"rir,omitempty"`
	Label    string   `json:"label"`
}

// GenerateTargets produces the ordered set plan for a spec.
//
// A non-empty SetTargets list is returned as given, except that working-set
// labels are recomputed as the 1-based rank among working sets and any
// working set without an explicit RIR gets one from the progression
// calculator. Warmup, drop and max-effort sets only ever carry an RIR the
// plan itself supplied.
//
// Without a plan, a deterministic legacy plan is synthesized: two warmup
// sets at default reps with no weight target, then N working sets at the
// spec's weight and reps, RIR always from the calculator.
func GenerateTargets(spec ExerciseSpec) []SetTarget {
	if len(spec.SetTargets) > 0 {
		return annotatePlan(spec.SetTargets)
	}
	return legacyPlan(spec)
}

// annotatePlan copies an explicit plan, filling in indices, labels, and
// inferred RIR for working sets that lack one. Order and types are
// authoritative and never change.
func annotatePlan(plan []SetTarget) []SetTarget {
	totalWorking := 0
	for _, t := range plan {
		if t.Type == Working {
			totalWorking++
		}
	}

	out := make([]SetTarget, len(plan))
	workingIdx := 0
	for i, t := range plan {
		t.Index = i + 1
		if t.Type == Working {
			t.Label = strconv.Itoa(workingIdx + 1)
			if t.RIR == nil {
				t.RIR = RIRFor(Working, workingIdx, totalWorking)
			}
			workingIdx++
		} else {
			t.Label = t.Type.letter()
		}
		out[i] = t
	}
	return out
}

func legacyPlan(spec ExerciseSpec) []SetTarget {
	workingSets := spec.Sets
	if workingSets <= 0 {
		workingSets = defaultWorkingSets
	}
	reps := spec.TargetReps
	if reps <= 0 {
		reps = defaultReps
	}

	targets := make([]SetTarget, 0, legacyWarmupSets+workingSets)
	for i := 0; i < legacyWarmupSets; i++ {
		targets = append(targets, SetTarget{
			Index: i + 1,
			Type:  Warmup,
			Reps:  reps,
			Label: Warmup.letter(),
		})
	}

	for i := 0; i < workingSets; i++ {
		t := SetTarget{
			Index: legacyWarmupSets + i + 1,
			Type:  Working,
			Reps:  reps,
			RIR:   RIRFor(Working, i, workingSets),
			Label: strconv.Itoa(i + 1),
		}
		// Bodyweight specs (weight <= 0) stay reps-only.
		if spec.TargetWeightKg > 0 {
			w := spec.TargetWeightKg
			t.WeightKg = &w
		}
		targets = append(targets, t)
	}
	return targets
}

// TargetDisplay renders a target for the given display unit:
// "220 lbs × 10" with both weight and reps, "× AMRAP" for max-effort sets,
// bare "10 reps" or "AMRAP" for bodyweight targets, and the placeholder
// when there is nothing to show. Target weights truncate to whole units.
func TargetDisplay(t SetTarget, u units.Unit) string {
	hasWeight := t.WeightKg != nil && *t.WeightKg > 0

	if hasWeight {
		w := units.FormatTargetWeight(units.FromKg(*t.WeightKg, u)) + " " + string(u)
		if t.Type.IsMaxEffort() {
			return w + " × AMRAP"
		}
		if t.Reps > 0 {
			return w + " × " + strconv.Itoa(t.Reps)
		}
		return NoTargetPlaceholder
	}

	if t.Type.IsMaxEffort() {
		return "AMRAP"
	}
	if t.Reps > 0 {
		return strconv.Itoa(t.Reps) + " reps"
	}
	return NoTargetPlaceholder
}
