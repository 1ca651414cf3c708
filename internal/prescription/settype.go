// Package prescription turns an exercise specification into an ordered list
// of per-set targets: set type, weight, reps, and reps-in-reserve. Targets
// are derived once per exercise view from the immutable spec; nothing here
// reads tracker state.
package prescription

import "strings"

// SetType classifies a prescribed set.
type SetType string

const (
	Warmup  SetType = "warmup"
	Working SetType = "working"
	Drop    SetType = "drop"
	Failure SetType = "failure"
	AMRAP   SetType = "amrap"
)

// ParseSetType normalizes a free-text set type. Unknown input is treated
// as a working set, the safest interpretation for plan data from outside.
func ParseSetType(s string) SetType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "warmup", "warm-up", "wu":
		return Warmup
	case "drop", "dropset", "drop_set":
		return Drop
	case "failure":
		return Failure
	case "amrap":
		return AMRAP
	default:
		return Working
	}
}

// IsMaxEffort reports whether the set is performed to voluntary failure.
func (t SetType) IsMaxEffort() bool {
	return t == Failure || t == AMRAP
}

// letter returns the single-letter label code for non-working set types.
// Working sets are labeled with their ordinal instead; see GenerateTargets.
func (t SetType) letter() string {
	switch t {
	case Warmup:
		return "W"
	case Drop:
		return "D"
	case Failure:
		return "F"
	case AMRAP:
		return "A"
	default:
		return ""
	}
}
