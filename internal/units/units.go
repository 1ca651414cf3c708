// Package units converts between mass units and resolves equipment-appropriate
// weight increments. All stored weights are kilograms; conversion happens only
// at the display boundary.
package units

import (
	"fmt"
	"math"
	"strings"
)

// Unit is a display mass unit.
type Unit string

const (
	KG Unit = "kg"
	LB Unit = "lbs"
)

// kgToLb is the exact conversion factor used throughout. Rounding is a
// display concern and never happens inside the converters.
const kgToLb = 2.20462

// ParseUnit normalizes a unit string. Unknown input defaults to kg,
// the canonical unit.
func ParseUnit(s string) Unit {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lb", "lbs", "pound", "pounds":
		return LB
	default:
		return KG
	}
}

// FromKg converts a canonical kg weight to the given display unit.
func FromKg(kg float64, to Unit) float64 {
	if to == LB {
		return kg * kgToLb
	}
	return kg
}

// ToKg converts a displayed weight back to canonical kg.
func ToKg(v float64, from Unit) float64 {
	if from == LB {
		return v / kgToLb
	}
	return v
}

// increment maps an equipment keyword to a weight step in kg. Matched by
// case-insensitive substring search in priority order, so "Smith machine"
// resolves to the machine step even though it also contains "machine".
type increment struct {
	keyword string
	stepKg  float64
}

// incrementTable is ordered: more specific equipment first. Bodyweight has
// no meaningful step; kettlebells jump in 4 kg; machines are pin-loaded in
// 5 kg plates; everything plate- or cable-loaded moves in 2.5 kg.
var incrementTable = []increment{
	{"bodyweight", 0},
	{"kettlebell", 4.0},
	{"machine", 5.0},
	{"dumbbell", 2.5},
	{"cable", 2.5},
	{"barbell", 2.5},
}

// defaultStepKg is the most conservative non-zero increment, used when the
// equipment string matches nothing or is empty.
const defaultStepKg = 2.5

// IncrementFor returns the weight step in kg for a free-text equipment
// description. It always returns a value; there is no failure mode.
func IncrementFor(equipment string) float64 {
	eq := strings.ToLower(equipment)
	for _, inc := range incrementTable {
		if strings.Contains(eq, inc.keyword) {
			return inc.stepKg
		}
	}
	return defaultStepKg
}

// FormatWeight renders a display weight: whole numbers without decimals,
// otherwise one decimal place. The fraction is truncated, not rounded, so
// 100 kg in pounds renders as "220" (220.462 truncated).
func FormatWeight(v float64) string {
	truncated := math.Trunc(v*10) / 10
	if truncated == math.Trunc(truncated) {
		return fmt.Sprintf("%d", int64(truncated))
	}
	return fmt.Sprintf("%.1f", truncated)
}

// FormatTargetWeight renders a prescribed weight truncated to whole units,
// e.g. 220.462 -> "220". Target displays drop fractions entirely; only
// logged actuals keep their half-step precision.
func FormatTargetWeight(v float64) string {
	return fmt.Sprintf("%d", int64(math.Trunc(v)))
}
