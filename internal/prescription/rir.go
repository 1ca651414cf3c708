package prescription

// RIRFor assigns a reps-in-reserve target to a set by type and position.
// workingIdx is the 0-based rank among working sets only; totalWorking is
// the number of working sets in the block. Returns nil when no RIR applies.
//
// Warmups never get an RIR. Max-effort sets are by definition RIR 0, drops
// RIR 1. Across a working block the value steps down from 3 toward 1 so
// effort rises as the lifter approaches the final set.
func RIRFor(setType SetType, workingIdx, totalWorking int) *int {
	switch {
	case setType == Warmup:
		return nil
	case setType.IsMaxEffort():
		return intPtr(0)
	case setType == Drop:
		return intPtr(1)
	}

	if totalWorking <= 1 {
		return intPtr(2)
	}
	if totalWorking == 2 {
		if workingIdx == 0 {
			return intPtr(3)
		}
		return intPtr(1)
	}

	// position: 0.0 at the first working set, 1.0 at the last.
	position := float64(workingIdx) / float64(totalWorking-1)
	switch {
	case position < 0.33:
		return intPtr(3)
	case position < 0.67:
		return intPtr(2)
	default:
		return intPtr(1)
	}
}

func intPtr(v int) *int { return &v }
