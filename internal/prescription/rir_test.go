package prescription

import "testing"

// TestRIRByType verifies the fixed assignments: warmups get none,
// max-effort sets get 0, drops get 1, regardless of position.
func TestRIRByType(t *testing.T) {
	for i := 0; i < 4; i++ {
		if got := RIRFor(Warmup, i, 4); got != nil {
			t.Errorf("RIRFor(warmup, %d, 4) = %d, want nil", i, *got)
		}
		if got := RIRFor(Failure, i, 4); got == nil || *got != 0 {
			t.Errorf("RIRFor(failure, %d, 4) = %v, want 0", i, got)
		}
		if got := RIRFor(AMRAP, i, 4); got == nil || *got != 0 {
			t.Errorf("RIRFor(amrap, %d, 4) = %v, want 0", i, got)
		}
		if got := RIRFor(Drop, i, 4); got == nil || *got != 1 {
			t.Errorf("RIRFor(drop, %d, 4) = %v, want 1", i, got)
		}
	}
}

// TestRIRSmallBlocks verifies the special cases for one- and two-set
// working blocks.
func TestRIRSmallBlocks(t *testing.T) {
	if got := RIRFor(Working, 0, 1); got == nil || *got != 2 {
		t.Errorf("RIRFor(working, 0, 1) = %v, want 2", got)
	}
	if got := RIRFor(Working, 0, 2); got == nil || *got != 3 {
		t.Errorf("RIRFor(working, 0, 2) = %v, want 3", got)
	}
	if got := RIRFor(Working, 1, 2); got == nil || *got != 1 {
		t.Errorf("RIRFor(working, 1, 2) = %v, want 1", got)
	}
}

// TestRIRRamp verifies the three-band discretization for larger blocks:
// 3 sets ramp 3/2/1, and a 5-set block starts at 3 and ends at 1.
func TestRIRRamp(t *testing.T) {
	want3 := []int{3, 2, 1}
	for i, want := range want3 {
		if got := RIRFor(Working, i, 3); got == nil || *got != want {
			t.Errorf("RIRFor(working, %d, 3) = %v, want %d", i, got, want)
		}
	}

	want5 := []int{3, 3, 2, 1, 1}
	for i, want := range want5 {
		if got := RIRFor(Working, i, 5); got == nil || *got != want {
			t.Errorf("RIRFor(working, %d, 5) = %v, want %d", i, got, want)
		}
	}
}

// TestRIRMonotonic verifies that the RIR sequence across any working block
// never increases — effort ramps up toward the final set.
func TestRIRMonotonic(t *testing.T) {
	for total := 1; total <= 12; total++ {
		prev := 1 << 10
		for i := 0; i < total; i++ {
			got := RIRFor(Working, i, total)
			if got == nil {
				t.Fatalf("RIRFor(working, %d, %d) = nil", i, total)
			}
			if *got > prev {
				t.Errorf("RIR increased at set %d of %d: %d after %d", i, total, *got, prev)
			}
			prev = *got
		}
	}
}
