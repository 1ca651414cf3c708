package tracker

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/ironlog/internal/prescription"
	"github.com/meltforce/ironlog/internal/units"
)

// ExerciseSession tracks one exercise instance through a workout: the
// prescribed targets, the live per-set input, and the completed-set log.
// It owns the completed sequence exclusively; external history updates are
// pushed in wholesale via SetPrevSets, never merged.
//
// All methods are synchronous and none perform I/O. Invalid transitions
// are silent no-ops per the tracked guards; there is no error surface.
type ExerciseSession struct {
	Spec    prescription.ExerciseSpec
	targets []prescription.SetTarget

	rows      map[int]ActiveSet // lazily materialized, keyed by row index
	completed []CompletedSet
	prev      []PrevSet

	totalSets  int
	editingRow *int // row index of the set being edited, at most one

	editBuf editBuffer

	// Override shadows the workout-level display unit when non-nil.
	Override *units.Unit
}

type editBuffer struct {
	weightKg float64
	reps     int
	rpe      *int
	rir      *int
}

// NewExerciseSession derives the target list from the spec and prepares an
// empty tracking session. prev is the previous session's working sets,
// aligned to this session's working rows by ordinal; nil is the normal
// first-time case.
func NewExerciseSession(spec prescription.ExerciseSpec, prev []PrevSet) *ExerciseSession {
	targets := prescription.GenerateTargets(spec)
	return &ExerciseSession{
		Spec:      spec,
		targets:   targets,
		rows:      make(map[int]ActiveSet),
		prev:      prev,
		totalSets: len(targets),
	}
}

// Targets returns the derived set plan. Stable for the life of the session.
func (s *ExerciseSession) Targets() []prescription.SetTarget { return s.targets }

// TotalSets returns the current number of set rows, including pending ones.
func (s *ExerciseSession) TotalSets() int { return s.totalSets }

// Completed returns the completed-set log in completion order.
func (s *ExerciseSession) Completed() []CompletedSet { return s.completed }

// CompletedCount returns the number of completed sets.
func (s *ExerciseSession) CompletedCount() int { return len(s.completed) }

// AllSetsCompleted reports whether every row has been completed.
func (s *ExerciseSession) AllSetsCompleted() bool {
	return len(s.completed) >= s.totalSets
}

// CurrentIndex returns the row index that is next to complete. Always equals
// the completed count; there is no explicit "become current" transition.
func (s *ExerciseSession) CurrentIndex() int { return len(s.completed) }

// StateOf derives the lifecycle state of a row index. Out-of-range indexes
// report pending so callers never mistake them for a real record.
func (s *ExerciseSession) StateOf(i int) SetState {
	if i < 0 {
		return StatePending
	}
	if s.editingRow != nil && *s.editingRow == i {
		return StateEditing
	}
	if i < len(s.completed) {
		return StateCompleted
	}
	if i == len(s.completed) && i < s.totalSets {
		return StateCurrent
	}
	return StatePending
}

// Unit resolves the display unit for this exercise: the local override if
// set, otherwise the given workout-level unit.
func (s *ExerciseSession) Unit(global units.Unit) units.Unit {
	if s.Override != nil {
		return *s.Override
	}
	return global
}

// Row returns the live snapshot for a row index, materializing it on first
// access from the target, previous-session data, and spec equipment.
func (s *ExerciseSession) Row(i int) ActiveSet {
	if row, ok := s.rows[i]; ok {
		return row
	}
	row := s.materialize(i)
	s.rows[i] = row
	return row
}

func (s *ExerciseSession) materialize(i int) ActiveSet {
	row := ActiveSet{
		ID:        uuid.New(),
		SetNumber: i + 1,
		Type:      prescription.Working,
		Equipment: s.Spec.Equipment,
	}
	if i < len(s.targets) {
		t := s.targets[i]
		row.Type = t.Type
		row.Label = t.Label
		row.TargetWeightKg = t.WeightKg
		row.TargetReps = t.Reps
		row.TargetRIR = t.RIR
		if t.WeightKg != nil {
			row.WeightKg = *t.WeightKg
		}
		row.Reps = t.Reps
	} else {
		// Added row beyond the plan: an extra working set with no target.
		row.Label = strconv.Itoa(s.workingOrdinal(i))
	}
	// prev holds working sets only, so it aligns to working rows by
	// ordinal; warmups never show history.
	if row.Type == prescription.Working {
		if ord := s.workingOrdinal(i) - 1; ord >= 0 && ord < len(s.prev) {
			p := s.prev[ord]
			row.PrevWeightKg = &p.WeightKg
			row.PrevReps = &p.Reps
		}
	}
	return row
}

// workingOrdinal counts working-type rows up to and including index i.
func (s *ExerciseSession) workingOrdinal(i int) int {
	n := 0
	for j := 0; j <= i; j++ {
		if j < len(s.targets) {
			if s.targets[j].Type == prescription.Working {
				n++
			}
		} else {
			n++ // rows beyond the plan are always working sets
		}
	}
	return n
}

// UpdateWeightInput applies raw weight text for a row, interpreted in the
// given display unit and stored canonically in kg. Unparsable input is
// ignored and the prior value retained.
func (s *ExerciseSession) UpdateWeightInput(i int, text string, u units.Unit) {
	v, ok := parseFlexFloat(text)
	if !ok || v < 0 {
		return
	}
	s.rows[i] = s.Row(i).withWeight(units.ToKg(v, u))
}

// UpdateRepsInput applies raw rep-count text for a row. Unparsable or
// negative input is ignored.
func (s *ExerciseSession) UpdateRepsInput(i int, text string) {
	v, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || v < 0 {
		return
	}
	s.rows[i] = s.Row(i).withReps(v)
}

// SetRPE records a perceived-exertion rating for a row. Out-of-range
// values are ignored.
func (s *ExerciseSession) SetRPE(i, rpe int) {
	if rpe < RPEMin || rpe > RPEMax {
		return
	}
	s.rows[i] = s.Row(i).withRPE(rpe)
}

// SetRIR records a reps-in-reserve rating for a row. Out-of-range values
// are ignored.
func (s *ExerciseSession) SetRIR(i, rir int) {
	if rir < RIRMin || rir > RIRMax {
		return
	}
	s.rows[i] = s.Row(i).withRIR(rir)
}

// CompleteCurrent freezes the current row's live input into a CompletedSet.
// The next row, if any, automatically becomes current. No-op when every
// row is already completed.
func (s *ExerciseSession) CompleteCurrent() *CompletedSet {
	cur := s.CurrentIndex()
	if cur >= s.totalSets {
		return nil
	}
	row := s.Row(cur)
	done := CompletedSet{
		ID:          row.ID,
		SetNumber:   cur + 1,
		Type:        row.Type,
		WeightKg:    row.WeightKg,
		Reps:        row.Reps,
		RPE:         row.RPE,
		RIR:         row.RIR,
		CompletedAt: time.Now(),
	}
	s.completed = append(s.completed, done)
	return &done
}

// UncompleteLast removes the most recent completed set, returning its row
// to current. No-op with nothing completed or while an edit is open.
func (s *ExerciseSession) UncompleteLast() {
	if len(s.completed) == 0 || s.editingRow != nil {
		return
	}
	s.completed = s.completed[:len(s.completed)-1]
}

// AddSet appends one pending row.
func (s *ExerciseSession) AddSet() {
	s.totalSets++
}

// RemoveSet shrinks the session by one: the last pending row if any
// remain, otherwise the most recent completed set. Shrinking below one
// total set is disallowed and no-ops.
func (s *ExerciseSession) RemoveSet() {
	if s.totalSets <= 1 || s.editingRow != nil {
		return
	}
	if s.totalSets > len(s.completed) {
		s.totalSets--
		delete(s.rows, s.totalSets)
		return
	}
	// Every row is completed: reduce acts on the most recent entry.
	s.completed = s.completed[:len(s.completed)-1]
	s.totalSets--
	delete(s.rows, s.totalSets)
}

// DeleteSet removes a row explicitly. A completed row loses its log entry;
// the remaining records keep their identity and the current marker
// recomputes from the shrunken log. A pending row decrements the total
// count. The current row is not deletable, and no delete is possible while
// an edit is open.
func (s *ExerciseSession) DeleteSet(i int) {
	if s.editingRow != nil || i < 0 || i >= s.totalSets {
		return
	}
	switch s.StateOf(i) {
	case StateCompleted:
		s.completed = append(s.completed[:i], s.completed[i+1:]...)
		s.shiftRowsDown(i)
	case StatePending:
		if s.totalSets <= 1 {
			return
		}
		s.totalSets--
		s.shiftRowsDown(i)
	}
}

// shiftRowsDown drops the materialized snapshot at index i and moves the
// ones above it down one slot, renumbering but keeping their identities.
func (s *ExerciseSession) shiftRowsDown(i int) {
	delete(s.rows, i)
	for j := i + 1; j <= s.totalSets; j++ {
		if row, ok := s.rows[j]; ok {
			row.SetNumber = j
			s.rows[j-1] = row
			delete(s.rows, j)
		}
	}
}

// BeginEdit opens a completed row for correction, seeding the edit buffer
// from the frozen record. At most one edit is open at a time; selecting a
// non-completed row is a no-op.
func (s *ExerciseSession) BeginEdit(i int) {
	if s.editingRow != nil || s.StateOf(i) != StateCompleted {
		return
	}
	done := s.completed[i]
	s.editingRow = &i
	s.editBuf = editBuffer{
		weightKg: done.WeightKg,
		reps:     done.Reps,
		rpe:      done.RPE,
		rir:      done.RIR,
	}
}

// EditingIndex returns the row index under edit, or -1.
func (s *ExerciseSession) EditingIndex() int {
	if s.editingRow == nil {
		return -1
	}
	return *s.editingRow
}

// EditBuffer returns the current edit values (weight in kg).
func (s *ExerciseSession) EditBuffer() (weightKg float64, reps int, rpe, rir *int) {
	return s.editBuf.weightKg, s.editBuf.reps, s.editBuf.rpe, s.editBuf.rir
}

// UpdateEditWeight applies raw weight text to the edit buffer, interpreted
// in the given display unit. Unparsable input is ignored.
func (s *ExerciseSession) UpdateEditWeight(text string, u units.Unit) {
	if s.editingRow == nil {
		return
	}
	v, ok := parseFlexFloat(text)
	if !ok || v < 0 {
		return
	}
	s.editBuf.weightKg = units.ToKg(v, u)
}

// UpdateEditReps applies raw rep-count text to the edit buffer.
func (s *ExerciseSession) UpdateEditReps(text string) {
	if s.editingRow == nil {
		return
	}
	v, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || v < 0 {
		return
	}
	s.editBuf.reps = v
}

// UpdateEditRPE sets the edit buffer RPE. Out-of-range values are ignored.
func (s *ExerciseSession) UpdateEditRPE(rpe int) {
	if s.editingRow == nil || rpe < RPEMin || rpe > RPEMax {
		return
	}
	s.editBuf.rpe = &rpe
}

// UpdateEditRIR sets the edit buffer RIR. Out-of-range values are ignored.
func (s *ExerciseSession) UpdateEditRIR(rir int) {
	if s.editingRow == nil || rir < RIRMin || rir > RIRMax {
		return
	}
	s.editBuf.rir = &rir
}

// SaveEdit commits the edit buffer over the completed record. A commit
// with weight or reps <= 0 is rejected: the prior values are retained and
// the row stays in editing so the user can try again. Returns whether the
// commit was accepted.
func (s *ExerciseSession) SaveEdit() bool {
	if s.editingRow == nil {
		return false
	}
	if s.editBuf.weightKg <= 0 || s.editBuf.reps <= 0 {
		return false
	}
	i := *s.editingRow
	done := s.completed[i]
	done.WeightKg = s.editBuf.weightKg
	done.Reps = s.editBuf.reps
	done.RPE = s.editBuf.rpe
	done.RIR = s.editBuf.rir
	s.completed[i] = done
	if row, ok := s.rows[i]; ok {
		row.WeightKg = done.WeightKg
		row.Reps = done.Reps
		row.RPE = done.RPE
		row.RIR = done.RIR
		s.rows[i] = row
	}
	s.editingRow = nil
	s.editBuf = editBuffer{}
	return true
}

// CancelEdit discards the edit buffer and returns the row to completed
// with its original values.
func (s *ExerciseSession) CancelEdit() {
	s.editingRow = nil
	s.editBuf = editBuffer{}
}

// SetPrevSets replaces the previous-session snapshot wholesale. Already
// materialized rows keep their snapshots; new rows pick up the new data.
func (s *ExerciseSession) SetPrevSets(prev []PrevSet) {
	s.prev = prev
}

// parseFlexFloat parses a weight string permissively, accepting European
// decimal commas ("102,5"). Returns false for anything non-numeric,
// including the "NaN" and "Inf" spellings ParseFloat would otherwise
// accept; only finite values may enter a record.
func parseFlexFloat(text string) (float64, bool) {
	text = strings.TrimSpace(strings.ReplaceAll(text, ",", "."))
	if text == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
