package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/ironlog/internal/tracker"
)

// liveWorkout pairs an in-progress workout with its lock. Tracker state is
// not safe for concurrent mutation; every handler touching the workout
// holds the lock for the duration of the mutation and the view build.
type liveWorkout struct {
	mu        sync.Mutex
	w         *tracker.Workout
	userID    int
	name      string
	startedAt time.Time
}

// registry holds the server's in-progress workouts keyed by workout ID.
type registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*liveWorkout
}

func newRegistry() *registry {
	return &registry{sessions: make(map[uuid.UUID]*liveWorkout)}
}

func (r *registry) add(lw *liveWorkout) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[lw.w.ID] = lw
}

func (r *registry) get(id uuid.UUID) (*liveWorkout, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lw, ok := r.sessions[id]
	return lw, ok
}

func (r *registry) remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}
