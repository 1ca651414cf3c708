// Package server exposes the tracking engine over HTTP: live workout
// sessions driven by the tracker, set-log queries backed by storage, and
// the history import endpoint.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/meltforce/ironlog/internal/media"
	"github.com/meltforce/ironlog/internal/models"
	"github.com/meltforce/ironlog/internal/units"
	"tailscale.com/client/local"
)

// Store is the persistence surface the handlers need. *storage.DB
// satisfies it.
type Store interface {
	InsertSetLogs(ctx context.Context, rows []models.SetLogRow) (int64, error)
	QuerySetLogs(ctx context.Context, start, end time.Time, userID int, exerciseFilter string) ([]models.SetLogRow, error)
	LatestSessionSets(ctx context.Context, userID int, exerciseName string) ([]models.SetLogRow, error)
	DeleteSetLog(ctx context.Context, userID int, id uuid.UUID) (bool, error)
	QueryWorkoutSummaries(ctx context.Context, start, end time.Time, userID int) ([]models.WorkoutSummaryRow, error)
	GetExerciseProgression(ctx context.Context, userID int, exerciseName string, limit int) ([]models.ProgressionPoint, error)
	GetOrCreateUser(ctx context.Context, login, displayName string) (int, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	db          Store
	media       *media.Resolver
	log         *slog.Logger
	apiKey      string
	defaultUnit units.Unit
	router      chi.Router
	live        *registry
	tsClient    *local.Client
}

// New creates a new Server with all routes configured.
func New(db Store, mediaResolver *media.Resolver, apiKey string, defaultUnit units.Unit, log *slog.Logger) *Server {
	s := &Server{
		db:          db,
		media:       mediaResolver,
		log:         log,
		apiKey:      apiKey,
		defaultUnit: defaultUnit,
		router:      chi.NewRouter(),
		live:        newRegistry(),
	}
	s.routes()
	return s
}

// SetTailscale wires the tsnet local client used to resolve request
// identity. Without it every request maps to the default user.
func (s *Server) SetTailscale(lc *local.Client) {
	s.tsClient = lc
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// History import (API key required).
	s.router.Route("/api/v1/import", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/", s.handleImport)
	})

	// Live workout sessions.
	s.router.Route("/api/v1/live", func(r chi.Router) {
		r.Post("/", s.handleCreateWorkout)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleWorkoutState)
			r.Post("/finish", s.handleFinishWorkout)
			r.Post("/unit-toggle", s.handleToggleUnit)
			r.Post("/minimize", s.handleMinimize)
			r.Post("/view/next", s.handleViewNext)
			r.Post("/view/prev", s.handleViewPrev)
			r.Post("/advance", s.handleAdvanceExercise)

			r.Route("/exercises/{idx}", func(r chi.Router) {
				r.Post("/unit", s.handleUnitOverride)
				r.Post("/sets/complete", s.handleCompleteSet)
				r.Post("/sets/uncomplete", s.handleUncompleteSet)
				r.Post("/sets/add", s.handleAddSet)
				r.Post("/sets/remove", s.handleRemoveSet)
				r.Post("/sets/{row}/input", s.handleSetInput)
				r.Delete("/sets/{row}", s.handleDeleteSet)
				r.Post("/sets/{row}/edit", s.handleBeginEdit)
				r.Post("/edit/input", s.handleEditInput)
				r.Post("/edit/save", s.handleSaveEdit)
				r.Post("/edit/cancel", s.handleCancelEdit)
			})
		})
	})

	// Logged history queries.
	s.router.Get("/api/v1/sets", s.handleQuerySetLogs)
	s.router.Get("/api/v1/workouts", s.handleQueryWorkouts)
	s.router.Get("/api/v1/exercises/previous", s.handlePreviousSession)
	s.router.Get("/api/v1/exercises/progression", s.handleProgression)
	s.router.Delete("/api/v1/sets/{id}", s.handleDeleteSetLog)

	// Exercise illustrations (cache -> remote fetch).
	s.router.Get("/api/v1/media/{exercise}", s.handleMedia)
}

// userID resolves the request's user. With a tsnet client the Tailscale
// identity maps to a user row; otherwise everything belongs to user 1
// (single-user dev mode).
func (s *Server) userID(r *http.Request) int {
	if s.tsClient == nil {
		return 1
	}
	who, err := s.tsClient.WhoIs(r.Context(), r.RemoteAddr)
	if err != nil || who.UserProfile == nil {
		s.log.Warn("whois failed, using default user", "error", err)
		return 1
	}
	id, err := s.db.GetOrCreateUser(r.Context(), who.UserProfile.LoginName, who.UserProfile.DisplayName)
	if err != nil {
		s.log.Error("get or create user", "login", who.UserProfile.LoginName, "error", err)
		return 1
	}
	return id
}
