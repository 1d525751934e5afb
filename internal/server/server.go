package server

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/coocood/freecache"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/meltforce/repforge/internal/ingest/catalog"
	"github.com/meltforce/repforge/internal/metrics"
	"github.com/meltforce/repforge/internal/models"
	"github.com/meltforce/repforge/internal/planner"
	"github.com/meltforce/repforge/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Store is the storage used by the HTTP handlers. *storage.DB satisfies it.
type Store interface {
	GetOrCreateUser(ctx context.Context, login, displayName string) (int, error)
	GetUser(ctx context.Context, userID int) (*models.UserSummary, error)
	UserExists(ctx context.Context, userID int) (bool, error)

	QueryExercises(ctx context.Context, q planner.ExerciseQuery) ([]models.Exercise, error)
	GetExercises(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Exercise, error)
	EquipmentCounts(ctx context.Context) ([]models.EquipmentCount, error)
	ReplacementExercise(ctx context.Context, workoutExerciseID uuid.UUID, userID int) (*models.Exercise, error)
	ReplaceWorkoutExercise(ctx context.Context, workoutExerciseID, exerciseID uuid.UUID, userID int) error

	QueryWorkouts(ctx context.Context, start, end time.Time, userID int) ([]models.Workout, error)
	FavoriteWorkouts(ctx context.Context, userID int) ([]models.Workout, error)
	SharedWorkouts(ctx context.Context, userID int) ([]models.Workout, error)
	GetWorkoutDetail(ctx context.Context, workoutID uuid.UUID, userID int) (*models.WorkoutDetail, error)
	UpdateWorkout(ctx context.Context, workoutID uuid.UUID, userID int, u models.WorkoutUpdate) error
	DeleteWorkout(ctx context.Context, workoutID uuid.UUID, userID int) error
	ShareWorkout(ctx context.Context, workoutID uuid.UUID, fromUserID, toUserID int) (uuid.UUID, error)
	CopyWorkout(ctx context.Context, workoutID uuid.UUID, userID int, date time.Time) (uuid.UUID, error)
	CopyWeek(ctx context.Context, userID int, weekStart time.Time) ([]uuid.UUID, error)

	AddSet(ctx context.Context, workoutExerciseID uuid.UUID, userID int) (*models.ExerciseSet, error)
	UpdateSet(ctx context.Context, setID uuid.UUID, userID int, u models.SetUpdate) (*models.ExerciseSet, error)
	DeleteSet(ctx context.Context, setID uuid.UUID, userID int) error

	GetProfile(ctx context.Context, userID int) (*models.Profile, error)
	UpsertProfile(ctx context.Context, p models.Profile) error

	SearchUsers(ctx context.Context, q string, excludeUserID, limit int) ([]models.UserSummary, error)
	SendFriendRequest(ctx context.Context, userID, friendID int) (*models.Friendship, error)
	PendingFriendRequests(ctx context.Context, userID int) ([]models.Friendship, error)
	AcceptFriendRequest(ctx context.Context, requestID int64, userID int) error
	RemoveFriend(ctx context.Context, userID, friendID int) error
	Friends(ctx context.Context, userID int) ([]models.UserSummary, error)
	FriendActivity(ctx context.Context, userID int, since time.Time, limit int) ([]models.FriendActivity, error)

	GetDataStats(ctx context.Context, userID int) (*storage.DataStats, error)
	QueryImportLogs(ctx context.Context, limit int) ([]storage.ImportLog, error)
}

var _ Store = (*storage.DB)(nil)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db      Store
	gen     *planner.Generator
	catalog *catalog.Provider
	log     *slog.Logger
	apiKey  string
	router  chi.Router

	cache        *freecache.Cache
	equipmentTTL int

	whois   WhoIser
	metrics *metrics.Manager
	now     func() time.Time
}

// New creates a new Server with all routes configured.
func New(db Store, gen *planner.Generator, catalogProvider *catalog.Provider, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:           db,
		gen:          gen,
		catalog:      catalogProvider,
		log:          log,
		apiKey:       apiKey,
		router:       chi.NewRouter(),
		cache:        freecache.NewCache(8 * 1024 * 1024),
		equipmentTTL: 600,
		now:          time.Now,
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(s.instrument)
	s.router.Use(CORS)

	// Ingest endpoints (API key required)
	s.router.Route("/api/v1/ingest", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/catalog", s.handleCatalogIngest)
	})

	// App API (identity from tailscale, or the local user in dev mode)
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.identity)

		r.Get("/me", s.handleMe)
		r.Get("/stats", s.handleStats)
		r.Get("/import-logs", s.handleImportLogs)

		r.Get("/equipment", s.handleEquipment)
		r.Get("/exercises", s.handleExercises)

		r.Route("/workouts", func(r chi.Router) {
			r.Get("/", s.handleQueryWorkouts)
			r.Post("/generate", s.handleGenerate)
			r.Post("/custom", s.handleCustomWorkout)
			r.Post("/copy-week", s.handleCopyWeek)
			r.Get("/favorites", s.handleFavoriteWorkouts)
			r.Get("/shared", s.handleSharedWorkouts)
			r.Get("/{id}", s.handleGetWorkout)
			r.Patch("/{id}", s.handleUpdateWorkout)
			r.Delete("/{id}", s.handleDeleteWorkout)
			r.Post("/{id}/share", s.handleShareWorkout)
			r.Post("/{id}/copy", s.handleCopyWorkout)
		})
		r.Post("/workout-exercises/{id}/sets", s.handleAddSet)
		r.Post("/workout-exercises/{id}/replace", s.handleReplaceExercise)
		r.Patch("/sets/{id}", s.handleUpdateSet)
		r.Delete("/sets/{id}", s.handleDeleteSet)

		r.Get("/profile", s.handleGetProfile)
		r.Put("/profile", s.handlePutProfile)

		r.Get("/users/search", s.handleSearchUsers)
		r.Route("/friends", func(r chi.Router) {
			r.Get("/", s.handleFriends)
			r.Get("/activity", s.handleFriendActivity)
			r.Get("/requests", s.handleFriendRequests)
			r.Post("/requests", s.handleSendFriendRequest)
			r.Post("/requests/{id}/accept", s.handleAcceptFriendRequest)
			r.Delete("/{id}", s.handleRemoveFriend)
		})
	})
}

// SetCache replaces the in-process cache used for the equipment list.
func (s *Server) SetCache(sizeMB, equipmentTTLSeconds int) {
	s.cache = freecache.NewCache(sizeMB * 1024 * 1024)
	s.equipmentTTL = equipmentTTLSeconds
}

// SetTailscale enables per-request tailnet identity lookup.
func (s *Server) SetTailscale(w WhoIser) {
	s.whois = w
}

// SetMetrics enables request metrics and serves them on /metrics.
func (s *Server) SetMetrics(m *metrics.Manager, g prometheus.Gatherer) {
	s.metrics = m
	s.router.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}

// SetMCP mounts an MCP HTTP handler on /mcp. Requests carry the caller's
// user ID in their context.
func (s *Server) SetMCP(h http.Handler) {
	s.router.With(s.identity).Handle("/mcp", h)
	s.router.With(s.identity).Handle("/mcp/*", h)
}

// SetFrontend mounts the SPA filesystem.
// Unmatched routes serve index.html for client-side routing.
func (s *Server) SetFrontend(webFS fs.FS) {
	fileServer := http.FileServerFS(webFS)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		// Try to serve the exact file first
		f, err := webFS.Open(r.URL.Path[1:]) // strip leading /
		if err == nil {
			f.Close()
			fileServer.ServeHTTP(w, r)
			return
		}
		// Fallback to index.html for SPA routing
		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	})
}
