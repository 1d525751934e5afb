package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/repforge/internal/models"
	"github.com/meltforce/repforge/internal/planner"
	"github.com/meltforce/repforge/internal/storage"
)

// fakeStore implements the methods the handler tests exercise. Calling any
// other Store method panics on the nil embedded interface.
type fakeStore struct {
	Store

	mu        sync.Mutex
	exercises []models.Exercise
	profile   models.Profile

	equipment      []models.EquipmentCount
	equipmentCalls int

	workouts     []models.NewWorkout
	weRows       []models.WorkoutExerciseRow
	setRows      []models.ExerciseSetRow
	failWorkoutN int // InsertWorkout fails on this call (1-based) when > 0

	replacement *models.Exercise
	replaced    map[uuid.UUID]uuid.UUID

	owned       map[uuid.UUID]bool // workouts CopyWorkout can find
	copies      []copyCall
	copiedWeeks []time.Time
	weekCopyN   int

	friends  map[[2]int]bool
	shares   int
	users    map[string]int
	upserted *models.Profile
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		replaced: map[uuid.UUID]uuid.UUID{},
		owned:    map[uuid.UUID]bool{},
		friends:  map[[2]int]bool{},
		users:    map[string]int{},
	}
}

func (f *fakeStore) QueryExercises(_ context.Context, q planner.ExerciseQuery) ([]models.Exercise, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Exercise
	for _, ex := range f.exercises {
		if q.MuscleGroup != "" && !strings.Contains(strings.ToLower(ex.TargetMuscleGroup), strings.ToLower(q.MuscleGroup)) {
			continue
		}
		if q.Equipment != nil && !slices.Contains(q.Equipment, ex.PrimaryEquipment) {
			continue
		}
		if q.Mechanics != "" && (ex.Mechanics == nil || *ex.Mechanics != q.Mechanics) {
			continue
		}
		out = append(out, ex)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) GetExercises(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Exercise, error) {
	out := map[uuid.UUID]models.Exercise{}
	for _, ex := range f.exercises {
		if slices.Contains(ids, ex.ID) {
			out[ex.ID] = ex
		}
	}
	return out, nil
}

func (f *fakeStore) EquipmentCounts(context.Context) ([]models.EquipmentCount, error) {
	f.equipmentCalls++
	return f.equipment, nil
}

func (f *fakeStore) InsertWorkout(_ context.Context, w models.NewWorkout) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWorkoutN > 0 && len(f.workouts)+1 == f.failWorkoutN {
		return uuid.Nil, errors.New("connection reset")
	}
	f.workouts = append(f.workouts, w)
	return uuid.New(), nil
}

func (f *fakeStore) InsertWorkoutExercises(_ context.Context, rows []models.WorkoutExerciseRow) ([]models.WorkoutExerciseRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.WorkoutExerciseRow, len(rows))
	for i, r := range rows {
		r.ID = uuid.New()
		out[i] = r
	}
	f.weRows = append(f.weRows, out...)
	return out, nil
}

func (f *fakeStore) InsertExerciseSets(_ context.Context, rows []models.ExerciseSetRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setRows = append(f.setRows, rows...)
	return nil
}

func (f *fakeStore) GetWorkoutDetail(context.Context, uuid.UUID, int) (*models.WorkoutDetail, error) {
	return nil, storage.ErrNotFound
}

func (f *fakeStore) QueryWorkouts(context.Context, time.Time, time.Time, int) ([]models.Workout, error) {
	return nil, nil
}

func (f *fakeStore) ReplacementExercise(context.Context, uuid.UUID, int) (*models.Exercise, error) {
	if f.replacement == nil {
		return nil, storage.ErrNotFound
	}
	return f.replacement, nil
}

func (f *fakeStore) ReplaceWorkoutExercise(_ context.Context, weID, exerciseID uuid.UUID, _ int) error {
	f.replaced[weID] = exerciseID
	return nil
}

func (f *fakeStore) GetProfile(_ context.Context, userID int) (*models.Profile, error) {
	p := f.profile
	p.UserID = userID
	return &p, nil
}

func (f *fakeStore) UpsertProfile(_ context.Context, p models.Profile) error {
	f.upserted = &p
	f.profile = p
	return nil
}

func (f *fakeStore) UserExists(_ context.Context, userID int) (bool, error) {
	return userID < 100, nil
}

func (f *fakeStore) SendFriendRequest(_ context.Context, userID, friendID int) (*models.Friendship, error) {
	return &models.Friendship{ID: 1, UserID: userID, FriendID: friendID, Status: models.FriendshipPending}, nil
}

func (f *fakeStore) ShareWorkout(_ context.Context, _ uuid.UUID, from, to int) (uuid.UUID, error) {
	if !f.friends[[2]int{from, to}] {
		return uuid.Nil, storage.ErrNotFriends
	}
	f.shares++
	return uuid.New(), nil
}

type copyCall struct {
	workoutID uuid.UUID
	userID    int
	date      time.Time
}

func (f *fakeStore) CopyWorkout(_ context.Context, workoutID uuid.UUID, userID int, date time.Time) (uuid.UUID, error) {
	if !f.owned[workoutID] {
		return uuid.Nil, storage.ErrNotFound
	}
	f.copies = append(f.copies, copyCall{workoutID, userID, date})
	return uuid.New(), nil
}

func (f *fakeStore) CopyWeek(_ context.Context, _ int, weekStart time.Time) ([]uuid.UUID, error) {
	f.copiedWeeks = append(f.copiedWeeks, weekStart)
	var ids []uuid.UUID
	for range f.weekCopyN {
		ids = append(ids, uuid.New())
	}
	return ids, nil
}

func (f *fakeStore) GetOrCreateUser(_ context.Context, login, _ string) (int, error) {
	if id, ok := f.users[login]; ok {
		return id, nil
	}
	id := len(f.users) + 2
	f.users[login] = id
	return id, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mechanics(s string) *string { return &s }

// testCatalog covers every group of the push/pull/legs split with barbell
// and dumbbell variants.
func testCatalog() []models.Exercise {
	groups := []string{"Chest", "Shoulders", "Triceps", "Trapezius", "Back", "Biceps",
		"Forearms", "Quadriceps", "Hamstrings", "Calves", "Glutes"}
	var out []models.Exercise
	for _, g := range groups {
		for _, eq := range []string{"Barbell", "Dumbbell"} {
			out = append(out, models.Exercise{
				ID:                uuid.New(),
				Name:              eq + " " + g + " Exercise",
				TargetMuscleGroup: g,
				PrimaryEquipment:  eq,
				Mechanics:         mechanics(models.MechanicsCompound),
			})
		}
	}
	return out
}

// newTestServer wires a server around the fake with a fixed clock.
func newTestServer(t *testing.T, st *fakeStore) *Server {
	t.Helper()
	gen := planner.NewGenerator(st, discardLogger(), nil)
	gen.Now = func() time.Time { return time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC) }
	gen.NewRand = func() planner.Rand { return planner.SeededRand(7) }

	s := New(st, gen, nil, "test-key", discardLogger())
	s.now = gen.Now
	return s
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

var _ http.Handler = (*Server)(nil)
