package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/repforge/internal/models"
)

// TestHandleMeDefault verifies the /api/v1/me endpoint returns the dev user
// identity when no Tailscale middleware is active.
func TestHandleMeDefault(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	ctx := context.WithValue(req.Context(), userInfoKey, UserInfo{Login: "local", DisplayName: "Local Dev User"})
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	s.handleMe(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var info UserInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if info.Login != "local" {
		t.Errorf("login = %q, want %q", info.Login, "local")
	}
	if info.DisplayName != "Local Dev User" {
		t.Errorf("display_name = %q, want %q", info.DisplayName, "Local Dev User")
	}
}

// TestHandleMeTailscaleUser verifies the /api/v1/me endpoint returns the
// Tailscale user identity when set in context.
func TestHandleMeTailscaleUser(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	ctx := context.WithValue(req.Context(), userInfoKey, UserInfo{Login: "alice@example.com", DisplayName: "Alice"})
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	s.handleMe(rec, req)

	var info UserInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if info.Login != "alice@example.com" {
		t.Errorf("login = %q, want %q", info.Login, "alice@example.com")
	}
	if info.DisplayName != "Alice" {
		t.Errorf("display_name = %q, want %q", info.DisplayName, "Alice")
	}
}

// TestGenerateUsesProfileDefaults fills level and equipment from the profile
// and writes the default three-day split starting today.
func TestGenerateUsesProfileDefaults(t *testing.T) {
	st := newFakeStore()
	st.exercises = testCatalog()
	level := models.LevelBeginner
	st.profile = models.Profile{DefaultLevel: &level, DefaultEquipment: []string{"Barbell"}}
	s := newTestServer(t, st)

	rec := do(t, s, http.MethodPost, "/api/v1/workouts/generate", `{}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var resp generateResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if resp.StartDate != "2025-03-12" {
		t.Errorf("start_date = %q", resp.StartDate)
	}
	if len(resp.Days) != 3 || len(st.workouts) != 3 {
		t.Fatalf("days = %d, stored workouts = %d, want 3", len(resp.Days), len(st.workouts))
	}
	for i, w := range st.workouts {
		want := time.Date(2025, 3, 12+i, 0, 0, 0, 0, time.UTC)
		if !w.ScheduledDate.Equal(want) {
			t.Errorf("workout %d scheduled %v, want %v", i, w.ScheduledDate, want)
		}
		if w.Notes != "beginner split workout" || w.UserID != 1 {
			t.Errorf("workout %d = %+v", i, w)
		}
	}
	for _, d := range resp.Days {
		for _, e := range d.Exercises {
			if e.PrimaryEquipment != "Barbell" {
				t.Errorf("%s uses %s", e.Name, e.PrimaryEquipment)
			}
		}
	}
}

// TestGenerateRejectsBadInput maps validation failures to 400.
func TestGenerateRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown level", `{"level":"expert","equipment":["Barbell"]}`},
		{"unknown type", `{"level":"beginner","equipment":["Barbell"],"workout_type":"arms"}`},
		{"unsupported days", `{"level":"beginner","equipment":["Barbell"],"days_per_week":2}`},
		{"no equipment", `{"level":"beginner"}`},
		{"bad date", `{"level":"beginner","equipment":["Barbell"],"start_date":"next week"}`},
		{"bad json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newFakeStore()
			st.exercises = testCatalog()
			rec := do(t, newTestServer(t, st), http.MethodPost, "/api/v1/workouts/generate", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body %s)", rec.Code, rec.Body)
			}
			if len(st.workouts) != 0 {
				t.Errorf("stored %d workouts on rejected request", len(st.workouts))
			}
		})
	}
}

// TestGenerateReportsPartialWrite returns how many days were stored when a
// later day fails.
func TestGenerateReportsPartialWrite(t *testing.T) {
	st := newFakeStore()
	st.exercises = testCatalog()
	st.failWorkoutN = 2
	s := newTestServer(t, st)

	rec := do(t, s, http.MethodPost, "/api/v1/workouts/generate",
		`{"level":"advanced","equipment":["Barbell","Dumbbell"],"days_per_week":3}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if body["days_written"] != float64(1) {
		t.Errorf("days_written = %v, want 1", body["days_written"])
	}
	if len(st.workouts) != 1 {
		t.Errorf("stored workouts = %d, want 1", len(st.workouts))
	}
}

// TestGenerateSingleDay writes one workout for a workout type.
func TestGenerateSingleDay(t *testing.T) {
	st := newFakeStore()
	st.exercises = testCatalog()
	s := newTestServer(t, st)

	rec := do(t, s, http.MethodPost, "/api/v1/workouts/generate",
		`{"level":"intermediate","equipment":["Dumbbell"],"workout_type":"pull","start_date":"2025-04-01"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if len(st.workouts) != 1 {
		t.Fatalf("stored workouts = %d, want 1", len(st.workouts))
	}
	w := st.workouts[0]
	if w.Name != "Pull Day" || w.Notes != "intermediate single-day workout" {
		t.Errorf("workout = %+v", w)
	}
	if !w.ScheduledDate.Equal(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("scheduled = %v", w.ScheduledDate)
	}
}

// TestCustomWorkout applies default sets and reps and writes set rows.
func TestCustomWorkout(t *testing.T) {
	st := newFakeStore()
	st.exercises = testCatalog()
	s := newTestServer(t, st)

	a, b := st.exercises[0].ID, st.exercises[1].ID
	body := fmt.Sprintf(`{"exercises":[{"exercise_id":%q},{"exercise_id":%q,"sets":5,"reps":8}],"notes":"home gym"}`, a, b)
	rec := do(t, s, http.MethodPost, "/api/v1/workouts/custom", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	if len(st.workouts) != 1 || st.workouts[0].Name != "Custom Workout" || st.workouts[0].Notes != "home gym" {
		t.Fatalf("workouts = %+v", st.workouts)
	}
	if len(st.weRows) != 2 {
		t.Fatalf("workout exercises = %d, want 2", len(st.weRows))
	}
	if st.weRows[0].Sets != 3 || st.weRows[0].RepsPerSet != 10 {
		t.Errorf("defaults = %d x %d, want 3 x 10", st.weRows[0].Sets, st.weRows[0].RepsPerSet)
	}
	if st.weRows[1].Sets != 5 || st.weRows[1].RepsPerSet != 8 {
		t.Errorf("explicit = %d x %d, want 5 x 8", st.weRows[1].Sets, st.weRows[1].RepsPerSet)
	}
	if len(st.setRows) != 8 {
		t.Errorf("set rows = %d, want 8", len(st.setRows))
	}
}

// TestCustomWorkoutUnknownExercise rejects IDs missing from the catalog.
func TestCustomWorkoutUnknownExercise(t *testing.T) {
	st := newFakeStore()
	st.exercises = testCatalog()
	rec := do(t, newTestServer(t, st), http.MethodPost, "/api/v1/workouts/custom",
		fmt.Sprintf(`{"exercises":[{"exercise_id":%q}]}`, uuid.New()))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if len(st.workouts) != 0 {
		t.Errorf("stored %d workouts", len(st.workouts))
	}
}

// TestEquipmentNormalizedAndCached merges case variants and serves the
// second request from the cache.
func TestEquipmentNormalizedAndCached(t *testing.T) {
	st := newFakeStore()
	st.equipment = []models.EquipmentCount{
		{Name: "dumbbell", Count: 4},
		{Name: "barbell", Count: 3},
		{Name: "Barbell", Count: 2},
		{Name: " ", Count: 1},
	}
	s := newTestServer(t, st)

	for range 2 {
		rec := do(t, s, http.MethodGet, "/api/v1/equipment", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var list []models.EquipmentCount
		if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
			t.Fatalf("decode error: %v", err)
		}
		want := []models.EquipmentCount{{Name: "Barbell", Count: 5}, {Name: "Dumbbell", Count: 4}}
		if len(list) != len(want) || list[0] != want[0] || list[1] != want[1] {
			t.Errorf("equipment = %+v, want %+v", list, want)
		}
	}
	if st.equipmentCalls != 1 {
		t.Errorf("store calls = %d, want 1", st.equipmentCalls)
	}
}

// TestExercisesFilter passes muscle and equipment filters to the catalog.
func TestExercisesFilter(t *testing.T) {
	st := newFakeStore()
	st.exercises = testCatalog()
	rec := do(t, newTestServer(t, st), http.MethodGet, "/api/v1/exercises?muscle=chest&equipment=Dumbbell", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var list []models.Exercise
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Dumbbell Chest Exercise" {
		t.Errorf("exercises = %+v", list)
	}
}

// TestGetWorkoutNotFound maps a missing workout to 404.
func TestGetWorkoutNotFound(t *testing.T) {
	s := newTestServer(t, newFakeStore())
	if rec := do(t, s, http.MethodGet, "/api/v1/workouts/"+uuid.NewString(), ""); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/api/v1/workouts/not-a-uuid", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestQueryWorkoutsEmpty returns an empty array rather than null.
func TestQueryWorkoutsEmpty(t *testing.T) {
	rec := do(t, newTestServer(t, newFakeStore()), http.MethodGet, "/api/v1/workouts", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("body = %s, want []", got)
	}
}

// TestReplaceExercise swaps in the replacement or reports 404 when none exists.
func TestReplaceExercise(t *testing.T) {
	st := newFakeStore()
	s := newTestServer(t, st)
	weID := uuid.New()

	rec := do(t, s, http.MethodPost, "/api/v1/workout-exercises/"+weID.String()+"/replace", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status without replacement = %d, want 404", rec.Code)
	}

	st.replacement = &models.Exercise{ID: uuid.New(), Name: "Dumbbell Row"}
	rec = do(t, s, http.MethodPost, "/api/v1/workout-exercises/"+weID.String()+"/replace", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if st.replaced[weID] != st.replacement.ID {
		t.Errorf("workout exercise points at %v, want %v", st.replaced[weID], st.replacement.ID)
	}
}

// TestShareWorkoutRequiresFriendship maps non-friends to 403.
func TestShareWorkoutRequiresFriendship(t *testing.T) {
	st := newFakeStore()
	s := newTestServer(t, st)
	path := "/api/v1/workouts/" + uuid.NewString() + "/share"

	if rec := do(t, s, http.MethodPost, path, `{"friend_id":2}`); rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}

	st.friends[[2]int{1, 2}] = true
	if rec := do(t, s, http.MethodPost, path, `{"friend_id":2}`); rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
	if st.shares != 1 {
		t.Errorf("shares = %d, want 1", st.shares)
	}
}

// TestSendFriendRequest rejects self requests and unknown users.
func TestSendFriendRequest(t *testing.T) {
	s := newTestServer(t, newFakeStore())
	tests := []struct {
		body string
		want int
	}{
		{`{"friend_id":1}`, http.StatusBadRequest},
		{`{"friend_id":0}`, http.StatusBadRequest},
		{`{"friend_id":500}`, http.StatusNotFound},
		{`{"friend_id":3}`, http.StatusCreated},
	}
	for _, tt := range tests {
		if rec := do(t, s, http.MethodPost, "/api/v1/friends/requests", tt.body); rec.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.body, rec.Code, tt.want)
		}
	}
}

// TestPutProfile validates the default level before storing.
func TestPutProfile(t *testing.T) {
	st := newFakeStore()
	s := newTestServer(t, st)

	rec := do(t, s, http.MethodPut, "/api/v1/profile", `{"username":"sam","default_level":"legendary"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if st.upserted != nil {
		t.Fatal("invalid profile was stored")
	}

	rec = do(t, s, http.MethodPut, "/api/v1/profile",
		`{"username":" sam ","default_level":"Advanced","default_equipment":["Barbell"],"weight_lbs":180}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if st.upserted.Username != "sam" || st.upserted.DefaultLevel == nil || *st.upserted.DefaultLevel != models.LevelAdvanced {
		t.Errorf("stored profile = %+v", st.upserted)
	}
	if st.upserted.UserID != 1 {
		t.Errorf("user_id = %d, want 1", st.upserted.UserID)
	}
}

// TestCatalogIngestRequiresAPIKey rejects uploads without the key.
func TestCatalogIngestRequiresAPIKey(t *testing.T) {
	s := newTestServer(t, newFakeStore())
	if rec := do(t, s, http.MethodPost, "/api/v1/ingest/catalog", "name\n"); rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

// TestWeekStart returns the Monday of the week.
func TestWeekStart(t *testing.T) {
	monday := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	for _, day := range []int{10, 12, 16} {
		in := time.Date(2025, 3, day, 18, 30, 0, 0, time.UTC)
		if got := weekStart(in); !got.Equal(monday) {
			t.Errorf("weekStart(%v) = %v, want %v", in, got, monday)
		}
	}
}

// TestParseWeekRange covers the default week and explicit inclusive ends.
func TestParseWeekRange(t *testing.T) {
	s := newTestServer(t, newFakeStore())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/workouts", nil)
	start, end, err := s.parseWeekRange(req)
	if err != nil {
		t.Fatal(err)
	}
	if !start.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)) || !end.Equal(time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("default range = %v - %v", start, end)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/workouts?start=2025-01-01&end=2025-01-31", nil)
	start, end, err = s.parseWeekRange(req)
	if err != nil {
		t.Fatal(err)
	}
	if !start.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) || !end.Equal(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("explicit range = %v - %v", start, end)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/workouts?start=2025-01-31&end=2025-01-01", nil)
	if _, _, err := s.parseWeekRange(req); err == nil {
		t.Error("expected error for reversed range")
	}
}
