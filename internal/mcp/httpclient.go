package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/repforge/internal/models"
	"github.com/meltforce/repforge/internal/planner"
)

// HTTPClient implements DataSource by calling the RepForge REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale). The server
// identifies the user from the tailnet connection, so userID is ignored.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, body any) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("httpclient: encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, bytes.TrimSpace(data))
	}

	return data, nil
}

func (c *HTTPClient) GenerateWorkoutPlan(ctx context.Context, _ int, req PlanRequest) ([]models.DayPlan, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/v1/workouts/generate", nil, req)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Days []models.DayPlan `json:"days"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("httpclient: decode plan: %w", err)
	}
	return resp.Days, nil
}

// QueryWorkouts requests [start, end). The REST API treats end as an
// inclusive date.
func (c *HTTPClient) QueryWorkouts(ctx context.Context, start, end time.Time, _ int) ([]models.Workout, error) {
	params := url.Values{}
	params.Set("start", start.Format(time.DateOnly))
	params.Set("end", end.AddDate(0, 0, -1).Format(time.DateOnly))

	body, err := c.do(ctx, http.MethodGet, "/api/v1/workouts", params, nil)
	if err != nil {
		return nil, err
	}

	var workouts []models.Workout
	if err := json.Unmarshal(body, &workouts); err != nil {
		return nil, fmt.Errorf("httpclient: decode workouts: %w", err)
	}
	return workouts, nil
}

func (c *HTTPClient) GetWorkoutDetail(ctx context.Context, workoutID uuid.UUID, _ int) (*models.WorkoutDetail, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v1/workouts/"+workoutID.String(), nil, nil)
	if err != nil {
		return nil, err
	}

	var detail models.WorkoutDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, fmt.Errorf("httpclient: decode workout: %w", err)
	}
	return &detail, nil
}

func (c *HTTPClient) EquipmentCounts(ctx context.Context) ([]models.EquipmentCount, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v1/equipment", nil, nil)
	if err != nil {
		return nil, err
	}

	var counts []models.EquipmentCount
	if err := json.Unmarshal(body, &counts); err != nil {
		return nil, fmt.Errorf("httpclient: decode equipment: %w", err)
	}
	return counts, nil
}

func (c *HTTPClient) QueryExercises(ctx context.Context, q planner.ExerciseQuery) ([]models.Exercise, error) {
	params := url.Values{}
	if q.MuscleGroup != "" {
		params.Set("muscle", q.MuscleGroup)
	}
	if len(q.Equipment) > 0 {
		params.Set("equipment", strings.Join(q.Equipment, ","))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	body, err := c.do(ctx, http.MethodGet, "/api/v1/exercises", params, nil)
	if err != nil {
		return nil, err
	}

	var exercises []models.Exercise
	if err := json.Unmarshal(body, &exercises); err != nil {
		return nil, fmt.Errorf("httpclient: decode exercises: %w", err)
	}
	return exercises, nil
}
