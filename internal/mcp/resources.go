package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) week(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)
	start := weekStart(time.Now())
	end := start.AddDate(0, 0, 7)

	workouts, err := h.ds.QueryWorkouts(ctx, start, end, uid)
	if err != nil {
		return nil, err
	}

	completed := 0
	for _, w := range workouts {
		if w.Completed {
			completed++
		}
	}
	summary := map[string]any{
		"week_start": start.Format(time.DateOnly),
		"week_end":   end.AddDate(0, 0, -1).Format(time.DateOnly),
		"completed":  completed,
		"workouts":   workouts,
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
