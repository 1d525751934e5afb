package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/meltforce/repforge/internal/models"
)

// LocalUserID is the user seeded by the initial migration for dev mode.
const LocalUserID = 1

// GetOrCreateUser finds or creates a user by Tailscale login name.
// Returns the user ID. Updates last_seen and display_name on each call.
func (db *DB) GetOrCreateUser(ctx context.Context, login, displayName string) (int, error) {
	var id int
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO users (login, display_name)
		VALUES ($1, $2)
		ON CONFLICT (login) DO UPDATE
			SET last_seen = NOW(), display_name = COALESCE(NULLIF($2, ''), users.display_name)
		RETURNING id
	`, login, displayName).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upserting user %s: %w", login, err)
	}
	return id, nil
}

// GetUser returns the public view of a user.
func (db *DB) GetUser(ctx context.Context, userID int) (*models.UserSummary, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+userSummaryColumns+`
		 FROM users u
		 LEFT JOIN profiles p ON p.user_id = u.id
		 WHERE u.id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	defer rows.Close()

	users, err := scanUserSummaries(rows)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrNotFound
	}
	return &users[0], nil
}

// UserExists reports whether a user ID exists.
func (db *DB) UserExists(ctx context.Context, userID int) (bool, error) {
	var ok bool
	err := db.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&ok)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("checking user: %w", err)
	}
	return ok, nil
}
