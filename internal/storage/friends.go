package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/meltforce/repforge/internal/models"
)

// ErrNotFriends is returned when an operation requires an accepted friendship.
var ErrNotFriends = errors.New("users are not friends")

const userSummaryColumns = `u.id, COALESCE(NULLIF(p.username, ''), u.login), u.display_name`

// SearchUsers finds other users whose username or login contains q.
func (db *DB) SearchUsers(ctx context.Context, q string, excludeUserID, limit int) ([]models.UserSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT `+userSummaryColumns+`
		 FROM users u
		 LEFT JOIN profiles p ON p.user_id = u.id
		 WHERE u.id <> $1 AND (p.username ILIKE $2 OR u.login ILIKE $2)
		 ORDER BY 2
		 LIMIT $3`,
		excludeUserID, "%"+escapeLike(q)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("searching users: %w", err)
	}
	defer rows.Close()
	return scanUserSummaries(rows)
}

// SendFriendRequest creates a pending request from userID to friendID. If
// friendID already asked userID, that request is accepted instead.
func (db *DB) SendFriendRequest(ctx context.Context, userID, friendID int) (*models.Friendship, error) {
	var f models.Friendship
	err := db.Pool.QueryRow(ctx,
		`UPDATE friendships SET status = 'accepted'
		 WHERE user_id = $2 AND friend_id = $1 AND status = 'pending'
		 RETURNING id, user_id, friend_id, status, created_at`,
		userID, friendID,
	).Scan(&f.ID, &f.UserID, &f.FriendID, &f.Status, &f.CreatedAt)
	if err == nil {
		return &f, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("accepting reverse friend request: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`INSERT INTO friendships (user_id, friend_id) VALUES ($1, $2)
		 ON CONFLICT (user_id, friend_id) DO UPDATE SET user_id = EXCLUDED.user_id
		 RETURNING id, user_id, friend_id, status, created_at`,
		userID, friendID,
	).Scan(&f.ID, &f.UserID, &f.FriendID, &f.Status, &f.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting friend request: %w", err)
	}
	return &f, nil
}

// PendingFriendRequests returns requests waiting for userID to accept.
func (db *DB) PendingFriendRequests(ctx context.Context, userID int) ([]models.Friendship, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, friend_id, status, created_at
		 FROM friendships
		 WHERE friend_id = $1 AND status = 'pending'
		 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying friend requests: %w", err)
	}
	defer rows.Close()

	var result []models.Friendship
	for rows.Next() {
		var f models.Friendship
		if err := rows.Scan(&f.ID, &f.UserID, &f.FriendID, &f.Status, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning friend request: %w", err)
		}
		result = append(result, f)
	}
	return result, rows.Err()
}

// AcceptFriendRequest accepts a pending request addressed to userID.
func (db *DB) AcceptFriendRequest(ctx context.Context, requestID int64, userID int) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE friendships SET status = 'accepted'
		 WHERE id = $1 AND friend_id = $2 AND status = 'pending'`,
		requestID, userID)
	if err != nil {
		return fmt.Errorf("accepting friend request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveFriend deletes the friendship or request between two users, in either direction.
func (db *DB) RemoveFriend(ctx context.Context, userID, friendID int) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM friendships
		 WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)`,
		userID, friendID)
	if err != nil {
		return fmt.Errorf("removing friend: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Friends lists the accepted friends of userID.
func (db *DB) Friends(ctx context.Context, userID int) ([]models.UserSummary, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+userSummaryColumns+`
		 FROM friendships f
		 JOIN users u ON u.id = CASE WHEN f.user_id = $1 THEN f.friend_id ELSE f.user_id END
		 LEFT JOIN profiles p ON p.user_id = u.id
		 WHERE (f.user_id = $1 OR f.friend_id = $1) AND f.status = 'accepted'
		 ORDER BY 2`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying friends: %w", err)
	}
	defer rows.Close()
	return scanUserSummaries(rows)
}

// AreFriends reports whether two users have an accepted friendship.
func (db *DB) AreFriends(ctx context.Context, a, b int) (bool, error) {
	return areFriends(ctx, db.Pool, a, b)
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func areFriends(ctx context.Context, q queryRower, a, b int) (bool, error) {
	var ok bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM friendships
			WHERE status = 'accepted'
			  AND ((user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1))
		)`, a, b).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("checking friendship: %w", err)
	}
	return ok, nil
}

// FriendActivity returns friends' workouts scheduled since the given time.
func (db *DB) FriendActivity(ctx context.Context, userID int, since time.Time, limit int) ([]models.FriendActivity, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT `+userSummaryColumns+`, w.id, COALESCE(w.custom_name, w.name), w.scheduled_date, `+completedExpr+`
		 FROM friendships f
		 JOIN users u ON u.id = CASE WHEN f.user_id = $1 THEN f.friend_id ELSE f.user_id END
		 LEFT JOIN profiles p ON p.user_id = u.id
		 JOIN user_workouts w ON w.user_id = u.id
		 WHERE (f.user_id = $1 OR f.friend_id = $1) AND f.status = 'accepted'
		   AND w.scheduled_date >= $2
		 ORDER BY w.scheduled_date DESC, w.created_at DESC
		 LIMIT $3`,
		userID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("querying friend activity: %w", err)
	}
	defer rows.Close()

	var result []models.FriendActivity
	for rows.Next() {
		var a models.FriendActivity
		if err := rows.Scan(&a.Friend.ID, &a.Friend.Username, &a.Friend.DisplayName,
			&a.WorkoutID, &a.WorkoutName, &a.ScheduledDate, &a.Completed); err != nil {
			return nil, fmt.Errorf("scanning friend activity: %w", err)
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func scanUserSummaries(rows pgx.Rows) ([]models.UserSummary, error) {
	var result []models.UserSummary
	for rows.Next() {
		var u models.UserSummary
		if err := rows.Scan(&u.ID, &u.Username, &u.DisplayName); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		result = append(result, u)
	}
	return result, rows.Err()
}
