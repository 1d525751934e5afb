package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile holds a user's body metrics and generation defaults.
type Profile struct {
	UserID           int        `json:"user_id"`
	Username         string     `json:"username"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	DateOfBirth      *time.Time `json:"date_of_birth,omitempty"`
	HeightInches     *float64   `json:"height_inches,omitempty"`
	WeightLbs        *float64   `json:"weight_lbs,omitempty"`
	DefaultLevel     *Level     `json:"default_level,omitempty"`
	DefaultEquipment []string   `json:"default_equipment"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// FriendshipStatus is the state of a friend request.
type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
)

// Friendship is a friend request or an established friendship between two users.
type Friendship struct {
	ID        int64            `json:"id"`
	UserID    int              `json:"user_id"`
	FriendID  int              `json:"friend_id"`
	Status    FriendshipStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}

// UserSummary is the public view of another user.
type UserSummary struct {
	ID          int    `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// FriendActivity is a recent workout of a friend.
type FriendActivity struct {
	Friend        UserSummary `json:"friend"`
	WorkoutID     uuid.UUID   `json:"workout_id"`
	WorkoutName   string      `json:"workout_name"`
	ScheduledDate time.Time   `json:"scheduled_date"`
	Completed     bool        `json:"completed"`
}
