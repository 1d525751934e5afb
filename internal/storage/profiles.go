package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/meltforce/repforge/internal/models"
)

// GetProfile returns the user's profile. A user without a stored profile gets
// an empty one.
func (db *DB) GetProfile(ctx context.Context, userID int) (*models.Profile, error) {
	p := &models.Profile{UserID: userID, DefaultEquipment: []string{}}
	err := db.Pool.QueryRow(ctx,
		`SELECT username, first_name, last_name, date_of_birth, height_inches, weight_lbs,
		 default_level, default_equipment, updated_at
		 FROM profiles WHERE user_id = $1`, userID,
	).Scan(&p.Username, &p.FirstName, &p.LastName, &p.DateOfBirth, &p.HeightInches, &p.WeightLbs,
		&p.DefaultLevel, &p.DefaultEquipment, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying profile: %w", err)
	}
	return p, nil
}

// UpsertProfile stores the profile for p.UserID.
func (db *DB) UpsertProfile(ctx context.Context, p models.Profile) error {
	equipment := p.DefaultEquipment
	if equipment == nil {
		equipment = []string{}
	}
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO profiles (user_id, username, first_name, last_name, date_of_birth,
		 height_inches, weight_lbs, default_level, default_equipment)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		 ON CONFLICT (user_id) DO UPDATE SET
			username = EXCLUDED.username,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			date_of_birth = EXCLUDED.date_of_birth,
			height_inches = EXCLUDED.height_inches,
			weight_lbs = EXCLUDED.weight_lbs,
			default_level = EXCLUDED.default_level,
			default_equipment = EXCLUDED.default_equipment,
			updated_at = NOW()`,
		p.UserID, p.Username, p.FirstName, p.LastName, p.DateOfBirth,
		p.HeightInches, p.WeightLbs, p.DefaultLevel, equipment)
	if err != nil {
		return fmt.Errorf("upserting profile: %w", err)
	}
	return nil
}
