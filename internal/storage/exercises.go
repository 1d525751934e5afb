package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/meltforce/repforge/internal/models"
	"github.com/meltforce/repforge/internal/planner"
)

var _ planner.Catalog = (*DB)(nil)

const exerciseColumns = `id, name, target_muscle_group, primary_equipment, mechanics, video_link`

// buildExerciseQuery renders the catalog filter. Muscle group is a
// case-insensitive substring match and equipment is exact membership.
func buildExerciseQuery(q planner.ExerciseQuery) (string, []any) {
	var where []string
	var args []any

	if q.MuscleGroup != "" {
		args = append(args, "%"+escapeLike(q.MuscleGroup)+"%")
		where = append(where, fmt.Sprintf("target_muscle_group ILIKE $%d", len(args)))
	}
	if q.Equipment != nil {
		args = append(args, q.Equipment)
		where = append(where, fmt.Sprintf("primary_equipment = ANY($%d)", len(args)))
	}
	if q.Mechanics != "" {
		args = append(args, q.Mechanics)
		where = append(where, fmt.Sprintf("mechanics = $%d", len(args)))
	}

	query := `SELECT ` + exerciseColumns + ` FROM exercises`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY name, id"
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	return query, args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// QueryExercises returns catalog exercises matching the filter, ordered by name.
func (db *DB) QueryExercises(ctx context.Context, q planner.ExerciseQuery) ([]models.Exercise, error) {
	if q.Equipment != nil && len(q.Equipment) == 0 {
		return nil, nil
	}
	query, args := buildExerciseQuery(q)
	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()
	return scanExercises(rows)
}

// GetExercises returns the catalog rows for the given IDs, keyed by ID.
func (db *DB) GetExercises(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Exercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+exerciseColumns+` FROM exercises WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("querying exercises by id: %w", err)
	}
	defer rows.Close()

	list, err := scanExercises(rows)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]models.Exercise, len(list))
	for _, ex := range list {
		out[ex.ID] = ex
	}
	return out, nil
}

// EquipmentCounts returns each distinct non-empty primary equipment with its
// exercise count, as stored.
func (db *DB) EquipmentCounts(ctx context.Context) ([]models.EquipmentCount, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT primary_equipment, COUNT(*)
		 FROM exercises
		 WHERE primary_equipment <> ''
		 GROUP BY primary_equipment
		 ORDER BY primary_equipment`)
	if err != nil {
		return nil, fmt.Errorf("querying equipment counts: %w", err)
	}
	defer rows.Close()

	var result []models.EquipmentCount
	for rows.Next() {
		var c models.EquipmentCount
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, fmt.Errorf("scanning equipment count: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// ReplacementExercise picks a random catalog exercise for a workout exercise:
// same target muscle group, equipment already used in the workout, and not
// the exercise being replaced. Returns ErrNotFound when none qualifies.
func (db *DB) ReplacementExercise(ctx context.Context, workoutExerciseID uuid.UUID, userID int) (*models.Exercise, error) {
	row := db.Pool.QueryRow(ctx,
		`WITH cur AS (
			SELECT we.workout_id, e.id AS exercise_id, e.target_muscle_group
			FROM workout_exercises we
			JOIN exercises e ON e.id = we.exercise_id
			JOIN user_workouts w ON w.id = we.workout_id
			WHERE we.id = $1 AND w.user_id = $2
		), equipment AS (
			SELECT DISTINCT e.primary_equipment
			FROM workout_exercises we
			JOIN exercises e ON e.id = we.exercise_id
			WHERE we.workout_id = (SELECT workout_id FROM cur)
		)
		SELECT `+exerciseColumns+`
		FROM exercises
		WHERE target_muscle_group = (SELECT target_muscle_group FROM cur)
		  AND primary_equipment IN (SELECT primary_equipment FROM equipment)
		  AND id <> (SELECT exercise_id FROM cur)
		ORDER BY random()
		LIMIT 1`,
		workoutExerciseID, userID)

	var ex models.Exercise
	err := row.Scan(&ex.ID, &ex.Name, &ex.TargetMuscleGroup, &ex.PrimaryEquipment, &ex.Mechanics, &ex.VideoLink)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying replacement exercise: %w", err)
	}
	return &ex, nil
}

// ReplaceWorkoutExercise points a workout exercise at a different catalog entry.
func (db *DB) ReplaceWorkoutExercise(ctx context.Context, workoutExerciseID, exerciseID uuid.UUID, userID int) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE workout_exercises we SET exercise_id = $2
		 FROM user_workouts w
		 WHERE we.id = $1 AND w.id = we.workout_id AND w.user_id = $3`,
		workoutExerciseID, exerciseID, userID)
	if err != nil {
		return fmt.Errorf("replacing workout exercise: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertCatalog inserts or updates catalog exercises by name. Returns rows affected.
func (db *DB) UpsertCatalog(ctx context.Context, rows []models.CatalogRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	query := `INSERT INTO exercises (name, target_muscle_group, primary_equipment, mechanics, video_link) VALUES `
	args := make([]any, 0, len(rows)*5)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		base := i * 5
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5,
		))
		args = append(args, r.Name, r.TargetMuscleGroup, r.PrimaryEquipment,
			nullIfEmpty(r.Mechanics), nullIfEmpty(r.VideoLink))
	}

	query += strings.Join(valueStrings, ",") + `
		ON CONFLICT (name) DO UPDATE SET
			target_muscle_group = EXCLUDED.target_muscle_group,
			primary_equipment = EXCLUDED.primary_equipment,
			mechanics = EXCLUDED.mechanics,
			video_link = EXCLUDED.video_link,
			updated_at = NOW()`

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("upserting catalog: %w", err)
	}
	return tag.RowsAffected(), nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func scanExercises(rows pgx.Rows) ([]models.Exercise, error) {
	var result []models.Exercise
	for rows.Next() {
		var ex models.Exercise
		if err := rows.Scan(&ex.ID, &ex.Name, &ex.TargetMuscleGroup, &ex.PrimaryEquipment, &ex.Mechanics, &ex.VideoLink); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		result = append(result, ex)
	}
	return result, rows.Err()
}
