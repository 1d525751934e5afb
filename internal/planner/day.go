package planner

import (
	"context"
	"fmt"
	"slices"

	"github.com/meltforce/repforge/internal/models"
)

// ExerciseQuery filters the exercise catalog. MuscleGroup matches the target
// muscle group label as a case-insensitive substring; Equipment is an exact
// allow-list; Mechanics is optional. A nil Equipment leaves equipment
// unfiltered, while a non-nil empty slice matches nothing.
type ExerciseQuery struct {
	MuscleGroup string
	Equipment   []string
	Mechanics   string
	Limit       int
}

// Catalog is the exercise catalog consumed by the assemblers.
type Catalog interface {
	QueryExercises(ctx context.Context, q ExerciseQuery) ([]models.Exercise, error)
}

type tieredSelection struct {
	sel  models.Selection
	tier Tier
}

// AssembleDay builds one day for the archetype. Catalog queries run
// sequentially, primary groups before secondary ones. With no equipment the
// day is empty and the catalog is not queried.
func AssembleDay(ctx context.Context, cat Catalog, r Rand, a Archetype, level models.Level, equipment []string) (models.DayPlan, error) {
	def := mustArchetype(a)
	prof := mustProfile(level)
	if len(equipment) == 0 {
		return models.DayPlan{Name: def.label, Exercises: []models.Selection{}}, nil
	}
	primaryLimit, secondaryLimit := groupLimits(def, prof)

	var pool []models.Selection
	for _, tier := range []Tier{TierPrimary, TierSecondary} {
		limit := primaryLimit
		if tier == TierSecondary {
			limit = secondaryLimit
		}
		if limit <= 0 {
			continue
		}
		for _, g := range def.groups {
			if g.Tier != tier {
				continue
			}
			exs, err := cat.QueryExercises(ctx, ExerciseQuery{
				MuscleGroup: g.Group,
				Equipment:   equipment,
				Mechanics:   def.mechanics,
				Limit:       limit,
			})
			if err != nil {
				return models.DayPlan{}, fmt.Errorf("querying %s exercises: %w", g.Group, err)
			}
			for _, ex := range exs {
				pool = append(pool, models.Selection{
					ExerciseID:        ex.ID,
					Name:              ex.Name,
					TargetMuscleGroup: ex.TargetMuscleGroup,
					PrimaryEquipment:  ex.PrimaryEquipment,
					Sets:              intInRange(r, prof.Sets),
					Reps:              intInRange(r, prof.Reps),
				})
			}
		}
	}

	target := intInRange(r, prof.TotalExercises)
	shuffle(r, pool)
	if len(pool) > target {
		pool = pool[:target]
	}

	ranked := make([]tieredSelection, len(pool))
	for i, s := range pool {
		ranked[i] = tieredSelection{sel: s, tier: tierOf(def.groups, s.TargetMuscleGroup)}
	}
	slices.SortStableFunc(ranked, func(x, y tieredSelection) int {
		return int(y.tier) - int(x.tier)
	})

	exercises := make([]models.Selection, len(ranked))
	for i, t := range ranked {
		exercises[i] = t.sel
	}
	return models.DayPlan{Name: def.label, Exercises: exercises}, nil
}
