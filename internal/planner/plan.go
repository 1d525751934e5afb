package planner

import (
	"context"
	"fmt"

	"github.com/meltforce/repforge/internal/models"
	"golang.org/x/sync/errgroup"
)

// Request describes the plan to assemble. DaysPerWeek 0 means unset.
type Request struct {
	Level       models.Level
	Equipment   []string
	WorkoutType models.WorkoutType
	DaysPerWeek int
}

type daySlot struct {
	archetype Archetype
	name      string
}

var (
	fourDaySlots = []daySlot{
		{ArchetypeUpper, "Upper Body A"},
		{ArchetypeLower, "Lower Body A"},
		{ArchetypeUpper, "Upper Body B"},
		{ArchetypeLower, "Lower Body B"},
	}
	fiveDaySlots = []daySlot{
		{ArchetypeChestTriceps, Label(ArchetypeChestTriceps)},
		{ArchetypeBackBiceps, Label(ArchetypeBackBiceps)},
		{ArchetypeSplitLegs, Label(ArchetypeSplitLegs)},
		{ArchetypeShoulders, Label(ArchetypeShoulders)},
		{ArchetypeFullBody, Label(ArchetypeFullBody)},
	}
	defaultSlots = []daySlot{
		{ArchetypePush, Label(ArchetypePush)},
		{ArchetypePull, Label(ArchetypePull)},
		{ArchetypeLegs, Label(ArchetypeLegs)},
	}
)

var singleDay = map[models.WorkoutType]Archetype{
	models.WorkoutPush:  ArchetypePush,
	models.WorkoutPull:  ArchetypePull,
	models.WorkoutLegs:  ArchetypeLegs,
	models.WorkoutUpper: ArchetypeUpper,
	models.WorkoutLower: ArchetypeLower,
}

// slotsFor picks the day layout for a request.
func slotsFor(req Request) ([]daySlot, error) {
	switch {
	case req.DaysPerWeek == 4:
		return fourDaySlots, nil
	case req.DaysPerWeek == 5:
		return fiveDaySlots, nil
	case req.WorkoutType != "":
		a, ok := singleDay[req.WorkoutType]
		if !ok {
			return nil, fmt.Errorf("%w: unknown workout type %q", ErrInvalidRequest, req.WorkoutType)
		}
		return []daySlot{{a, Label(a)}}, nil
	}
	switch req.DaysPerWeek {
	case 0, 1, 3:
		return defaultSlots, nil
	}
	return nil, fmt.Errorf("%w: %d days per week is not supported", ErrInvalidRequest, req.DaysPerWeek)
}

// IsSingleDay reports whether the request resolves to a one-day workout.
func IsSingleDay(req Request) bool {
	slots, err := slotsFor(req)
	return err == nil && len(slots) == 1
}

// AssemblePlan builds every day of the plan. Days are assembled
// concurrently, each with its own random source from newRand, drawn in day
// order before any day starts.
func AssemblePlan(ctx context.Context, cat Catalog, newRand func() Rand, req Request) ([]models.DayPlan, error) {
	if _, err := ProfileFor(req.Level); err != nil {
		return nil, err
	}
	slots, err := slotsFor(req)
	if err != nil {
		return nil, err
	}

	rands := make([]Rand, len(slots))
	for i := range slots {
		rands[i] = newRand()
	}

	days := make([]models.DayPlan, len(slots))
	g, gctx := errgroup.WithContext(ctx)
	for i, slot := range slots {
		g.Go(func() error {
			day, err := AssembleDay(gctx, cat, rands[i], slot.archetype, req.Level, req.Equipment)
			if err != nil {
				return fmt.Errorf("assembling %s: %w", slot.name, err)
			}
			day.Name = slot.name
			days[i] = day
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return days, nil
}
