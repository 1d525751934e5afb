package planner

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/meltforce/repforge/internal/models"
)

// ErrInvalidRequest is returned for generation requests that cannot be served.
var ErrInvalidRequest = errors.New("invalid workout request")

// Tier ranks a muscle group within an archetype.
type Tier int

const (
	TierNone      Tier = 0
	TierSecondary Tier = 1
	TierPrimary   Tier = 2
)

// Archetype identifies a day template.
type Archetype string

const (
	ArchetypePush         Archetype = "push"
	ArchetypePull         Archetype = "pull"
	ArchetypeLegs         Archetype = "legs"
	ArchetypeUpper        Archetype = "upper"
	ArchetypeLower        Archetype = "lower"
	ArchetypeChestTriceps Archetype = "chest_triceps"
	ArchetypeBackBiceps   Archetype = "back_biceps"
	ArchetypeSplitLegs    Archetype = "split_legs"
	ArchetypeShoulders    Archetype = "shoulders"
	ArchetypeFullBody     Archetype = "full_body"
)

// MuscleTier is one entry of an archetype's ordered tier list.
type MuscleTier struct {
	Group string
	Tier  Tier
}

// Range is an inclusive integer range.
type Range struct {
	Min, Max int
}

// Profile holds the per-level ranges used when drawing a day.
type Profile struct {
	TotalExercises Range
	Sets           Range
	Reps           Range
}

// limits assigns per-group result limits either literally or from a
// primary:secondary ratio applied to the profile's exercise budget.
type limits struct {
	primary, secondary int

	ratio          bool
	ratioPrimary   int
	ratioSecondary int
}

type archetypeDef struct {
	label     string
	groups    []MuscleTier
	limits    limits
	mechanics string
}

var profiles = map[models.Level]Profile{
	models.LevelBeginner:     {TotalExercises: Range{4, 6}, Sets: Range{2, 3}, Reps: Range{10, 12}},
	models.LevelIntermediate: {TotalExercises: Range{4, 6}, Sets: Range{3, 4}, Reps: Range{8, 12}},
	models.LevelAdvanced:     {TotalExercises: Range{4, 6}, Sets: Range{3, 5}, Reps: Range{6, 10}},
}

func tiered(primary, secondary []string) []MuscleTier {
	out := make([]MuscleTier, 0, len(primary)+len(secondary))
	for _, g := range primary {
		out = append(out, MuscleTier{Group: g, Tier: TierPrimary})
	}
	for _, g := range secondary {
		out = append(out, MuscleTier{Group: g, Tier: TierSecondary})
	}
	return out
}

var archetypes = map[Archetype]archetypeDef{
	ArchetypePush: {
		label:  "Push Day",
		groups: tiered([]string{"Chest", "Shoulders"}, []string{"Triceps", "Trapezius"}),
		limits: limits{primary: 3, secondary: 2},
	},
	ArchetypePull: {
		label:  "Pull Day",
		groups: tiered([]string{"Back"}, []string{"Biceps", "Forearms"}),
		limits: limits{primary: 3, secondary: 2},
	},
	ArchetypeLegs: {
		label:  "Legs Day",
		groups: tiered([]string{"Quadriceps", "Hamstrings"}, []string{"Calves", "Glutes"}),
		limits: limits{primary: 2, secondary: 1},
	},
	ArchetypeUpper: {
		label:  "Upper Body Workout",
		groups: tiered([]string{"Back", "Chest", "Shoulders"}, []string{"Biceps", "Triceps", "Trapezius", "Forearms"}),
		limits: limits{primary: 2, secondary: 1},
	},
	ArchetypeLower: {
		label:  "Lower Body Workout",
		groups: tiered([]string{"Quadriceps", "Hamstrings", "Glutes"}, []string{"Calves", "Hip Flexors", "Adductors", "Abductors", "Shins"}),
		limits: limits{primary: 2, secondary: 1},
	},
	ArchetypeChestTriceps: {
		label:  "Chest/Triceps",
		groups: tiered([]string{"Chest"}, []string{"Triceps"}),
		limits: limits{ratio: true, ratioPrimary: 3, ratioSecondary: 2},
	},
	ArchetypeBackBiceps: {
		label:  "Back/Biceps",
		groups: tiered([]string{"Back"}, []string{"Biceps"}),
		limits: limits{ratio: true, ratioPrimary: 3, ratioSecondary: 2},
	},
	ArchetypeSplitLegs: {
		label:  "Legs",
		groups: tiered([]string{"Quadriceps", "Hamstrings", "Glutes"}, []string{"Calves", "Hip Flexors", "Adductors", "Abductors"}),
		limits: limits{ratio: true, ratioPrimary: 4, ratioSecondary: 2},
	},
	ArchetypeShoulders: {
		label:  "Shoulders",
		groups: tiered([]string{"Shoulders"}, []string{"Trapezius"}),
		limits: limits{ratio: true, ratioPrimary: 4, ratioSecondary: 2},
	},
	// Full body has no tiering: one compound movement per group.
	ArchetypeFullBody: {
		label:     "Full Body",
		groups:    tiered(nil, []string{"Chest", "Back", "Quadriceps", "Shoulders"}),
		limits:    limits{primary: 1, secondary: 1},
		mechanics: models.MechanicsCompound,
	},
}

func mustArchetype(a Archetype) archetypeDef {
	def, ok := archetypes[a]
	if !ok {
		panic(fmt.Sprintf("planner: unknown archetype %q", a))
	}
	return def
}

func mustProfile(l models.Level) Profile {
	p, ok := profiles[l]
	if !ok {
		panic(fmt.Sprintf("planner: unknown level %q", l))
	}
	return p
}

// ProfileFor returns the difficulty profile for a level.
func ProfileFor(l models.Level) (Profile, error) {
	p, ok := profiles[l]
	if !ok {
		return Profile{}, fmt.Errorf("%w: unknown level %q", ErrInvalidRequest, l)
	}
	return p, nil
}

// ParseLevel validates a level string.
func ParseLevel(s string) (models.Level, error) {
	l := models.Level(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := profiles[l]; !ok {
		return "", fmt.Errorf("%w: unknown level %q", ErrInvalidRequest, s)
	}
	return l, nil
}

// ParseWorkoutType validates a workout type string. An empty string is
// valid and means no type was requested.
func ParseWorkoutType(s string) (models.WorkoutType, error) {
	t := models.WorkoutType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case "", models.WorkoutPush, models.WorkoutPull, models.WorkoutLegs, models.WorkoutUpper, models.WorkoutLower:
		return t, nil
	}
	return "", fmt.Errorf("%w: unknown workout type %q", ErrInvalidRequest, s)
}

// Label returns the display name of an archetype.
func Label(a Archetype) string {
	return mustArchetype(a).label
}

// Groups returns the archetype's tier list in query order.
func Groups(a Archetype) []MuscleTier {
	def := mustArchetype(a)
	out := make([]MuscleTier, len(def.groups))
	copy(out, def.groups)
	return out
}

// groupLimits returns the per-group query limits for each tier.
func groupLimits(def archetypeDef, p Profile) (primary, secondary int) {
	if !def.limits.ratio {
		return def.limits.primary, def.limits.secondary
	}
	maxTotal := float64(p.TotalExercises.Max)
	primaryBudget := min(int(math.Ceil(0.7*maxTotal)), def.limits.ratioPrimary)
	secondaryBudget := min(int(math.Floor(0.3*maxTotal)), def.limits.ratioSecondary)

	var nPrimary, nSecondary int
	for _, g := range def.groups {
		switch g.Tier {
		case TierPrimary:
			nPrimary++
		case TierSecondary:
			nSecondary++
		}
	}
	return ceilDiv(primaryBudget, nPrimary), ceilDiv(secondaryBudget, nSecondary)
}

func ceilDiv(a, b int) int {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}

// tierOf returns the tier of the first group whose name appears in label,
// ignoring case.
func tierOf(groups []MuscleTier, label string) Tier {
	l := strings.ToLower(label)
	for _, g := range groups {
		if strings.Contains(l, strings.ToLower(g.Group)) {
			return g.Tier
		}
	}
	return TierNone
}
