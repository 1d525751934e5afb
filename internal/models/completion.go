package models

// IsComplete reports whether a workout counts as done: it has at least one
// exercise, every exercise has at least one set, and every set has a
// positive weight and positive reps logged.
func IsComplete(exercises []WorkoutExerciseDetail) bool {
	if len(exercises) == 0 {
		return false
	}
	for _, ex := range exercises {
		if len(ex.ExerciseSets) == 0 {
			return false
		}
		for _, s := range ex.ExerciseSets {
			if s.WeightLbs == nil || *s.WeightLbs <= 0 {
				return false
			}
			if s.Reps == nil || *s.Reps <= 0 {
				return false
			}
		}
	}
	return true
}
