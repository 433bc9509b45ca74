package models

// MealMetrics summarizes a user's diet adherence.
type MealMetrics struct {
	Count              int `json:"count"`
	CountOnDiet        int `json:"count_on_diet"`
	CountNotOnDiet     int `json:"count_not_on_diet"`
	BestOnDietSequence int `json:"best_on_diet_sequence"`
}

// ComputeMealMetrics runs a single pass over the meals, which must already be
// ordered by date_and_time descending. The streak counter resets on every
// non-adherent meal; the maximum it reaches is the best sequence. An empty
// slice yields all zeros.
func ComputeMealMetrics(meals []Meal) MealMetrics {
	var metrics MealMetrics
	currentSequence := 0

	for _, meal := range meals {
		metrics.Count++
		if meal.OnDiet == OnDietYes {
			metrics.CountOnDiet++
			currentSequence++
			if currentSequence > metrics.BestOnDietSequence {
				metrics.BestOnDietSequence = currentSequence
			}
		} else {
			metrics.CountNotOnDiet++
			currentSequence = 0
		}
	}

	return metrics
}
