package optimizer

import (
	"sort"

	"tripplanner/internal/domain/models"
)

const (
	DefaultMaxActivitiesPerDay = 3
	DefaultMaxHoursPerDay      = 8.0

	// valueReferencePrice is the fixed price scale of the activity value heuristic.
	valueReferencePrice = 50.0
)

// ActivityValue rewards rating and penalizes price per person on a fixed
// reference scale. It does not depend on the other candidates of the day.
func ActivityValue(a models.Activity) float64 {
	return (a.Quality() * 2) / (a.UnitPrice() / valueReferencePrice)
}

// SelectActivities picks at most maxPerDay activities whose durations add up
// to no more than maxHours.
//
// Candidates with a zero or negative price or duration are dropped. A missing
// price reads as +Inf, so such a candidate stays in the pool with value 0 and
// only fills leftover room. The rest are
// ranked by ActivityValue (stable, so ties keep input order) and accepted in a
// single greedy pass; a candidate that does not fit is skipped for good. This
// approximates the count+duration bounded knapsack in O(n log n) and can miss
// the optimal subset.
func SelectActivities(activities []models.Activity, maxPerDay int, maxHours float64) []models.Activity {
	type ranked struct {
		value    float64
		activity models.Activity
	}

	if maxPerDay <= 0 {
		return []models.Activity{}
	}

	pool := make([]ranked, 0, len(activities))
	for _, a := range activities {
		if a.UnitPrice() <= 0 || a.Duration() <= 0 {
			continue
		}
		pool = append(pool, ranked{value: ActivityValue(a), activity: a})
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].value > pool[j].value
	})

	selected := make([]models.Activity, 0, min(maxPerDay, len(pool)))
	hours := 0.0
	for _, c := range pool {
		if len(selected) >= maxPerDay {
			break
		}
		d := c.activity.Duration()
		if hours+d > maxHours {
			continue
		}
		selected = append(selected, c.activity)
		hours += d
	}
	return selected
}
