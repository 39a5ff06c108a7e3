package models

// DayPlan holds the activities accepted for one full trip day, in acceptance order.
type DayPlan struct {
	Date           string     `json:"date"`
	Activities     []Activity `json:"activities"`
	TotalCost      float64    `json:"total_cost"`
	TotalTimeHours float64    `json:"total_time_hours"`
}

// Summary aggregates cost and time over the whole trip.
type Summary struct {
	TotalCost      float64 `json:"total_cost"`
	TotalTimeHours float64 `json:"total_time_hours"`
	DurationDays   int     `json:"duration_days"`
	DepartureDate  string  `json:"departure_date"`
	ReturnDate     string  `json:"return_date"`
}

// Itinerary is the optimizer result. Flight and Hotel are nil when no
// candidate was available.
type Itinerary struct {
	Flight  *Flight   `json:"flight"`
	Hotel   *Hotel    `json:"hotel"`
	Days    []DayPlan `json:"days"`
	Summary Summary   `json:"summary"`
}

// ActivityCount returns the number of activities across all days.
func (it Itinerary) ActivityCount() int {
	n := 0
	for _, d := range it.Days {
		n += len(d.Activities)
	}
	return n
}

// Candidates bundles the materialized option lists handed to the optimizer.
type Candidates struct {
	Flights    []Flight   `json:"flights"`
	Hotels     []Hotel    `json:"hotels"`
	Activities []Activity `json:"activities"`
}
