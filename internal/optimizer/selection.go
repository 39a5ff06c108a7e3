package optimizer

import "tripplanner/internal/domain/models"

// SelectBestFlight scores flights on price and duration (both minimized) and
// returns the best one, or nil when there is nothing to choose from.
func (o *Optimizer) SelectBestFlight(flights []models.Flight) *models.Flight {
	if len(flights) == 0 {
		return nil
	}

	prices := make([]float64, len(flights))
	durations := make([]float64, len(flights))
	for i, f := range flights {
		prices[i] = f.Price()
		durations[i] = f.Duration()
	}

	idx := bestIndex(
		Normalize(prices, Minimize),
		Normalize(durations, Minimize),
		o.weights.Cost, o.weights.FlightTime,
	)
	best := flights[idx]
	return &best
}

// SelectBestHotel scores hotels on price (minimized) and rating (maximized)
// and returns the best one, or nil when there is nothing to choose from.
func (o *Optimizer) SelectBestHotel(hotels []models.Hotel) *models.Hotel {
	if len(hotels) == 0 {
		return nil
	}

	prices := make([]float64, len(hotels))
	ratings := make([]float64, len(hotels))
	for i, h := range hotels {
		prices[i] = h.Price()
		ratings[i] = h.Quality()
	}

	idx := bestIndex(
		Normalize(prices, Minimize),
		Normalize(ratings, Maximize),
		o.weights.Cost, o.weights.HotelQuality,
	)
	best := hotels[idx]
	return &best
}
