package optimizer

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"tripplanner/internal/domain"
	"tripplanner/internal/domain/models"
	"tripplanner/internal/utils"
)

// WeightTolerance is how far cost+secondary weights may drift from 1.0.
const WeightTolerance = 0.01

// Weights is the resolved cost/secondary trade-off of an Optimizer.
// FlightTime and HotelQuality default to Time.
type Weights struct {
	Cost         float64 `json:"cost_weight"`
	Time         float64 `json:"time_weight"`
	FlightTime   float64 `json:"flight_time_weight"`
	HotelQuality float64 `json:"hotel_quality_weight"`
}

// Optimizer builds itineraries. It holds no mutable state and is safe for
// concurrent use.
type Optimizer struct {
	weights   Weights
	maxPerDay int
	maxHours  float64
	logger    zerolog.Logger
}

type settings struct {
	flightTime   *float64
	hotelQuality *float64
	maxPerDay    int
	maxHours     float64
	logger       zerolog.Logger
}

// Option customizes an Optimizer.
type Option func(*settings)

// WithFlightTimeWeight sets the duration weight for flights (defaults to the time weight).
func WithFlightTimeWeight(w float64) Option {
	return func(s *settings) { s.flightTime = &w }
}

// WithHotelQualityWeight sets the rating weight for hotels (defaults to the time weight).
func WithHotelQualityWeight(w float64) Option {
	return func(s *settings) { s.hotelQuality = &w }
}

// WithActivityLimits sets the per-day activity count and hour budget.
func WithActivityLimits(maxPerDay int, maxHours float64) Option {
	return func(s *settings) {
		s.maxPerDay = maxPerDay
		s.maxHours = maxHours
	}
}

// WithLogger attaches a diagnostics logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// New validates the weight pair and returns an Optimizer.
// It fails with domain.ConfigurationError when a weight is outside [0,1] or
// when costWeight and a secondary weight do not add up to 1.0.
func New(costWeight, timeWeight float64, opts ...Option) (*Optimizer, error) {
	s := settings{
		maxPerDay: DefaultMaxActivitiesPerDay,
		maxHours:  DefaultMaxHoursPerDay,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&s)
	}

	if err := checkPair("time_weight", costWeight, timeWeight); err != nil {
		return nil, err
	}
	w := Weights{Cost: costWeight, Time: timeWeight, FlightTime: timeWeight, HotelQuality: timeWeight}
	if s.flightTime != nil {
		if err := checkPair("flight_time_weight", costWeight, *s.flightTime); err != nil {
			return nil, err
		}
		w.FlightTime = *s.flightTime
	}
	if s.hotelQuality != nil {
		if err := checkPair("hotel_quality_weight", costWeight, *s.hotelQuality); err != nil {
			return nil, err
		}
		w.HotelQuality = *s.hotelQuality
	}

	if s.maxPerDay < 1 {
		return nil, domain.ConfigurationError{Field: "max_activities_per_day", Msg: "must be at least 1"}
	}
	if !(s.maxHours > 0) || math.IsInf(s.maxHours, 0) {
		return nil, domain.ConfigurationError{Field: "max_hours_per_day", Msg: "must be a positive number of hours"}
	}

	return &Optimizer{
		weights:   w,
		maxPerDay: s.maxPerDay,
		maxHours:  s.maxHours,
		logger:    s.logger,
	}, nil
}

func checkPair(field string, cost, secondary float64) error {
	if !inUnitRange(cost) {
		return domain.ConfigurationError{Field: "cost_weight", Msg: fmt.Sprintf("%v is outside [0,1]", cost)}
	}
	if !inUnitRange(secondary) {
		return domain.ConfigurationError{Field: field, Msg: fmt.Sprintf("%v is outside [0,1]", secondary)}
	}
	if sum := cost + secondary; math.Abs(sum-1.0) > WeightTolerance {
		return domain.ConfigurationError{
			Field: field,
			Msg:   fmt.Sprintf("cost_weight + %s must equal 1.0, got %.3f", field, sum),
		}
	}
	return nil
}

func inUnitRange(w float64) bool {
	return w >= 0 && w <= 1
}

// Weights returns the resolved weights.
func (o *Optimizer) Weights() Weights {
	return o.weights
}

// CreateItinerary picks the best flight and hotel, plans every full day
// strictly between departureDate and returnDate, and totals the trip.
//
// Dates must be YYYY-MM-DD; anything else fails with domain.InvalidDateError
// and no itinerary. Empty candidate lists are not errors. Activities dated
// outside the trip window are ignored. A return date on or before the
// departure date yields no day plans and a non-positive duration.
func (o *Optimizer) CreateItinerary(
	flights []models.Flight,
	hotels []models.Hotel,
	activities []models.Activity,
	departureDate, returnDate string,
) (*models.Itinerary, error) {
	departure, err := utils.ParseDate(departureDate)
	if err != nil {
		return nil, domain.InvalidDateError{Field: "departure_date", Value: departureDate, Err: err}
	}
	ret, err := utils.ParseDate(returnDate)
	if err != nil {
		return nil, domain.InvalidDateError{Field: "return_date", Value: returnDate, Err: err}
	}

	o.logger.Debug().
		Int("flights", len(flights)).
		Int("hotels", len(hotels)).
		Int("activities", len(activities)).
		Msg("creating optimized itinerary")

	durationDays := utils.DaysBetween(departure, ret)
	if durationDays <= 0 {
		o.logger.Warn().
			Str("departure_date", departureDate).
			Str("return_date", returnDate).
			Msg("return date is not after departure date, no days to plan")
	}

	it := &models.Itinerary{
		Flight: o.SelectBestFlight(flights),
		Hotel:  o.SelectBestHotel(hotels),
		Days:   []models.DayPlan{},
	}

	totalCost, totalTime := 0.0, 0.0
	if it.Flight != nil {
		totalCost += models.Amount(it.Flight.TotalPrice)
		totalTime += models.Amount(it.Flight.DurationHours)
	}
	if it.Hotel != nil {
		totalCost += models.Amount(it.Hotel.TotalPrice)
	}

	byDate := groupByDate(activities)
	for _, day := range utils.FullTripDays(departure, ret) {
		plan := o.planDay(utils.FormatDate(day), byDate)
		totalCost += plan.TotalCost
		totalTime += plan.TotalTimeHours
		it.Days = append(it.Days, plan)
	}

	it.Summary = models.Summary{
		TotalCost:      totalCost,
		TotalTimeHours: totalTime,
		DurationDays:   durationDays,
		DepartureDate:  departureDate,
		ReturnDate:     returnDate,
	}

	o.logger.Info().
		Float64("total_cost", totalCost).
		Float64("total_time_hours", totalTime).
		Int("days", len(it.Days)).
		Msg("itinerary created")
	return it, nil
}

func (o *Optimizer) planDay(date string, byDate map[string][]models.Activity) models.DayPlan {
	selected := SelectActivities(byDate[date], o.maxPerDay, o.maxHours)
	plan := models.DayPlan{Date: date, Activities: selected}
	for _, a := range selected {
		plan.TotalCost += models.Amount(a.TotalPrice)
		plan.TotalTimeHours += models.Amount(a.DurationHours)
	}
	return plan
}

// groupByDate partitions activities by their exact date string, keeping input order.
func groupByDate(activities []models.Activity) map[string][]models.Activity {
	out := make(map[string][]models.Activity)
	for _, a := range activities {
		out[a.Date] = append(out[a.Date], a)
	}
	return out
}
