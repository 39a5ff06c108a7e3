package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"tripplanner/internal/config"
	"tripplanner/internal/domain"
	"tripplanner/internal/domain/models"
	"tripplanner/internal/metrics"
	"tripplanner/internal/optimizer"
	"tripplanner/internal/sources"
	"tripplanner/internal/utils"
)

// Gatherer supplies the candidate lists of a trip.
type Gatherer interface {
	Gather(ctx context.Context, q sources.TripQuery) (models.Candidates, error)
}

// ItineraryStore persists planned itineraries.
type ItineraryStore interface {
	Save(ctx context.Context, s models.SavedItinerary) (models.SavedItinerary, error)
}

type PlanRequest struct {
	Origin        string   `json:"origin"`
	Destination   string   `json:"destination"`
	DepartureDate string   `json:"departure_date"`
	ReturnDate    string   `json:"return_date"`
	Travelers     int      `json:"travelers"`
	CostWeight    *float64 `json:"cost_weight"`
	TimeWeight    *float64 `json:"time_weight"`
}

type OptimizeRequest struct {
	Flights       []models.Flight   `json:"flights"`
	Hotels        []models.Hotel    `json:"hotels"`
	Activities    []models.Activity `json:"activities"`
	DepartureDate string            `json:"departure_date"`
	ReturnDate    string            `json:"return_date"`
	CostWeight    *float64          `json:"cost_weight"`
	TimeWeight    *float64          `json:"time_weight"`
}

type PlanResult struct {
	Itinerary   *models.Itinerary `json:"itinerary"`
	ItineraryID string            `json:"itinerary_id,omitempty"`
}

// PlannerService gathers candidates and runs the optimizer for one request.
// Store is optional; itineraries are only saved for a known UserID.
type PlannerService struct {
	Config    config.Config
	Gatherer  Gatherer
	Store     ItineraryStore
	Metrics   *metrics.Metrics
	Logger    zerolog.Logger
	RequestID string
	UserID    int64
	Now       func() time.Time
}

// Plan fills request defaults, gathers candidates and builds the itinerary.
// Weight and date problems are reported before any source is contacted.
func (s PlannerService) Plan(ctx context.Context, req PlanRequest) (PlanResult, error) {
	req, err := s.resolve(req)
	if err != nil {
		return PlanResult{}, err
	}

	opt, err := s.newOptimizer(req.CostWeight, req.TimeWeight)
	if err != nil {
		s.Metrics.ObserveOptimization(err, 0, 0)
		return PlanResult{}, err
	}

	if s.Gatherer == nil {
		return PlanResult{}, domain.InternalError{Msg: "no candidate gatherer configured"}
	}
	utils.LogEvent(s.RequestID, "planner", "gather",
		fmt.Sprintf("%s -> %s %s..%s travelers=%d", req.Origin, req.Destination, req.DepartureDate, req.ReturnDate, req.Travelers))

	cands, err := s.Gatherer.Gather(ctx, sources.TripQuery{
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureDate: req.DepartureDate,
		ReturnDate:    req.ReturnDate,
		Travelers:     req.Travelers,
	})
	if err != nil {
		return PlanResult{}, fmt.Errorf("gather candidates: %w", err)
	}

	it, err := s.run(opt, cands.Flights, cands.Hotels, cands.Activities, req.DepartureDate, req.ReturnDate)
	if err != nil {
		return PlanResult{}, err
	}

	res := PlanResult{Itinerary: it}
	if s.Store != nil && s.UserID > 0 {
		saved, err := s.Store.Save(ctx, models.SavedItinerary{
			UserID:        s.UserID,
			Origin:        req.Origin,
			Destination:   req.Destination,
			DepartureDate: req.DepartureDate,
			ReturnDate:    req.ReturnDate,
			Travelers:     req.Travelers,
			CostWeight:    *req.CostWeight,
			TimeWeight:    *req.TimeWeight,
			Itinerary:     *it,
		})
		if err != nil {
			utils.LogError(s.RequestID, "planner", "save", err)
		} else {
			res.ItineraryID = saved.ID
		}
	}
	return res, nil
}

// Optimize runs the optimizer over caller-supplied candidates.
func (s PlannerService) Optimize(ctx context.Context, req OptimizeRequest) (*models.Itinerary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// Unparseable dates are left for the optimizer to report.
	dep, depErr := utils.ParseDate(req.DepartureDate)
	ret, retErr := utils.ParseDate(req.ReturnDate)
	if depErr == nil && retErr == nil {
		if err := s.checkTripLength(dep, ret); err != nil {
			return nil, err
		}
	}

	cost, tw := s.weights(req.CostWeight, req.TimeWeight)
	opt, err := s.newOptimizer(&cost, &tw)
	if err != nil {
		s.Metrics.ObserveOptimization(err, 0, 0)
		return nil, err
	}
	return s.run(opt, req.Flights, req.Hotels, req.Activities, req.DepartureDate, req.ReturnDate)
}

func (s PlannerService) run(
	opt *optimizer.Optimizer,
	flights []models.Flight,
	hotels []models.Hotel,
	activities []models.Activity,
	departure, ret string,
) (*models.Itinerary, error) {
	start := time.Now()
	it, err := opt.CreateItinerary(flights, hotels, activities, departure, ret)
	if err != nil {
		s.Metrics.ObserveOptimization(err, time.Since(start), 0)
		return nil, err
	}
	s.Metrics.ObserveOptimization(nil, time.Since(start), it.Summary.TotalCost)
	utils.LogEvent(s.RequestID, "planner", "optimize",
		fmt.Sprintf("days=%d activities=%d total_cost=%s", len(it.Days), it.ActivityCount(), utils.FormatMoney(it.Summary.TotalCost)))
	return it, nil
}

// resolve applies config defaults and validates the request.
func (s PlannerService) resolve(req PlanRequest) (PlanRequest, error) {
	d := s.Config.Defaults
	req.Origin = utils.NormalizeSpace(req.Origin)
	req.Destination = utils.NormalizeSpace(req.Destination)
	req.DepartureDate = strings.TrimSpace(req.DepartureDate)
	req.ReturnDate = strings.TrimSpace(req.ReturnDate)

	if req.Origin == "" {
		req.Origin = d.Origin
	}
	if req.Destination == "" {
		req.Destination = d.Destination
	}
	if req.Origin == "" || req.Destination == "" {
		return req, domain.ValidationError{Field: "destination", Msg: "origin and destination are required"}
	}
	if req.Travelers == 0 {
		req.Travelers = d.Travelers
	}
	if req.Travelers < 1 {
		return req, domain.ValidationError{Field: "travelers", Msg: "must be at least 1"}
	}

	if req.DepartureDate == "" {
		req.DepartureDate = utils.FormatDate(s.now().AddDate(0, 0, d.DepartureOffsetDays))
	}
	dep, err := utils.ParseDate(req.DepartureDate)
	if err != nil {
		return req, domain.InvalidDateError{Field: "departure_date", Value: req.DepartureDate, Err: err}
	}
	if req.ReturnDate == "" {
		ret, err := utils.AddDays(req.DepartureDate, d.TripLengthDays)
		if err != nil {
			return req, domain.InvalidDateError{Field: "departure_date", Value: req.DepartureDate, Err: err}
		}
		req.ReturnDate = ret
	}
	ret, err := utils.ParseDate(req.ReturnDate)
	if err != nil {
		return req, domain.InvalidDateError{Field: "return_date", Value: req.ReturnDate, Err: err}
	}
	if err := s.checkTripLength(dep, ret); err != nil {
		return req, err
	}

	cost, tw := s.weights(req.CostWeight, req.TimeWeight)
	req.CostWeight, req.TimeWeight = &cost, &tw
	return req, nil
}

func (s PlannerService) checkTripLength(dep, ret time.Time) error {
	limit := s.Config.Defaults.MaxTripDays
	if limit > 0 && utils.DaysBetween(dep, ret) > limit {
		return domain.ValidationError{
			Field: "return_date",
			Msg:   fmt.Sprintf("trip cannot be longer than %d days", limit),
		}
	}
	return nil
}

// weights fills whichever weight is missing. A single given weight implies
// its complement.
func (s PlannerService) weights(cost, tw *float64) (float64, float64) {
	w := s.Config.Weights
	switch {
	case cost != nil && tw != nil:
		return *cost, *tw
	case cost != nil:
		return *cost, 1 - *cost
	case tw != nil:
		return 1 - *tw, *tw
	default:
		return w.Cost, w.Time
	}
}

func (s PlannerService) newOptimizer(cost, tw *float64) (*optimizer.Optimizer, error) {
	opts := []optimizer.Option{optimizer.WithLogger(s.Logger)}
	if l := s.Config.Activities; l.MaxPerDay > 0 {
		opts = append(opts, optimizer.WithActivityLimits(l.MaxPerDay, l.MaxHoursPerDay))
	}
	// configured per-kind overrides only hold for the configured default pair
	w := s.Config.Weights
	if *cost == w.Cost && *tw == w.Time {
		if w.FlightTime != nil {
			opts = append(opts, optimizer.WithFlightTimeWeight(*w.FlightTime))
		}
		if w.HotelQuality != nil {
			opts = append(opts, optimizer.WithHotelQualityWeight(*w.HotelQuality))
		}
	}
	return optimizer.New(*cost, *tw, opts...)
}

func (s PlannerService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}
