package sources

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"

	"tripplanner/internal/domain/models"
	"tripplanner/internal/utils"
)

var (
	mockAirlines = []string{
		"Delta", "United", "American", "Lufthansa", "Air France",
		"British Airways", "KLM", "Emirates", "Qatar", "Turkish",
	}
	mockHotels = []string{
		"Grand Plaza Hotel", "Oceanview Resort", "City Center Inn",
		"Luxury Suites", "Budget Stay", "Boutique Hotel", "Beachfront Villa",
		"Mountain View Lodge", "Historic Manor", "Modern Apartment",
	}
	mockActivities = []string{
		"City Tour", "Museum Visit", "Cooking Class", "Wine Tasting",
		"Boat Cruise", "Hiking Tour", "Food Tour", "Photography Walk",
		"Sunset Viewing", "Local Market",
	}
	mockCategories = []string{"Sightseeing", "Food", "Adventure", "Culture"}
)

const (
	mockFlightBase   = 800.0
	mockHotelBase    = 120.0
	mockActivityBase = 50.0
	mockTag          = "mock_data"
)

// MockSource produces realistic, reproducible candidates for a site name.
// Prices vary with the route through a stable hash, so the same query always
// yields the same records.
type MockSource struct {
	name string
}

func NewMockSource(name string) *MockSource {
	return &MockSource{name: name}
}

func (m *MockSource) Name() string { return m.name }

func (m *MockSource) Flights(ctx context.Context, q FlightQuery) ([]models.Flight, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	travelers := orTwo(q.Travelers)
	spread := float64(stableHash(q.Origin+q.Destination) % 200)

	out := make([]models.Flight, 0, len(mockAirlines))
	for i, airline := range mockAirlines {
		perPerson := mockFlightBase + float64(i*50) + spread
		stops := 1
		if i < 5 {
			stops = 0
		}
		out = append(out, models.Flight{
			Airline:        airline,
			Origin:         q.Origin,
			Destination:    q.Destination,
			DepartureTime:  fmt.Sprintf("%d:00", 8+i%12),
			ArrivalTime:    fmt.Sprintf("%d:00", 14+i%10),
			DurationHours:  models.Float(7.5 + float64(30+i*15)/60),
			PricePerPerson: models.Float(perPerson),
			TotalPrice:     models.Float(perPerson * float64(travelers)),
			Stops:          stops,
			Class:          "Economy",
			Source:         mockTag,
		})
	}
	return out, nil
}

func (m *MockSource) Hotels(ctx context.Context, q HotelQuery) ([]models.Hotel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	in, err := utils.ParseDate(q.CheckIn)
	if err != nil {
		return nil, fmt.Errorf("check_in %q: %w", q.CheckIn, err)
	}
	out, err := utils.ParseDate(q.CheckOut)
	if err != nil {
		return nil, fmt.Errorf("check_out %q: %w", q.CheckOut, err)
	}
	nights := utils.DaysBetween(in, out)
	spread := float64(stableHash(q.Destination) % 100)

	hotels := make([]models.Hotel, 0, len(mockHotels))
	for i, name := range mockHotels {
		perNight := mockHotelBase + float64(i*30) + spread
		amenities := []string{"WiFi"}
		if i < 5 {
			amenities = []string{"WiFi", "Breakfast", "Pool"}
		}
		location := "Airport Area"
		if i%2 == 0 {
			location = "City Center"
		}
		hotels = append(hotels, models.Hotel{
			Name:          name,
			Destination:   q.Destination,
			CheckIn:       q.CheckIn,
			CheckOut:      q.CheckOut,
			Nights:        nights,
			PricePerNight: models.Float(perNight),
			TotalPrice:    models.Float(perNight * float64(nights)),
			Rating:        models.Float(math.Min(5.0, 3.5+float64(i)*0.3)),
			Amenities:     amenities,
			Location:      location,
			Source:        mockTag,
		})
	}
	return hotels, nil
}

func (m *MockSource) Activities(ctx context.Context, q ActivityQuery) ([]models.Activity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	travelers := orTwo(q.Travelers)

	out := make([]models.Activity, 0, len(mockActivities))
	for i, name := range mockActivities {
		perPerson := mockActivityBase + float64(i*15) + float64(stableHash(q.Destination+name)%50)
		out = append(out, models.Activity{
			Name:           name,
			Destination:    q.Destination,
			Date:           q.Date,
			DurationHours:  models.Float(2 + float64(i)*0.5),
			PricePerPerson: models.Float(perPerson),
			TotalPrice:     models.Float(perPerson * float64(travelers)),
			Category:       mockCategories[i%len(mockCategories)],
			Rating:         models.Float(4.0 + float64(i)*0.1),
			Source:         mockTag,
		})
	}
	return out, nil
}

func stableHash(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

func orTwo(travelers int) int {
	if travelers < 1 {
		return 2
	}
	return travelers
}
