// Package sources gathers flight, hotel and activity candidates from travel
// sites and hands the optimizer fully materialized, deterministically ordered
// lists.
package sources

import (
	"context"
	"strconv"
	"strings"

	"tripplanner/internal/domain/models"
	"tripplanner/internal/utils"
)

// Source is one travel site.
type Source interface {
	Name() string
	Flights(ctx context.Context, q FlightQuery) ([]models.Flight, error)
	Hotels(ctx context.Context, q HotelQuery) ([]models.Hotel, error)
	Activities(ctx context.Context, q ActivityQuery) ([]models.Activity, error)
}

type FlightQuery struct {
	Origin        string
	Destination   string
	DepartureDate string
	ReturnDate    string
	Travelers     int
}

type HotelQuery struct {
	Destination string
	CheckIn     string
	CheckOut    string
	Travelers   int
}

type ActivityQuery struct {
	Destination string
	Date        string
	Travelers   int
}

// TripQuery describes a whole trip; the gatherer derives the per-kind queries from it.
type TripQuery struct {
	Origin        string
	Destination   string
	DepartureDate string
	ReturnDate    string
	Travelers     int
}

func (q TripQuery) Flights() FlightQuery {
	return FlightQuery{
		Origin:        q.Origin,
		Destination:   q.Destination,
		DepartureDate: q.DepartureDate,
		ReturnDate:    q.ReturnDate,
		Travelers:     q.Travelers,
	}
}

func (q TripQuery) Hotels() HotelQuery {
	return HotelQuery{
		Destination: q.Destination,
		CheckIn:     q.DepartureDate,
		CheckOut:    q.ReturnDate,
		Travelers:   q.Travelers,
	}
}

func (q TripQuery) Activities(date string) ActivityQuery {
	return ActivityQuery{Destination: q.Destination, Date: date, Travelers: q.Travelers}
}

func (q FlightQuery) key() string {
	return cacheKey(q.Origin, q.Destination, q.DepartureDate, q.ReturnDate, strconv.Itoa(q.Travelers))
}

func (q HotelQuery) key() string {
	return cacheKey(q.Destination, q.CheckIn, q.CheckOut, strconv.Itoa(q.Travelers))
}

func (q ActivityQuery) key() string {
	return cacheKey(q.Destination, q.Date, strconv.Itoa(q.Travelers))
}

func cacheKey(parts ...string) string {
	for i, p := range parts {
		parts[i] = utils.Slug(p)
	}
	return strings.Join(parts, ":")
}
