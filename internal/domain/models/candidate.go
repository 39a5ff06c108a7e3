package models

import "math"

// Flight is one priced flight option for the trip.
// Numeric fields that a source may omit are pointers; the accessor methods
// return the scoring sentinel for a missing value.
type Flight struct {
	Airline        string   `json:"airline,omitempty"`
	Origin         string   `json:"origin,omitempty"`
	Destination    string   `json:"destination,omitempty"`
	DepartureTime  string   `json:"departure_time,omitempty"`
	ArrivalTime    string   `json:"arrival_time,omitempty"`
	DurationHours  *float64 `json:"duration_hours,omitempty"`
	PricePerPerson *float64 `json:"price_per_person,omitempty"`
	TotalPrice     *float64 `json:"total_price,omitempty"`
	Stops          int      `json:"stops"`
	Class          string   `json:"class,omitempty"`
	Source         string   `json:"source,omitempty"`
	SourceWebsite  string   `json:"source_website,omitempty"`
}

// Price returns total_price, or +Inf when missing.
func (f Flight) Price() float64 { return orWorstCost(f.TotalPrice) }

// Duration returns duration_hours, or +Inf when missing.
func (f Flight) Duration() float64 { return orWorstCost(f.DurationHours) }

// Hotel is one priced stay covering the whole trip.
type Hotel struct {
	Name          string   `json:"name,omitempty"`
	Destination   string   `json:"destination,omitempty"`
	CheckIn       string   `json:"check_in,omitempty"`
	CheckOut      string   `json:"check_out,omitempty"`
	Nights        int      `json:"nights"`
	PricePerNight *float64 `json:"price_per_night,omitempty"`
	TotalPrice    *float64 `json:"total_price,omitempty"`
	Rating        *float64 `json:"rating,omitempty"`
	Amenities     []string `json:"amenities,omitempty"`
	Location      string   `json:"location,omitempty"`
	Source        string   `json:"source,omitempty"`
	SourceWebsite string   `json:"source_website,omitempty"`
}

// Price returns total_price, or +Inf when missing.
func (h Hotel) Price() float64 { return orWorstCost(h.TotalPrice) }

// Quality returns rating, or 0 when missing.
func (h Hotel) Quality() float64 { return orZero(h.Rating) }

// Activity is a bookable activity on one calendar day of the trip.
type Activity struct {
	Name           string   `json:"name,omitempty"`
	Destination    string   `json:"destination,omitempty"`
	Date           string   `json:"date"`
	DurationHours  *float64 `json:"duration_hours,omitempty"`
	PricePerPerson *float64 `json:"price_per_person,omitempty"`
	TotalPrice     *float64 `json:"total_price,omitempty"`
	Category       string   `json:"category,omitempty"`
	Rating         *float64 `json:"rating,omitempty"`
	Source         string   `json:"source,omitempty"`
	SourceWebsite  string   `json:"source_website,omitempty"`
}

// UnitPrice returns price_per_person, or +Inf when missing.
func (a Activity) UnitPrice() float64 { return orWorstCost(a.PricePerPerson) }

// Duration returns duration_hours, or +Inf when missing.
func (a Activity) Duration() float64 { return orWorstCost(a.DurationHours) }

// Quality returns rating, or 0 when missing.
func (a Activity) Quality() float64 { return orZero(a.Rating) }

// Float returns a pointer to v, for building candidates in code.
func Float(v float64) *float64 { return &v }

// Amount returns *p, or 0 when missing. Totals never use the scoring sentinel.
func Amount(p *float64) float64 { return orZero(p) }

func orWorstCost(p *float64) float64 {
	if p == nil {
		return math.Inf(1)
	}
	return *p
}

func orZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
