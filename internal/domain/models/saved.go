package models

import "time"

// SavedItinerary is an itinerary persisted for a user together with the
// request that produced it.
type SavedItinerary struct {
	ID            string    `json:"id"`
	UserID        int64     `json:"user_id"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureDate string    `json:"departure_date"`
	ReturnDate    string    `json:"return_date"`
	Travelers     int       `json:"travelers"`
	CostWeight    float64   `json:"cost_weight"`
	TimeWeight    float64   `json:"time_weight"`
	TotalCost     float64   `json:"total_cost"`
	Itinerary     Itinerary `json:"itinerary"`
	CreatedAt     time.Time `json:"created_at"`
}

// SavedSummary is the list view of a SavedItinerary.
type SavedSummary struct {
	ID            string    `json:"id"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureDate string    `json:"departure_date"`
	ReturnDate    string    `json:"return_date"`
	TotalCost     float64   `json:"total_cost"`
	CreatedAt     time.Time `json:"created_at"`
}
