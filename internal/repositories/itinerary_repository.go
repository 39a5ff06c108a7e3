package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	intconfig "tripplanner/internal/config"
	"tripplanner/internal/domain"
	"tripplanner/internal/domain/models"
)

const itinerariesTable = "itineraries"

type ItineraryRepository struct {
	DB *sql.DB
}

func (r ItineraryRepository) db() (*sql.DB, error) {
	if r.DB != nil {
		return r.DB, nil
	}
	if intconfig.DB != nil {
		return intconfig.DB, nil
	}
	return nil, intconfig.ErrNoDatabase
}

// Save stores it with a fresh UUID and returns the stored record.
func (r ItineraryRepository) Save(ctx context.Context, s models.SavedItinerary) (models.SavedItinerary, error) {
	db, err := r.db()
	if err != nil {
		return models.SavedItinerary{}, err
	}

	payload, err := json.Marshal(s.Itinerary)
	if err != nil {
		return models.SavedItinerary{}, fmt.Errorf("encode itinerary: %w", err)
	}

	s.ID = uuid.NewString()
	s.TotalCost = s.Itinerary.Summary.TotalCost
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO `+itinerariesTable+`
			(id, user_id, origin, destination, departure_date, return_date, travelers,
			 cost_weight, time_weight, total_cost, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.UserID, s.Origin, s.Destination, s.DepartureDate, s.ReturnDate, s.Travelers,
		s.CostWeight, s.TimeWeight, s.TotalCost, string(payload), s.CreatedAt)
	if err != nil {
		return models.SavedItinerary{}, fmt.Errorf("insert itinerary: %w", err)
	}
	return s, nil
}

// GetByID loads one itinerary owned by userID.
func (r ItineraryRepository) GetByID(ctx context.Context, userID int64, id string) (models.SavedItinerary, error) {
	db, err := r.db()
	if err != nil {
		return models.SavedItinerary{}, err
	}

	var (
		s       models.SavedItinerary
		payload string
	)
	err = db.QueryRowContext(ctx, `
		SELECT id, user_id, origin, destination, departure_date, return_date, travelers,
		       cost_weight, time_weight, total_cost, payload, created_at
		FROM `+itinerariesTable+`
		WHERE id = ? AND user_id = ?
		LIMIT 1
	`, id, userID).Scan(
		&s.ID, &s.UserID, &s.Origin, &s.Destination, &s.DepartureDate, &s.ReturnDate, &s.Travelers,
		&s.CostWeight, &s.TimeWeight, &s.TotalCost, &payload, &s.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.SavedItinerary{}, domain.NotFoundError{Resource: "itinerary"}
	}
	if err != nil {
		return models.SavedItinerary{}, fmt.Errorf("query itinerary: %w", err)
	}

	if err := json.Unmarshal([]byte(payload), &s.Itinerary); err != nil {
		return models.SavedItinerary{}, fmt.Errorf("decode itinerary %s: %w", id, err)
	}
	return s, nil
}

// ListByUser returns the user's itineraries, newest first.
func (r ItineraryRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]models.SavedSummary, error) {
	db, err := r.db()
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, origin, destination, departure_date, return_date, total_cost, created_at
		FROM `+itinerariesTable+`
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list itineraries: %w", err)
	}
	defer rows.Close()

	out := []models.SavedSummary{}
	for rows.Next() {
		var s models.SavedSummary
		if err := rows.Scan(&s.ID, &s.Origin, &s.Destination, &s.DepartureDate, &s.ReturnDate, &s.TotalCost, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes one itinerary owned by userID.
func (r ItineraryRepository) Delete(ctx context.Context, userID int64, id string) error {
	db, err := r.db()
	if err != nil {
		return err
	}

	res, err := db.ExecContext(ctx, `DELETE FROM `+itinerariesTable+` WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete itinerary: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFoundError{Resource: "itinerary"}
	}
	return nil
}
