package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"tripplanner/internal/domain"
	"tripplanner/internal/domain/models"
)

func sampleItinerary() models.Itinerary {
	return models.Itinerary{
		Flight: &models.Flight{Airline: "KLM", TotalPrice: models.Float(1700)},
		Days:   []models.DayPlan{{Date: "2025-06-02", Activities: []models.Activity{}}},
		Summary: models.Summary{
			TotalCost:     2500,
			DurationDays:  2,
			DepartureDate: "2025-06-01",
			ReturnDate:    "2025-06-03",
		},
	}
}

func TestItineraryRepository_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO itineraries").
		WithArgs(sqlmock.AnyArg(), int64(7), "New York", "Paris", "2025-06-01", "2025-06-03", 2,
			0.6, 0.4, 2500.0, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := ItineraryRepository{DB: db}
	saved, err := repo.Save(context.Background(), models.SavedItinerary{
		UserID:        7,
		Origin:        "New York",
		Destination:   "Paris",
		DepartureDate: "2025-06-01",
		ReturnDate:    "2025-06-03",
		Travelers:     2,
		CostWeight:    0.6,
		TimeWeight:    0.4,
		Itinerary:     sampleItinerary(),
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(saved.ID) != 36 {
		t.Fatalf("expected uuid id, got %q", saved.ID)
	}
	if saved.TotalCost != 2500 {
		t.Fatalf("total cost not copied from summary, got %v", saved.TotalCost)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestItineraryRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	created := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	cols := []string{"id", "user_id", "origin", "destination", "departure_date", "return_date", "travelers",
		"cost_weight", "time_weight", "total_cost", "payload", "created_at"}
	mock.ExpectQuery("SELECT (.+) FROM itineraries").
		WithArgs("abc", int64(7)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			"abc", 7, "New York", "Paris", "2025-06-01", "2025-06-03", 2,
			0.6, 0.4, 2500.0, `{"flight":{"airline":"KLM","stops":0},"hotel":null,"days":[],"summary":{"total_cost":2500,"total_time_hours":0,"duration_days":2,"departure_date":"2025-06-01","return_date":"2025-06-03"}}`, created,
		))

	repo := ItineraryRepository{DB: db}
	got, err := repo.GetByID(context.Background(), 7, "abc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Itinerary.Flight == nil || got.Itinerary.Flight.Airline != "KLM" {
		t.Fatalf("payload not decoded: %+v", got.Itinerary)
	}
	if got.Itinerary.Summary.DurationDays != 2 || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestItineraryRepository_GetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM itineraries").
		WithArgs("missing", int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = ItineraryRepository{DB: db}.GetByID(context.Background(), 7, "missing")
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestItineraryRepository_ListByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM itineraries").
		WithArgs(int64(7), 50).
		WillReturnRows(sqlmock.NewRows([]string{"id", "origin", "destination", "departure_date", "return_date", "total_cost", "created_at"}).
			AddRow("b", "New York", "Rome", "2025-07-01", "2025-07-05", 1800.0, now).
			AddRow("a", "New York", "Paris", "2025-06-01", "2025-06-03", 2500.0, now.Add(-time.Hour)))

	list, err := ItineraryRepository{DB: db}.ListByUser(context.Background(), 7, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != "b" || list[1].Destination != "Paris" {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestItineraryRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("DELETE FROM itineraries").WithArgs("abc", int64(7)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM itineraries").WithArgs("abc", int64(8)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM itineraries").WithArgs("x", int64(7)).WillReturnError(errors.New("lock wait timeout"))

	repo := ItineraryRepository{DB: db}
	if err := repo.Delete(context.Background(), 7, "abc"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(context.Background(), 8, "abc"); !domain.IsNotFound(err) {
		t.Fatalf("other user's delete should be not found, got %v", err)
	}
	if err := repo.Delete(context.Background(), 7, "x"); err == nil || domain.IsNotFound(err) {
		t.Fatalf("expected db error, got %v", err)
	}
}
