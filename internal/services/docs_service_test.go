package services

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"tripplanner/internal/domain"
	"tripplanner/internal/domain/models"
)

func reportItinerary() models.Itinerary {
	return models.Itinerary{
		Flight: &models.Flight{
			Airline: "Air France", Origin: "New York", Destination: "Paris",
			DurationHours: models.Float(8.25), TotalPrice: models.Float(1890), SourceWebsite: "kayak",
		},
		Hotel: &models.Hotel{
			Name: "Grand Plaza Hotel", Nights: 3, Rating: models.Float(4.4),
			TotalPrice: models.Float(1234.5), Amenities: []string{"WiFi", "Pool"},
		},
		Days: []models.DayPlan{
			{Date: "2025-06-02", Activities: []models.Activity{{
				Name: "City Tour", Category: "Sightseeing", DurationHours: models.Float(2),
				TotalPrice: models.Float(120), Rating: models.Float(4),
			}}, TotalCost: 120, TotalTimeHours: 2},
			{Date: "2025-06-03", Activities: []models.Activity{}},
		},
		Summary: models.Summary{
			TotalCost: 3244.5, TotalTimeHours: 10.25, DurationDays: 3,
			DepartureDate: "2025-06-01", ReturnDate: "2025-06-04",
		},
	}
}

func TestWriteItineraryText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteItineraryText(&buf, reportItinerary()); err != nil {
		t.Fatalf("WriteItineraryText returned error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Trip Duration: 3 days",
		"Total Cost: $3,244.50",
		"Total Travel Time: 10.2 hours",
		"Route: New York -> Paris",
		"Price: $1,234.50",
		"Amenities: WiFi, Pool",
		"   1. City Tour",
		"Activities: 0",
		"End of Itinerary",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
}

func TestWriteItineraryTextEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteItineraryText(&buf, models.Itinerary{Days: []models.DayPlan{}}); err != nil {
		t.Fatalf("WriteItineraryText returned error: %v", err)
	}
	if strings.Contains(buf.String(), "FLIGHT DETAILS") || strings.Contains(buf.String(), "DAILY ITINERARY") {
		t.Fatalf("empty itinerary should not print sections:\n%s", buf.String())
	}
}

func TestGenerateItineraryPDF(t *testing.T) {
	pdf, filename, err := GenerateItineraryPDF(reportItinerary(), "New York -> Paris")
	if err != nil {
		t.Fatalf("GenerateItineraryPDF returned error: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
	if filename != "ITINERARY_2025-06-01_2025-06-04.pdf" {
		t.Fatalf("unexpected filename %q", filename)
	}
}

func TestDocsServiceGenerateSavedPDF(t *testing.T) {
	svc := DocsService{Loader: func(_ context.Context, userID int64, id string) (models.SavedItinerary, error) {
		if userID != 4 || id != "abc" {
			return models.SavedItinerary{}, domain.NotFoundError{Resource: "itinerary"}
		}
		return models.SavedItinerary{ID: id, Origin: "New York", Destination: "Paris", DepartureDate: "2025-06-01", Itinerary: reportItinerary()}, nil
	}}

	pdf, filename, err := svc.GenerateSavedPDF(context.Background(), 4, "abc")
	if err != nil {
		t.Fatalf("GenerateSavedPDF returned error: %v", err)
	}
	if len(pdf) == 0 || filename != "ITINERARY_Paris_2025-06-01.pdf" {
		t.Fatalf("unexpected output %q (%d bytes)", filename, len(pdf))
	}

	if _, _, err := svc.GenerateSavedPDF(context.Background(), 5, "abc"); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
