package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/phpdave11/gofpdf"

	"tripplanner/internal/domain/models"
	"tripplanner/internal/repositories"
	"tripplanner/internal/utils"
)

// DocsService renders itineraries as a console report or a PDF.
type DocsService struct {
	ItineraryRepo repositories.ItineraryRepository
	RequestID     string
	Loader        func(ctx context.Context, userID int64, id string) (models.SavedItinerary, error)
}

// GenerateSavedPDF renders a stored itinerary of userID.
func (s DocsService) GenerateSavedPDF(ctx context.Context, userID int64, id string) ([]byte, string, error) {
	saved, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "docs", "generate_itinerary_pdf", fmt.Sprintf("itinerary_id=%s", id))

	title := fmt.Sprintf("%s -> %s", safe(saved.Origin, "-"), safe(saved.Destination, "-"))
	pdf, _, err := GenerateItineraryPDF(saved.Itinerary, title)
	if err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("ITINERARY_%s_%s.pdf", safeFilenamePart(saved.Destination), safeFilenamePart(saved.DepartureDate))
	return pdf, filename, nil
}

func (s DocsService) load(ctx context.Context, userID int64, id string) (models.SavedItinerary, error) {
	if s.Loader != nil {
		return s.Loader(ctx, userID, id)
	}
	return s.ItineraryRepo.GetByID(ctx, userID, id)
}

const rule = "================================================================================"
const thinRule = "--------------------------------------------------------------------------------"

// WriteItineraryText writes the human readable trip report.
func WriteItineraryText(w io.Writer, it models.Itinerary) error {
	var b strings.Builder
	sum := it.Summary

	fmt.Fprintf(&b, "\n%s\nOPTIMIZED TRAVEL ITINERARY\n%s\n", rule, rule)
	fmt.Fprintf(&b, "\nTrip Duration: %d days\n", sum.DurationDays)
	fmt.Fprintf(&b, "Departure: %s\n", safe(sum.DepartureDate, "N/A"))
	fmt.Fprintf(&b, "Return: %s\n", safe(sum.ReturnDate, "N/A"))
	fmt.Fprintf(&b, "\nTotal Cost: %s\n", utils.FormatUSD(sum.TotalCost))
	fmt.Fprintf(&b, "Total Travel Time: %.1f hours\n", sum.TotalTimeHours)

	if f := it.Flight; f != nil {
		fmt.Fprintf(&b, "\n%s\nFLIGHT DETAILS\n%s\n", thinRule, thinRule)
		for _, line := range flightLines(*f) {
			b.WriteString(line + "\n")
		}
	}

	if h := it.Hotel; h != nil {
		fmt.Fprintf(&b, "\n%s\nHOTEL DETAILS\n%s\n", thinRule, thinRule)
		for _, line := range hotelLines(*h) {
			b.WriteString(line + "\n")
		}
	}

	if len(it.Days) > 0 {
		fmt.Fprintf(&b, "\n%s\nDAILY ITINERARY\n%s\n", thinRule, thinRule)
		for _, d := range it.Days {
			fmt.Fprintf(&b, "\n%s\n", d.Date)
			fmt.Fprintf(&b, "   Activities: %d\n", len(d.Activities))
			fmt.Fprintf(&b, "   Daily Cost: %s\n", utils.FormatUSD(d.TotalCost))
			fmt.Fprintf(&b, "   Total Time: %.1f hours\n", d.TotalTimeHours)
			for i, a := range d.Activities {
				fmt.Fprintf(&b, "\n   %d. %s\n", i+1, safe(a.Name, "N/A"))
				for _, line := range activityLines(a) {
					b.WriteString("      " + line + "\n")
				}
			}
		}
	}

	fmt.Fprintf(&b, "\n%s\nEnd of Itinerary\n%s\n\n", rule, rule)
	_, err := io.WriteString(w, b.String())
	return err
}

func flightLines(f models.Flight) []string {
	return []string{
		fmt.Sprintf("Airline: %s", safe(f.Airline, "N/A")),
		fmt.Sprintf("Route: %s -> %s", safe(f.Origin, "N/A"), safe(f.Destination, "N/A")),
		fmt.Sprintf("Departure: %s", safe(f.DepartureTime, "N/A")),
		fmt.Sprintf("Arrival: %s", safe(f.ArrivalTime, "N/A")),
		fmt.Sprintf("Duration: %.1f hours", models.Amount(f.DurationHours)),
		fmt.Sprintf("Stops: %d", f.Stops),
		fmt.Sprintf("Price: %s", utils.FormatUSD(models.Amount(f.TotalPrice))),
		fmt.Sprintf("Source: %s", safe(f.SourceWebsite, "N/A")),
	}
}

func hotelLines(h models.Hotel) []string {
	return []string{
		fmt.Sprintf("Name: %s", safe(h.Name, "N/A")),
		fmt.Sprintf("Location: %s", safe(h.Location, "N/A")),
		fmt.Sprintf("Check-in: %s", safe(h.CheckIn, "N/A")),
		fmt.Sprintf("Check-out: %s", safe(h.CheckOut, "N/A")),
		fmt.Sprintf("Nights: %d", h.Nights),
		fmt.Sprintf("Rating: %.1f/5.0", models.Amount(h.Rating)),
		fmt.Sprintf("Price: %s", utils.FormatUSD(models.Amount(h.TotalPrice))),
		fmt.Sprintf("Amenities: %s", strings.Join(h.Amenities, ", ")),
		fmt.Sprintf("Source: %s", safe(h.SourceWebsite, "N/A")),
	}
}

func activityLines(a models.Activity) []string {
	return []string{
		fmt.Sprintf("Category: %s", safe(a.Category, "N/A")),
		fmt.Sprintf("Duration: %.1f hours", models.Amount(a.DurationHours)),
		fmt.Sprintf("Price: %s", utils.FormatUSD(models.Amount(a.TotalPrice))),
		fmt.Sprintf("Rating: %.1f/5.0", models.Amount(a.Rating)),
	}
}

// GenerateItineraryPDF renders it on A4 pages.
func GenerateItineraryPDF(it models.Itinerary, title string) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Travel Itinerary", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "TRAVEL ITINERARY")
	pdf.Ln(10)
	if title = strings.TrimSpace(title); title != "" {
		pdf.SetFont("Helvetica", "", 13)
		pdf.Cell(0, 8, title)
		pdf.Ln(10)
	}

	sum := it.Summary
	pdf.SetFont("Helvetica", "", 12)
	for _, line := range []string{
		fmt.Sprintf("Dates       : %s to %s (%d days)", safe(sum.DepartureDate, "-"), safe(sum.ReturnDate, "-"), sum.DurationDays),
		fmt.Sprintf("Total cost  : %s", utils.FormatUSD(sum.TotalCost)),
		fmt.Sprintf("Travel time : %.1f hours", sum.TotalTimeHours),
		fmt.Sprintf("Activities  : %s", utils.FormatUSD(activitiesCost(it))),
	} {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	section := func(name string, lines []string) {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 13)
		pdf.Cell(0, 8, name)
		pdf.Ln(9)
		pdf.SetFont("Helvetica", "", 11)
		for _, line := range lines {
			pdf.Cell(0, 6, line)
			pdf.Ln(6)
		}
	}

	if it.Flight != nil {
		section("Flight", flightLines(*it.Flight))
	}
	if it.Hotel != nil {
		section("Hotel", hotelLines(*it.Hotel))
	}

	if len(it.Days) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 13)
		pdf.Cell(0, 8, "Daily plan")
		pdf.Ln(9)

		pdf.SetFont("Helvetica", "B", 10)
		for _, h := range []struct {
			label string
			w     float64
		}{{"Date", 28}, {"Activity", 72}, {"Category", 30}, {"Hours", 20}, {"Price", 30}} {
			pdf.CellFormat(h.w, 7, h.label, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", 10)
		for _, d := range it.Days {
			if len(d.Activities) == 0 {
				pdf.CellFormat(28, 6, d.Date, "1", 0, "L", false, 0, "")
				pdf.CellFormat(152, 6, "free day", "1", 0, "L", false, 0, "")
				pdf.Ln(-1)
				continue
			}
			for _, a := range d.Activities {
				pdf.CellFormat(28, 6, d.Date, "1", 0, "L", false, 0, "")
				pdf.CellFormat(72, 6, safe(a.Name, "-"), "1", 0, "L", false, 0, "")
				pdf.CellFormat(30, 6, safe(a.Category, "-"), "1", 0, "L", false, 0, "")
				pdf.CellFormat(20, 6, fmt.Sprintf("%.1f", models.Amount(a.DurationHours)), "1", 0, "R", false, 0, "")
				pdf.CellFormat(30, 6, utils.FormatUSD(models.Amount(a.TotalPrice)), "1", 0, "R", false, 0, "")
				pdf.Ln(-1)
			}
		}
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.Cell(0, 5, "Generated "+utils.FormatDateTime(utils.NowUTC())+" UTC")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("ITINERARY_%s_%s.pdf", safeFilenamePart(sum.DepartureDate), safeFilenamePart(sum.ReturnDate))
	return buf.Bytes(), filename, nil
}

func activitiesCost(it models.Itinerary) float64 {
	costs := make([]float64, 0, len(it.Days))
	for _, d := range it.Days {
		costs = append(costs, d.TotalCost)
	}
	return utils.SumAmounts(costs...)
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
