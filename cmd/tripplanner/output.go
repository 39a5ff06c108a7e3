package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"tripplanner/internal/domain/models"
	"tripplanner/internal/services"
)

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// writeJSON saves it to path with two-space indentation. An empty path or "-"
// skips the file.
func writeJSON(path string, it *models.Itinerary) (bool, error) {
	if path == "" || path == "-" {
		return false, nil
	}
	raw, err := json.MarshalIndent(it, "", "  ")
	if err != nil {
		return false, fmt.Errorf("encode itinerary: %w", err)
	}
	if err := os.WriteFile(path, append(raw, '\n'), 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}

func writePDF(path, title string, it *models.Itinerary) error {
	pdf, _, err := services.GenerateItineraryPDF(*it, title)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// emit prints the report as text or JSON and saves the requested files.
func emit(out io.Writer, it *models.Itinerary, format, jsonPath, pdfPath, title string) error {
	switch format {
	case "none":
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(it); err != nil {
			return err
		}
	case "text":
		if err := services.WriteItineraryText(out, *it); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q (want text, json or none)", format)
	}

	saved, err := writeJSON(jsonPath, it)
	if err != nil {
		return err
	}
	if saved {
		fmt.Fprintf(out, "Itinerary saved to %s\n", jsonPath)
	}
	if pdfPath != "" {
		if err := writePDF(pdfPath, title, it); err != nil {
			return err
		}
		fmt.Fprintf(out, "PDF saved to %s\n", pdfPath)
	}
	return nil
}

func defaultFormat(noPrint bool) string {
	switch {
	case noPrint:
		return "none"
	case stdoutIsTerminal():
		return "text"
	default:
		return "json"
	}
}
