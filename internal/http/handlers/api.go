package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"tripplanner/internal/config"
	"tripplanner/internal/domain/models"
	"tripplanner/internal/metrics"
	"tripplanner/internal/services"
	"tripplanner/internal/sources"
)

// SourceGatherer is the candidate gatherer plus its breaker view.
type SourceGatherer interface {
	services.Gatherer
	Stats() []sources.SourceStats
}

type ItineraryStore interface {
	Save(ctx context.Context, s models.SavedItinerary) (models.SavedItinerary, error)
	GetByID(ctx context.Context, userID int64, id string) (models.SavedItinerary, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]models.SavedSummary, error)
	Delete(ctx context.Context, userID int64, id string) error
}

// API holds the dependencies of the stateful handlers. Itineraries and Users
// are nil when no database is configured; their routes then answer 503.
type API struct {
	Config      config.Config
	Gatherer    SourceGatherer
	Itineraries ItineraryStore
	Users       services.UserStore
	Metrics     *metrics.Metrics
	Logger      zerolog.Logger
	JWTSecret   []byte
}

func (a *API) requireStorage(c *gin.Context) bool {
	if a.Itineraries == nil || a.Users == nil {
		respondError(c, http.StatusServiceUnavailable, "storage_disabled", "persistence is not configured", nil)
		return false
	}
	return true
}
