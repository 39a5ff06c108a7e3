package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tripplanner/internal/http/middleware"
	"tripplanner/internal/services"
)

func itineraryID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_itinerary_id", "itinerary id is not valid", nil)
		return "", false
	}
	return id, true
}

// GET /api/itineraries
func (a *API) ListItineraries(c *gin.Context) {
	if !a.requireStorage(c) {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	items, err := a.Itineraries.ListByUser(c.Request.Context(), middleware.CurrentUser(c).UserID, limit)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "itineraries": items})
}

// GET /api/itineraries/:id
func (a *API) GetItinerary(c *gin.Context) {
	if !a.requireStorage(c) {
		return
	}
	id, ok := itineraryID(c)
	if !ok {
		return
	}

	saved, err := a.Itineraries.GetByID(c.Request.Context(), middleware.CurrentUser(c).UserID, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "itinerary": saved})
}

// GET /api/itineraries/:id/pdf returns the itinerary inline as a PDF.
func (a *API) GetItineraryPDF(c *gin.Context) {
	if !a.requireStorage(c) {
		return
	}
	id, ok := itineraryID(c)
	if !ok {
		return
	}

	svc := services.DocsService{
		RequestID: middleware.GetRequestID(c),
		Loader:    a.Itineraries.GetByID,
	}
	pdfBytes, filename, err := svc.GenerateSavedPDF(c.Request.Context(), middleware.CurrentUser(c).UserID, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

// DELETE /api/itineraries/:id
func (a *API) DeleteItinerary(c *gin.Context) {
	if !a.requireStorage(c) {
		return
	}
	id, ok := itineraryID(c)
	if !ok {
		return
	}

	if err := a.Itineraries.Delete(c.Request.Context(), middleware.CurrentUser(c).UserID, id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "itinerary deleted"})
}
