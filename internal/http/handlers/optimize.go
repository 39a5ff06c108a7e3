package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripplanner/internal/http/middleware"
	"tripplanner/internal/services"
)

func (a *API) planner(c *gin.Context) services.PlannerService {
	svc := services.PlannerService{
		Config:    a.Config,
		Gatherer:  a.Gatherer,
		Metrics:   a.Metrics,
		Logger:    a.Logger.With().Str("request_id", middleware.GetRequestID(c)).Logger(),
		RequestID: middleware.GetRequestID(c),
		UserID:    middleware.CurrentUser(c).UserID,
	}
	if a.Itineraries != nil {
		svc.Store = a.Itineraries
	}
	return svc
}

// POST /api/optimize
// Gathers candidates for the trip and returns the optimized itinerary. The
// result is saved when the caller is logged in.
func (a *API) Optimize(c *gin.Context) {
	var req services.PlanRequest
	if c.Request.ContentLength != 0 && !BindJSONOrError(c, &req) {
		return
	}

	res, err := a.planner(c).Plan(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"itinerary":    res.Itinerary,
		"itinerary_id": res.ItineraryID,
	})
}

// POST /api/optimize/candidates
func (a *API) OptimizeCandidates(c *gin.Context) {
	var req services.OptimizeRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	it, err := a.planner(c).Optimize(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "itinerary": it})
}
