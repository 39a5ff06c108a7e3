package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/admin/sources
func (a *API) SourceStats(c *gin.Context) {
	if a.Gatherer == nil {
		respondError(c, http.StatusServiceUnavailable, "no_sources", "no candidate sources configured", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"sources": a.Gatherer.Stats(),
		"weights": a.Config.Weights,
	})
}
