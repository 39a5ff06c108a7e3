package api

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"

	intconfig "tripplanner/internal/config"
	"tripplanner/internal/domain/models"
	h "tripplanner/internal/http/handlers"
	"tripplanner/internal/http/middleware"
	"tripplanner/internal/utils"
)

func NewRouter(env intconfig.Env, a *h.API) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(a.Logger),
		gin.Recovery(),
		middleware.CORS(utils.SplitList(env.CORSOrigins)),
		middleware.Metrics(a.Metrics),
		middleware.AuthOptional(a.JWTSecret),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		a.Logger.Warn().Err(err).Msg("failed to set trusted proxies")
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"success": false,
			"error":   "route not found",
			"path":    c.Request.URL.Path,
			"method":  c.Request.Method,
		})
	})

	if a.Metrics != nil {
		r.GET("/metrics", gin.WrapH(a.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)
		api.GET("/routes", h.Routes)

		// Auth
		auth := api.Group("/auth")
		auth.POST("/login", a.Login)
		auth.POST("/register", a.Register)

		// Optimizer
		api.POST("/optimize", a.Optimize)
		api.POST("/optimize/candidates", a.OptimizeCandidates)

		// Saved itineraries
		itineraries := api.Group("/itineraries", middleware.RequireAuth())
		itineraries.GET("", a.ListItineraries)
		itineraries.GET("/:id", a.GetItinerary)
		itineraries.GET("/:id/pdf", a.GetItineraryPDF)
		itineraries.DELETE("/:id", a.DeleteItinerary)

		// Admin
		admin := api.Group("/admin", middleware.RequireRoles(models.RoleAdmin))
		admin.GET("/sources", a.SourceStats)
	}

	h.SetRouter(r)
	return r
}
