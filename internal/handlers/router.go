package handlers

import (
	"time"

	"github.com/counselflow/counselflow-api/internal/config"
	"github.com/counselflow/counselflow-api/internal/middleware"
	"github.com/counselflow/counselflow-api/internal/models"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// NewRouter wires middleware and every /api/v1 route
func NewRouter(h *Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(middleware.RequestID())
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true, Timeout: 3 * time.Second}))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	// Export downloads are already compressed (xlsx) or binary (pdf)
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/v1/contracts/export"})))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", h.Health.Index)

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			contracts := protected.Group("/contracts")
			{
				contracts.GET("", h.Contract.Index)
				contracts.POST("", h.Contract.Create)
				// Static routes before :id
				contracts.GET("/stats", h.Contract.Stats)
				contracts.GET("/search", h.Contract.Search)
				contracts.GET("/export", h.Contract.Export)
				contracts.GET("/:id", h.Contract.Show)
				contracts.PUT("/:id", h.Contract.Update)
				contracts.PATCH("/:id/status", h.Contract.UpdateStatus)
				contracts.DELETE("/:id", h.Contract.Delete)
				contracts.POST("/:id/duplicate", h.Contract.Duplicate)
			}

			protected.GET("/audits", middleware.RequireRole(models.RoleAdmin, models.RolePartner), h.Audit.Index)

			admin := protected.Group("/jobs")
			admin.Use(middleware.RequireRole(models.RoleAdmin))
			{
				admin.GET("/status", h.Job.Status)
				admin.POST("/reminders", h.Job.TriggerReminders)
			}
		}
	}

	return router
}
