package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/counselflow/counselflow-api/pkg/logger"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// @Summary Health Check
// @Description Reports whether the API and its database are reachable
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) Index(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status, database := http.StatusOK, "ok"
	if err := h.ping(ctx); err != nil {
		logger.WithContext(ctx).Error("health check failed", "error", err)
		status, database = http.StatusServiceUnavailable, "unavailable"
	}

	c.JSON(status, gin.H{
		"status":   http.StatusText(status),
		"database": database,
		"service":  "counselflow-api",
		"version":  "1.0.0",
	})
}

func (h *HealthHandler) ping(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
