package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/counselflow/counselflow-api/internal/repository"
	"github.com/counselflow/counselflow-api/internal/services"
	"github.com/counselflow/counselflow-api/internal/validation"
	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService *services.AuditService
}

func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// @Summary List Audit Logs
// @Description Paginated audit trail, newest first
// @Tags Audit
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page (max 100)" default(50)
// @Param entityId query string false "Filter by entity id"
// @Param userId query string false "Filter by acting user"
// @Param action query string false "CREATE, UPDATE, STATUS, DELETE or DUPLICATE"
// @Success 200 {object} Response{data=[]models.AuditLog}
// @Failure 400 {object} Response
// @Security BearerAuth
// @Router /audits [get]
func (h *AuditHandler) Index(c *gin.Context) {
	values := c.Request.URL.Query()
	verr := &validation.Error{}
	page := boundedInt(verr, values, "page", 1, 1, 0)
	limit := boundedInt(verr, values, "limit", 50, 1, validation.MaxLimit)
	if err := verr.OrNil(); err != nil {
		respondError(c, err)
		return
	}

	filter := repository.AuditFilter{
		EntityID: c.Query("entityId"),
		UserID:   c.Query("userId"),
		Action:   c.Query("action"),
	}

	logs, pagination, err := h.auditService.List(c.Request.Context(), filter, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: logs, Pagination: &pagination, Message: "Audit logs retrieved successfully"})
}

// boundedInt reads an integer parameter; max 0 means unbounded
func boundedInt(verr *validation.Error, values url.Values, key string, def, min, max int) int {
	raw := values.Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	switch {
	case err != nil:
		verr.Add(key, "must be an integer")
	case n < min:
		verr.Add(key, "must be at least "+strconv.Itoa(min))
	case max > 0 && n > max:
		verr.Add(key, "must be at most "+strconv.Itoa(max))
	}
	return n
}
