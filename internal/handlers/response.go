package handlers

import (
	"errors"
	"net/http"

	"github.com/counselflow/counselflow-api/internal/middleware"
	"github.com/counselflow/counselflow-api/internal/policy"
	"github.com/counselflow/counselflow-api/internal/query"
	"github.com/counselflow/counselflow-api/internal/services"
	"github.com/counselflow/counselflow-api/internal/statemachine"
	"github.com/counselflow/counselflow-api/internal/validation"
	"github.com/counselflow/counselflow-api/pkg/logger"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

// Response is the envelope of every JSON response
type Response struct {
	Success    bool                    `json:"success"`
	Data       any                     `json:"data,omitempty"`
	Pagination *query.Pagination       `json:"pagination,omitempty"`
	Message    string                  `json:"message,omitempty"`
	Error      string                  `json:"error,omitempty"`
	Details    []validation.FieldError `json:"details,omitempty"`
}

// Messages shown to API clients
const (
	msgClientNotVisible = "Client not found or access denied."
	msgContractNotFound = "Contract not found"
	msgValidationFailed = "Validation failed"
	msgInternal         = "Internal server error"
)

func respondOK(c *gin.Context, status int, data any, message string) {
	c.JSON(status, Response{Success: true, Data: data, Message: message})
}

func respondPage(c *gin.Context, data any, pagination query.Pagination, message string) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data, Pagination: &pagination, Message: message})
}

func respondFailure(c *gin.Context, status int, message string) {
	c.JSON(status, Response{Success: false, Error: message})
}

// respondError maps service errors onto status codes. Anything unrecognised is a 500 whose
// cause is logged and reported but never shown to the client.
func respondError(c *gin.Context, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: msgValidationFailed, Details: verr.Fields})
	case errors.Is(err, statemachine.ErrUnknownStatus):
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   msgValidationFailed,
			Details: []validation.FieldError{{Field: "status", Message: err.Error()}},
		})
	case errors.Is(err, services.ErrClientNotVisible):
		respondFailure(c, http.StatusNotFound, msgClientNotVisible)
	case errors.Is(err, services.ErrNotFound):
		respondFailure(c, http.StatusNotFound, msgContractNotFound)
	case errors.Is(err, services.ErrUnsupportedFormat):
		respondFailure(c, http.StatusBadRequest, "Invalid format (csv, xlsx, pdf)")
	case errors.Is(err, services.ErrForbidden):
		respondFailure(c, http.StatusForbidden, "You do not have access to this resource")
	default:
		_ = c.Error(err)
		logger.WithContext(c.Request.Context()).Error("request failed",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		respondFailure(c, http.StatusInternalServerError, msgInternal)
	}
}

// requireCaller returns the authenticated caller or writes a 401
func requireCaller(c *gin.Context) (policy.Caller, bool) {
	caller, ok := middleware.CurrentCaller(c)
	if !ok || caller.UserID == "" {
		respondFailure(c, http.StatusUnauthorized, "Authentication required")
		return policy.Caller{}, false
	}
	return caller, true
}
