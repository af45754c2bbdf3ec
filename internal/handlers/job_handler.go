package handlers

import (
	"net/http"

	"github.com/counselflow/counselflow-api/internal/services"
	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	jobService *services.JobService
}

func NewJobHandler(jobSvc *services.JobService) *JobHandler {
	return &JobHandler{
		jobService: jobSvc,
	}
}

// Status returns the current worker status
// @Summary Get background job status
// @Description Statistics about background jobs and the recurring schedule
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=jobs.WorkerStats}
// @Router /jobs/status [get]
func (h *JobHandler) Status(c *gin.Context) {
	respondOK(c, http.StatusOK, h.jobService.GetStatus(), "")
}

// TriggerReminders queues an immediate expiry reminder run
// @Summary Send expiry reminders now
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Success 202 {object} Response
// @Router /jobs/reminders [post]
func (h *JobHandler) TriggerReminders(c *gin.Context) {
	h.jobService.TriggerReminders()
	c.JSON(http.StatusAccepted, Response{Success: true, Message: "Expiry reminders queued"})
}
