package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/recaudoseguro/recaudo-api/internal/services"
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
// @Description Get statistics about background jobs (active, completed, failed, queue length)
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /jobs/status [get]
func (h *JobHandler) Status(c *gin.Context) {
	status := h.jobService.GetStatus()
	c.JSON(http.StatusOK, status)
}

// Run queues a scheduled job for immediate execution
// @Summary Run a scheduled job now
// @Tags Jobs
// @Produce json
// @Param name path string true "Job name" Enums(scan_defaults)
// @Security BearerAuth
// @Success 202 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /jobs/{name}/run [post]
func (h *JobHandler) Run(c *gin.Context) {
	name := c.Param("name")
	if err := h.jobService.RunNow(name); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "trabajo encolado", "job": name})
}
