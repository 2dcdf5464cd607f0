package restapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wallet_enricher/internal/app/port"
	"wallet_enricher/internal/domain/entity"
)

// APIRunsResponse is the body of the run listing endpoint.
type APIRunsResponse struct {
	Data struct {
		Runs []entity.RunSummary `json:"runs"`
	} `json:"data"`
	StatusMessage string `json:"status_message"`
}

type apiErrorResponse struct {
	Error string `json:"error"`
}

// RunHandler serves recorded sync job runs.
type RunHandler struct {
	runs port.RunReader
}

// NewRunHandler creates a new RunHandler.
func NewRunHandler(runs port.RunReader) *RunHandler {
	return &RunHandler{runs: runs}
}

// ListRunsHandler returns the latest run of every job.
func (h *RunHandler) ListRunsHandler(c *gin.Context) {
	var response APIRunsResponse
	response.Data.Runs = h.runs.All()
	if len(response.Data.Runs) == 0 {
		response.StatusMessage = "No runs recorded yet."
	} else {
		response.StatusMessage = "Runs retrieved successfully."
	}
	c.JSON(http.StatusOK, response)
}

// GetRunHandler returns the latest run of one job.
func (h *RunHandler) GetRunHandler(c *gin.Context) {
	job := c.Param("job")
	summary, ok := h.runs.Latest(job)
	if !ok {
		c.JSON(http.StatusNotFound, apiErrorResponse{Error: "no run recorded for job " + job})
		return
	}
	c.JSON(http.StatusOK, summary)
}
