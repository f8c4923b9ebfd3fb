package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/imgmanager/internal/entities"
)

type RunsController struct {
	runs RunLog
}

func NewRunsController(runs RunLog) *RunsController {
	return &RunsController{runs: runs}
}

// ListRuns handles GET /api/runs
// Returns crawl outcomes, newest first.
func (rc *RunsController) ListRuns(c *gin.Context) {
	limit, offset, ok := parsePagination(c)
	if !ok {
		return
	}

	events, total, err := rc.runs.GetEvents(entities.AuditEventCrawl, limit, offset)
	if err != nil {
		respondInternalError(c, err, "list runs")
		return
	}

	c.IndentedJSON(http.StatusOK, newPaginatedResponse(events, total, limit, offset))
}

// GetRun handles GET /api/runs/:id
func (rc *RunsController) GetRun(c *gin.Context) {
	runID := c.Param("id")

	events, err := rc.runs.GetRun(runID)
	if err != nil {
		respondInternalError(c, err, "get run")
		return
	}
	if len(events) == 0 {
		respondNotFound(c, "run")
		return
	}

	c.IndentedJSON(http.StatusOK, gin.H{"run_id": runID, "events": events})
}
