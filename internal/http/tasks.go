package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/imgmanager/internal/tasks"
)

const taskStatusTimeout = 5 * time.Second

type TaskStatusResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// TasksController reports on crawls enqueued through POST /api/crawls.
type TasksController struct {
	client TaskStatusReader
}

func NewTasksController(client TaskStatusReader) *TasksController {
	return &TasksController{client: client}
}

// GetTaskStatus handles GET /api/tasks/:id
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := strings.TrimSpace(c.Param("id"))
	if taskID == "" {
		respondBadRequest(c, "task ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), taskStatusTimeout)
	defer cancel()

	status, err := tc.client.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}

	c.IndentedJSON(http.StatusOK, TaskStatusResponse{ID: taskID, Status: tasks.StatusString(status)})
}
