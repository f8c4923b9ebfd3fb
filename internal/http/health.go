package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/imgmanager/internal/database"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
	Library *database.Summary `json:"library,omitempty"`
}

// HealthController reports whether the library database answers and
// whether crawls can be enqueued.
type HealthController struct {
	db        *database.Database
	version   string
	taskQueue bool
}

func NewHealthController(db *database.Database, version string, taskQueue bool) *HealthController {
	return &HealthController{db: db, version: version, taskQueue: taskQueue}
}

// Status handles GET /health. Only a failing database makes it 503.
func (h *HealthController) Status(c *gin.Context) {
	resp := HealthResponse{
		Status:  "healthy",
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  map[string]string{"task_queue": "disabled"},
	}
	if h.taskQueue {
		resp.Checks["task_queue"] = "ok"
	}

	if h.db == nil {
		resp.Checks["database"] = "not configured"
	} else if err := h.db.Ping(); err != nil {
		resp.Checks["database"] = "error: " + err.Error()
		resp.Status = "unhealthy"
	} else {
		resp.Checks["database"] = "ok"
		summary, err := h.db.Summary()
		if err != nil {
			resp.Checks["library"] = "error: " + err.Error()
		} else {
			resp.Library = &summary
		}
	}

	code := http.StatusOK
	if resp.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	c.IndentedJSON(code, resp)
}
