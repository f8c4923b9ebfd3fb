package http

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/imgmanager/internal/entities"
	"github.com/mrlokans/imgmanager/internal/tasks"
)

type CrawlsController struct {
	templates TemplateLister
	queue     CrawlEnqueuer
	runs      RunLog
}

// NewCrawlsController creates the template and crawl controller. runs may be
// nil, in which case templates are listed without their last run.
func NewCrawlsController(templates TemplateLister, queue CrawlEnqueuer, runs RunLog) *CrawlsController {
	return &CrawlsController{templates: templates, queue: queue, runs: runs}
}

type TemplateSummary struct {
	Name    string      `json:"name"`
	LastRun *RunSummary `json:"last_run,omitempty"`
}

type RunSummary struct {
	RunID   string               `json:"run_id"`
	Status  entities.AuditStatus `json:"status"`
	Trigger string               `json:"trigger,omitempty"`
	At      time.Time            `json:"at"`
	Error   string               `json:"error,omitempty"`
}

type CrawlRequest struct {
	Template string `json:"template" binding:"required"`
	Location string `json:"location,omitempty"`
}

// ListTemplates handles GET /api/templates
func (cc *CrawlsController) ListTemplates(c *gin.Context) {
	names, err := cc.templates.Templates()
	if err != nil {
		respondInternalError(c, err, "list templates")
		return
	}

	summaries := make([]TemplateSummary, 0, len(names))
	for _, name := range names {
		summary := TemplateSummary{Name: name}
		if cc.runs != nil {
			last, err := cc.runs.LastCrawl(name)
			if err != nil {
				respondInternalError(c, err, "last crawl")
				return
			}
			if last != nil {
				summary.LastRun = &RunSummary{
					RunID:   last.RunID,
					Status:  last.Status,
					Trigger: last.Trigger,
					At:      last.CreatedAt,
					Error:   last.ErrorMsg,
				}
			}
		}
		summaries = append(summaries, summary)
	}
	c.IndentedJSON(http.StatusOK, gin.H{"templates": summaries})
}

// Enqueue handles POST /api/crawls
// Only templates present in the templates directory can be crawled.
func (cc *CrawlsController) Enqueue(c *gin.Context) {
	var req CrawlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "template is required")
		return
	}

	name := strings.TrimSuffix(strings.TrimSpace(req.Template), ".xml")
	names, err := cc.templates.Templates()
	if err != nil {
		respondInternalError(c, err, "list templates")
		return
	}
	if !slices.Contains(names, name) {
		respondNotFound(c, "template "+name)
		return
	}

	taskID, err := cc.queue.EnqueueCrawl(tasks.CrawlTemplateTask{
		Template: name,
		Location: req.Location,
	})
	if err != nil {
		respondInternalError(c, err, "enqueue crawl")
		return
	}

	respondAccepted(c, "crawl enqueued", gin.H{"task_id": taskID, "template": name})
}
