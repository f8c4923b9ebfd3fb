package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(RequestLogger())
	router.Use(gin.Recovery())
	router.Use(SecurityHeadersMiddleware())

	health := NewHealthController(cfg.Database, cfg.Version, cfg.CrawlQueue != nil)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	api := router.Group("/api")

	if cfg.Media != nil && cfg.Visited != nil {
		library := NewLibraryController(cfg.Media, cfg.Visited)
		api.GET("/media", library.ListMedia)
		api.GET("/visited", library.ListVisited)
	}

	if cfg.Runs != nil {
		runs := NewRunsController(cfg.Runs)
		api.GET("/runs", runs.ListRuns)
		api.GET("/runs/:id", runs.GetRun)
	}

	if cfg.Templates != nil {
		crawls := NewCrawlsController(cfg.Templates, cfg.CrawlQueue, cfg.Runs)
		api.GET("/templates", crawls.ListTemplates)
		if cfg.CrawlQueue != nil {
			api.POST("/crawls", crawls.Enqueue)
		}
	}

	if cfg.TaskStatus != nil {
		tasksController := NewTasksController(cfg.TaskStatus)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
	}

	return router
}
