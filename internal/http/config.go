package http

import (
	"github.com/mrlokans/imgmanager/internal/database"
)

// RouterConfig contains the dependencies needed to create the HTTP router.
// Optional controllers are left out when their dependency is nil.
type RouterConfig struct {
	Database *database.Database
	Version  string

	Media     MediaLister
	Visited   VisitedLister
	Runs      RunLog
	Templates TemplateLister

	// Task queue client (optional). Without it crawls cannot be enqueued.
	CrawlQueue CrawlEnqueuer
	TaskStatus TaskStatusReader
}
