package http

import (
	"context"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/imgmanager/internal/entities"
	"github.com/mrlokans/imgmanager/internal/tasks"
)

// Each controller depends on the narrow interface it needs.

type MediaLister interface {
	List(limit, offset int) ([]entities.Media, int64, error)
}

type VisitedLister interface {
	List(limit, offset int) ([]entities.VisitedPage, int64, error)
}

type RunLog interface {
	GetEvents(eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error)
	GetRun(runID string) ([]entities.AuditEvent, error)
	LastCrawl(templateName string) (*entities.AuditEvent, error)
}

type TemplateLister interface {
	Templates() ([]string, error)
}

type CrawlEnqueuer interface {
	EnqueueCrawl(task tasks.CrawlTemplateTask) (string, error)
}

type TaskStatusReader interface {
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}
