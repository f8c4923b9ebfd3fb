package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/imgmanager/internal/crawl"
)

// CrawlRunner runs one template crawl.
type CrawlRunner interface {
	Run(ctx context.Context, opts crawl.Options) (crawl.Result, error)
}

// CrawlTemplateTask crawls one template in the background. Nobody can answer
// an extraction prompt here, so a prompt policy behaves like abort.
type CrawlTemplateTask struct {
	Template string `json:"template"`
	Location string `json:"location,omitempty"`
	Trigger  string `json:"trigger,omitempty"`
}

// Config returns the queue configuration for crawl tasks. A crawl is never
// retried automatically: a partial run already marked its pages visited.
func (t CrawlTemplateTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "crawl_template",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     2 * time.Hour,
		Retention: &backlite.Retention{
			Duration:   7 * 24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CrawlTemplateProcessor creates a processor function for CrawlTemplateTask.
func CrawlTemplateProcessor(runner CrawlRunner) backlite.QueueProcessor[CrawlTemplateTask] {
	return func(ctx context.Context, task CrawlTemplateTask) error {
		if runner == nil {
			return fmt.Errorf("crawl runner not configured")
		}
		if task.Template == "" {
			return fmt.Errorf("crawl task has no template")
		}

		trigger := task.Trigger
		if trigger == "" {
			trigger = crawl.TriggerTask
		}

		result, err := runner.Run(ctx, crawl.Options{
			Template: task.Template,
			Location: task.Location,
			Trigger:  trigger,
		})
		if err != nil {
			return fmt.Errorf("crawl %s: %w", task.Template, err)
		}

		slog.Info("crawl task complete", "template", result.Template, "run_id", result.RunID, "stats", result.Stats.String())
		return nil
	}
}

func NewCrawlTemplateQueue(runner CrawlRunner) backlite.Queue {
	return backlite.NewQueue(CrawlTemplateProcessor(runner))
}

// EnqueueCrawl adds a crawl of one template and returns the task id.
func (c *Client) EnqueueCrawl(task CrawlTemplateTask) (string, error) {
	ids, err := c.Add(task).Save()
	if err != nil {
		return "", fmt.Errorf("failed to enqueue crawl: %w", err)
	}
	if len(ids) == 0 {
		return "", fmt.Errorf("failed to enqueue crawl: no task id returned")
	}
	return ids[0], nil
}
