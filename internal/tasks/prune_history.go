package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mikestefanello/backlite"
)

// DefaultHistoryRetentionDays applies when a prune task carries no retention.
const DefaultHistoryRetentionDays = 30

// HistoryPruner drops crawl, register and forget records older than a cutoff.
type HistoryPruner interface {
	DeleteOldEvents(retention time.Duration) (int64, error)
}

// PruneHistoryTask trims the run history kept in the audit log.
type PruneHistoryTask struct {
	RetentionDays int `json:"retention_days"`
}

func (t PruneHistoryTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "prune_run_history",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration: 24 * time.Hour,
			Data:     &backlite.RetainData{OnlyFailed: true},
		},
	}
}

func (t PruneHistoryTask) retention() (int, time.Duration) {
	days := t.RetentionDays
	if days <= 0 {
		days = DefaultHistoryRetentionDays
	}
	return days, time.Duration(days) * 24 * time.Hour
}

func PruneHistoryProcessor(pruner HistoryPruner) backlite.QueueProcessor[PruneHistoryTask] {
	return func(ctx context.Context, task PruneHistoryTask) error {
		if pruner == nil {
			return fmt.Errorf("history pruner not configured")
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		days, retention := task.retention()
		removed, err := pruner.DeleteOldEvents(retention)
		if err != nil {
			return fmt.Errorf("failed to prune run history: %w", err)
		}

		slog.Info("pruned run history", "removed", removed, "retention_days", days)
		return nil
	}
}

func NewPruneHistoryQueue(pruner HistoryPruner) backlite.Queue {
	return backlite.NewQueue(PruneHistoryProcessor(pruner))
}

// EnqueuePrune schedules a history prune and returns the task id.
func (c *Client) EnqueuePrune(retentionDays int) (string, error) {
	ids, err := c.Add(PruneHistoryTask{RetentionDays: retentionDays}).Save()
	if err != nil {
		return "", fmt.Errorf("failed to enqueue history prune: %w", err)
	}
	if len(ids) == 0 {
		return "", fmt.Errorf("failed to enqueue history prune: no task id returned")
	}
	return ids[0], nil
}
