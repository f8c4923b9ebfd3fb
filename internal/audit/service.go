package audit

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mrlokans/imgmanager/internal/database/audit"
	"github.com/mrlokans/imgmanager/internal/entities"
)

// Service records crawl and library run outcomes.
type Service struct {
	repo *audit.Repository
}

func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogCrawl records the outcome of one crawl run. stats is stored as JSON
// metadata.
func (s *Service) LogCrawl(runID, templateName, trigger string, stats any, err error) {
	event := &entities.AuditEvent{
		RunID:       runID,
		EventType:   entities.AuditEventCrawl,
		Action:      trigger + "_crawl",
		Description: fmt.Sprintf("Crawled template %s", templateName),
		Subject:     templateName,
		Trigger:     trigger,
		Status:      entities.AuditStatusSuccess,
	}
	event.Metadata = marshalMetadata(stats)

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.Description = fmt.Sprintf("Crawl of template %s failed", templateName)
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.save(event)
}

// LogRegister records an add command run.
func (s *Service) LogRegister(path string, registered, total int, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventRegister,
		Action:      "path_add",
		Description: fmt.Sprintf("Registered %d/%d files", registered, total),
		Subject:     path,
		Status:      entities.AuditStatusSuccess,
		Metadata:    marshalMetadata(map[string]int{"registered": registered, "total": total}),
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.save(event)
}

// LogForget records removal of visited markers.
func (s *Service) LogForget(prefix string, removed int64) {
	s.save(&entities.AuditEvent{
		EventType:   entities.AuditEventForget,
		Action:      "visited_forget",
		Description: fmt.Sprintf("Forgot %d visited pages", removed),
		Subject:     prefix,
		Status:      entities.AuditStatusSuccess,
	})
}

// GetEvents retrieves paginated audit events. An empty eventType returns all types.
func (s *Service) GetEvents(eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(eventType, limit, offset)
}

// GetRun retrieves the events of one run.
func (s *Service) GetRun(runID string) ([]entities.AuditEvent, error) {
	return s.repo.GetEventsByRun(runID)
}

// LastCrawl returns the most recent crawl of a template, or nil if it never ran.
func (s *Service) LastCrawl(templateName string) (*entities.AuditEvent, error) {
	return s.repo.Latest(entities.AuditEventCrawl, templateName)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}

func (s *Service) save(event *entities.AuditEvent) {
	if err := s.repo.LogEvent(event); err != nil {
		slog.Error("failed to log audit event", "action", event.Action, "error", err)
	}
}

func marshalMetadata(v any) string {
	if v == nil {
		return ""
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
