package audit

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/imgmanager/internal/entities"
)

const defaultPageSize = 50

// Repository stores the run history.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) LogEvent(event *entities.AuditEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	return r.db.Create(event).Error
}

// GetEvents pages through events newest first. An empty eventType matches
// every type.
func (r *Repository) GetEvents(eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error) {
	query := r.db.Model(&entities.AuditEvent{})
	if eventType != "" {
		query = query.Where("event_type = ?", eventType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = defaultPageSize
	}
	offset = max(offset, 0)

	var events []entities.AuditEvent
	err := query.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&events).Error
	return events, total, err
}

// GetEventsByRun returns the events of one run in the order they happened.
func (r *Repository) GetEventsByRun(runID string) ([]entities.AuditEvent, error) {
	var events []entities.AuditEvent
	err := r.db.Where("run_id = ?", runID).Order("created_at ASC, id ASC").Find(&events).Error
	return events, err
}

// Latest returns the newest event of a type for a subject, or nil.
func (r *Repository) Latest(eventType entities.AuditEventType, subject string) (*entities.AuditEvent, error) {
	var event entities.AuditEvent
	err := r.db.Where("event_type = ? AND subject = ?", eventType, subject).
		Order("created_at DESC, id DESC").
		First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// DeleteOldEvents removes events created before olderThan and reports how
// many went.
func (r *Repository) DeleteOldEvents(olderThan time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", olderThan).Delete(&entities.AuditEvent{})
	return result.RowsAffected, result.Error
}
