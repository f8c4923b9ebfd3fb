package entities

import "time"

// AuditEventType groups run history by the command that produced it.
type AuditEventType string

const (
	AuditEventCrawl    AuditEventType = "crawl"
	AuditEventRegister AuditEventType = "register"
	AuditEventForget   AuditEventType = "forget"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

// AuditEvent is one entry of the run history. Crawl events carry the run id
// and the crawler stats as JSON metadata; Subject is the template name for
// crawls, the registered path for adds and the URL prefix for forgets.
type AuditEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	RunID       string         `gorm:"index;size:36" json:"run_id,omitempty"`
	EventType   AuditEventType `gorm:"index:idx_audit_type_subject;size:20" json:"event_type"`
	Subject     string         `gorm:"index:idx_audit_type_subject;size:1024" json:"subject"`
	Trigger     string         `gorm:"size:20" json:"trigger,omitempty"`
	Action      string         `gorm:"size:100" json:"action"`
	Description string         `gorm:"size:500" json:"description"`
	Metadata    string         `gorm:"type:text" json:"metadata,omitempty"`
	Status      AuditStatus    `gorm:"size:20" json:"status"`
	ErrorMsg    string         `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
