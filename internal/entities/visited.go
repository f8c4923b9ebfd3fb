package entities

import "time"

// VisitedPage marks a save-progress page URL as already crawled.
type VisitedPage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	URL       string    `gorm:"size:2048;uniqueIndex;not null" json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

func (VisitedPage) TableName() string {
	return "visited_pages"
}
