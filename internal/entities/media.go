package entities

import "time"

// SupportedMediaExtensions lists the file extensions the library registers.
var SupportedMediaExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".mp4":  true,
	".mov":  true,
}

type Media struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	LocalPath     string    `gorm:"size:1024;uniqueIndex;not null" json:"local_path"`
	ThumbnailPath string    `gorm:"size:1024" json:"thumbnail_path,omitempty"`
	CloudURL      string    `gorm:"size:1024" json:"cloud_url,omitempty"`
	LastSeen      time.Time `json:"last_seen"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Media) TableName() string {
	return "media"
}
