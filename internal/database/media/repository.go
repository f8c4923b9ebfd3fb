// Package media provides database operations for registered media files.
//
// # Interface Implementation
//
//	var _ library.MediaStore = (*Repository)(nil)
package media

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/imgmanager/internal/entities"
)

// Repository handles all media database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new media repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ExistsByPath reports whether a media record with this local path exists.
func (r *Repository) ExistsByPath(path string) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Media{}).Where("local_path = ?", path).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// RegisterByPath inserts a media record for path. Registering an existing
// path is a no-op.
func (r *Repository) RegisterByPath(path string) error {
	media := &entities.Media{
		LocalPath: path,
		LastSeen:  time.Now(),
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "local_path"}},
		DoNothing: true,
	}).Create(media).Error
}

// TouchByPath updates last_seen for an already registered path.
func (r *Repository) TouchByPath(path string) error {
	result := r.db.Model(&entities.Media{}).
		Where("local_path = ?", path).
		Update("last_seen", time.Now())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List returns a page of media ordered by most recently registered first.
func (r *Repository) List(limit, offset int) ([]entities.Media, int64, error) {
	var items []entities.Media
	var total int64

	if err := r.db.Model(&entities.Media{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	err := r.db.Order("id DESC").Limit(limit).Offset(offset).Find(&items).Error
	return items, total, err
}
