// Package visited provides database operations for save-progress markers.
//
// A page URL is marked once its extraction has completed, so a partially
// crawled listing can be resumed page by page.
package visited

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/imgmanager/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// IsVisited reports whether url has been marked.
func (r *Repository) IsVisited(url string) (bool, error) {
	var count int64
	err := r.db.Model(&entities.VisitedPage{}).Where("url = ?", url).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkVisited records url. Marking twice is a no-op.
func (r *Repository) MarkVisited(url string) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "url"}},
		DoNothing: true,
	}).Create(&entities.VisitedPage{URL: url}).Error
}

// ForgetPrefix removes every marker whose URL starts with prefix and returns
// how many were removed.
func (r *Repository) ForgetPrefix(prefix string) (int64, error) {
	result := r.db.Where("url LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%").
		Delete(&entities.VisitedPage{})
	return result.RowsAffected, result.Error
}

// List returns a page of markers, most recent first.
func (r *Repository) List(limit, offset int) ([]entities.VisitedPage, int64, error) {
	var pages []entities.VisitedPage
	var total int64

	if err := r.db.Model(&entities.VisitedPage{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	err := r.db.Order("id DESC").Limit(limit).Offset(offset).Find(&pages).Error
	return pages, total, err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
