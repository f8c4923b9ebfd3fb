package visited

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/imgmanager/internal/entities"
)

func setupTestDB(t *testing.T) *Repository {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "visited.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.VisitedPage{}))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return NewRepository(db)
}

func TestRepository_MarkVisited(t *testing.T) {
	repo := setupTestDB(t)
	url := "https://example.com/list?p=0"

	visited, err := repo.IsVisited(url)
	require.NoError(t, err)
	assert.False(t, visited)

	require.NoError(t, repo.MarkVisited(url))
	require.NoError(t, repo.MarkVisited(url))

	visited, err = repo.IsVisited(url)
	require.NoError(t, err)
	assert.True(t, visited)

	_, total, err := repo.List(10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestRepository_ForgetPrefix(t *testing.T) {
	repo := setupTestDB(t)

	for _, u := range []string{
		"https://example.com/list?p=0",
		"https://example.com/list?p=1",
		"https://example.com/list_other?p=0",
		"https://other.org/list?p=0",
	} {
		require.NoError(t, repo.MarkVisited(u))
	}

	// "_" must not act as a LIKE wildcard
	removed, err := repo.ForgetPrefix("https://example.com/list?")
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	visited, err := repo.IsVisited("https://example.com/list_other?p=0")
	require.NoError(t, err)
	assert.True(t, visited)

	visited, err = repo.IsVisited("https://other.org/list?p=0")
	require.NoError(t, err)
	assert.True(t, visited)
}
