package database

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/imgmanager/internal/entities"
)

func TestNewDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := NewDatabase(dbPath)
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.Ping())
	for _, table := range []string{"media", "visited_pages", "audit_events"} {
		assert.True(t, db.DB.Migrator().HasTable(table), table)
	}
}

func TestDatabase_Summary(t *testing.T) {
	db, err := NewDatabase(filepath.Join(t.TempDir(), "summary.db"))
	require.NoError(t, err)
	defer db.Close()

	empty, err := db.Summary()
	require.NoError(t, err)
	assert.Equal(t, Summary{}, empty)

	require.NoError(t, db.DB.Create(&entities.Media{LocalPath: "/m/a.jpg"}).Error)
	require.NoError(t, db.DB.Create(&entities.Media{LocalPath: "/m/b.png"}).Error)
	require.NoError(t, db.DB.Create(&entities.VisitedPage{URL: "https://example.com/list?p=0"}).Error)
	require.NoError(t, db.DB.Create(&entities.AuditEvent{EventType: entities.AuditEventCrawl, CreatedAt: time.Now()}).Error)
	require.NoError(t, db.DB.Create(&entities.AuditEvent{EventType: entities.AuditEventRegister, CreatedAt: time.Now()}).Error)

	summary, err := db.Summary()
	require.NoError(t, err)
	assert.Equal(t, Summary{Media: 2, VisitedPages: 1, CrawlRuns: 1}, summary)
}

func TestRollingBackup(t *testing.T) {
	t.Run("missing database is skipped", func(t *testing.T) {
		target, err := RollingBackup(filepath.Join(t.TempDir(), "none.db"), 3)
		require.NoError(t, err)
		assert.Empty(t, target)
	})

	t.Run("disabled when count is zero", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "db.sqlite")
		require.NoError(t, os.WriteFile(path, []byte("v1"), 0644))

		target, err := RollingBackup(path, 0)
		require.NoError(t, err)
		assert.Empty(t, target)
	})

	t.Run("rotates oldest backup once full", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "db.sqlite")

		var targets []string
		for i := 0; i < 3; i++ {
			require.NoError(t, os.WriteFile(path, []byte{byte('a' + i)}, 0644))
			target, err := RollingBackup(path, 2)
			require.NoError(t, err)
			targets = append(targets, target)
			// distinct modification times
			past := time.Now().Add(time.Duration(i-10) * time.Minute)
			require.NoError(t, os.Chtimes(target, past, past))
		}

		assert.Equal(t, path+"-backup", targets[0])
		assert.Equal(t, path+"-backup-1", targets[1])
		assert.Equal(t, path+"-backup", targets[2])

		data, err := os.ReadFile(path + "-backup")
		require.NoError(t, err)
		assert.Equal(t, []byte("c"), data)
	})
}
