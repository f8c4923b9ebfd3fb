package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/imgmanager/internal/audit"
	"github.com/mrlokans/imgmanager/internal/database"
	auditRepo "github.com/mrlokans/imgmanager/internal/database/audit"
	"github.com/mrlokans/imgmanager/internal/database/media"
	"github.com/mrlokans/imgmanager/internal/database/visited"
	"github.com/mrlokans/imgmanager/internal/entities"
	"github.com/mrlokans/imgmanager/internal/tasks"
)

type staticTemplates struct {
	names []string
	err   error
}

func (s staticTemplates) Templates() ([]string, error) {
	return s.names, s.err
}

type fakeQueue struct {
	enqueued []tasks.CrawlTemplateTask
	err      error
	statuses map[string]backlite.TaskStatus
}

func (q *fakeQueue) EnqueueCrawl(task tasks.CrawlTemplateTask) (string, error) {
	if q.err != nil {
		return "", q.err
	}
	q.enqueued = append(q.enqueued, task)
	return "task-1", nil
}

func (q *fakeQueue) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	status, ok := q.statuses[taskID]
	if !ok {
		return backlite.TaskStatusNotFound, nil
	}
	return status, nil
}

type apiFixture struct {
	router  http.Handler
	media   *media.Repository
	visited *visited.Repository
	audit   *audit.Service
	queue   *fakeQueue
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &apiFixture{
		media:   media.NewRepository(db.DB),
		visited: visited.NewRepository(db.DB),
		audit:   audit.NewService(auditRepo.NewRepository(db.DB)),
		queue:   &fakeQueue{statuses: map[string]backlite.TaskStatus{"task-1": backlite.TaskStatusRunning}},
	}
	f.router = NewRouter(RouterConfig{
		Database:   db,
		Version:    "test",
		Media:      f.media,
		Visited:    f.visited,
		Runs:       f.audit,
		Templates:  staticTemplates{names: []string{"gallery"}},
		CrawlQueue: f.queue,
		TaskStatus: f.queue,
	})
	return f
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestRouter_SecurityHeaders(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, "GET", "/ping", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "default-src 'none'")
}

func TestRouter_ListMedia(t *testing.T) {
	f := newAPIFixture(t)
	for _, path := range []string{"/photos/a.jpg", "/photos/b.jpg", "/photos/c.jpg"} {
		require.NoError(t, f.media.RegisterByPath(path))
	}

	w := f.do(t, "GET", "/api/media?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data    []entities.Media `json:"data"`
		Total   int64            `json:"total"`
		HasMore bool             `json:"has_more"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, int64(3), resp.Total)
	assert.True(t, resp.HasMore)

	w = f.do(t, "GET", "/api/media?limit=x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_ListVisited(t *testing.T) {
	f := newAPIFixture(t)
	require.NoError(t, f.visited.MarkVisited("https://example.com/list?p=0"))

	w := f.do(t, "GET", "/api/visited", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data  []entities.VisitedPage `json:"data"`
		Total int64                  `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "https://example.com/list?p=0", resp.Data[0].URL)
}

func TestRouter_Runs(t *testing.T) {
	f := newAPIFixture(t)
	f.audit.LogCrawl("run-1", "gallery", "cli", map[string]int{"downloads": 2}, nil)
	f.audit.LogRegister("/photos", 2, 3, nil)

	w := f.do(t, "GET", "/api/runs", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Data  []entities.AuditEvent `json:"data"`
		Total int64                 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, int64(1), list.Total, "only crawl events are runs")
	assert.Equal(t, "run-1", list.Data[0].RunID)

	w = f.do(t, "GET", "/api/runs/run-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"run_id": "run-1"`)

	w = f.do(t, "GET", "/api/runs/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_EnqueueCrawl(t *testing.T) {
	t.Run("accepts a known template", func(t *testing.T) {
		f := newAPIFixture(t)

		w := f.do(t, "POST", "/api/crawls", gin.H{"template": "gallery.xml", "location": "/tmp/out"})
		require.Equal(t, http.StatusAccepted, w.Code)

		var resp SuccessResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data, ok := resp.Data.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "task-1", data["task_id"])

		require.Len(t, f.queue.enqueued, 1)
		assert.Equal(t, tasks.CrawlTemplateTask{Template: "gallery", Location: "/tmp/out"}, f.queue.enqueued[0])
	})

	t.Run("rejects a missing template field", func(t *testing.T) {
		f := newAPIFixture(t)

		w := f.do(t, "POST", "/api/crawls", gin.H{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, f.queue.enqueued)
	})

	t.Run("rejects an unknown template", func(t *testing.T) {
		f := newAPIFixture(t)

		w := f.do(t, "POST", "/api/crawls", gin.H{"template": "nope"})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Empty(t, f.queue.enqueued)
	})

	t.Run("queue failure", func(t *testing.T) {
		f := newAPIFixture(t)
		f.queue.err = errors.New("database is locked")

		w := f.do(t, "POST", "/api/crawls", gin.H{"template": "gallery"})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestRouter_ListTemplates(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, "GET", "/api/templates", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name": "gallery"`)
	assert.NotContains(t, w.Body.String(), "last_run")

	f.audit.LogCrawl("run-9", "gallery", "schedule", nil, nil)

	w = f.do(t, "GET", "/api/templates", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Templates []TemplateSummary `json:"templates"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Templates, 1)
	require.NotNil(t, resp.Templates[0].LastRun)
	assert.Equal(t, "run-9", resp.Templates[0].LastRun.RunID)
	assert.Equal(t, entities.AuditStatusSuccess, resp.Templates[0].LastRun.Status)
	assert.Equal(t, "schedule", resp.Templates[0].LastRun.Trigger)
}

func TestRouter_TaskStatus(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, "GET", "/api/tasks/task-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status": "running"`)

	w = f.do(t, "GET", "/api/tasks/other", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status": "not_found"`)
}

func TestRouter_WithoutTaskQueue(t *testing.T) {
	router := NewRouter(RouterConfig{Templates: staticTemplates{names: []string{"gallery"}}})

	req := httptest.NewRequest("POST", "/api/crawls", bytes.NewReader([]byte(`{"template":"gallery"}`)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	req = httptest.NewRequest("GET", "/health", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"task_queue": "disabled"`)
}
