package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantOK     bool
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", true, 25, 0},
		{"explicit", "?limit=10&offset=20", true, 10, 20},
		{"limit capped", "?limit=1000", true, 100, 0},
		{"zero limit", "?limit=0", false, 0, 0},
		{"bad limit", "?limit=abc", false, 0, 0},
		{"negative offset", "?offset=-1", false, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("GET", "/"+tt.query, nil)

			limit, offset, ok := parsePagination(c)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantLimit, limit)
			assert.Equal(t, tt.wantOffset, offset)
			if !tt.wantOK {
				assert.Equal(t, http.StatusBadRequest, w.Code)
			}
		})
	}
}

func TestNewPaginatedResponse(t *testing.T) {
	resp := newPaginatedResponse([]int{1, 2}, 5, 2, 0)
	assert.True(t, resp.HasMore)
	assert.Equal(t, 3, resp.TotalPages)

	resp = newPaginatedResponse([]int{5}, 5, 2, 4)
	assert.False(t, resp.HasMore)
}

func TestRespondInternalError_HidesCause(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondInternalError(c, errors.New("disk I/O error"), "test")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
	assert.NotContains(t, w.Body.String(), "disk")
}

func TestRespondNotFound(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondNotFound(c, "run")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"error": "run not found"`)
}
