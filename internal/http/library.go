package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// LibraryController exposes the registered media and the visited pages.
type LibraryController struct {
	media   MediaLister
	visited VisitedLister
}

func NewLibraryController(media MediaLister, visited VisitedLister) *LibraryController {
	return &LibraryController{media: media, visited: visited}
}

// ListMedia handles GET /api/media
func (lc *LibraryController) ListMedia(c *gin.Context) {
	limit, offset, ok := parsePagination(c)
	if !ok {
		return
	}

	items, total, err := lc.media.List(limit, offset)
	if err != nil {
		respondInternalError(c, err, "list media")
		return
	}

	c.IndentedJSON(http.StatusOK, newPaginatedResponse(items, total, limit, offset))
}

// ListVisited handles GET /api/visited
func (lc *LibraryController) ListVisited(c *gin.Context) {
	limit, offset, ok := parsePagination(c)
	if !ok {
		return
	}

	pages, total, err := lc.visited.List(limit, offset)
	if err != nil {
		respondInternalError(c, err, "list visited pages")
		return
	}

	c.IndentedJSON(http.StatusOK, newPaginatedResponse(pages, total, limit, offset))
}
