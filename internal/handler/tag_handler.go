package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/notesapp/notes-api/internal/database/service"
	"github.com/notesapp/notes-api/internal/middleware"
)

// TagHandler handles HTTP requests for tags
type TagHandler struct {
	tagService service.TagService
	logger     *slog.Logger
}

// NewTagHandler creates a new tag handler
func NewTagHandler(tagService service.TagService, logger *slog.Logger) *TagHandler {
	return &TagHandler{
		tagService: tagService,
		logger:     logger,
	}
}

// ListTags returns the distinct tag names on the caller's notes
func (h *TagHandler) ListTags(c *gin.Context) {
	names, err := h.tagService.ListTags(c.Request.Context(), middleware.IdentityFrom(c))
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tags": nonNilTags(names)})
}
