package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/notesapp/notes-api/internal/database/models"
	"github.com/notesapp/notes-api/internal/database/service"
	"github.com/notesapp/notes-api/internal/middleware"
)

// NoteHandler handles HTTP requests for note operations
type NoteHandler struct {
	noteService service.NoteService
	logger      *slog.Logger
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(noteService service.NoteService, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{
		noteService: noteService,
		logger:      logger,
	}
}

// ==================== Request/Response DTOs ====================

type NoteRequest struct {
	Title   string   `json:"title" binding:"required,notblank,max=200"`
	Content string   `json:"content" binding:"required,notblank"`
	Tags    []string `json:"tags" binding:"omitempty,dive,notblank,max=100"`
}

type NoteResponse struct {
	ID        uint       `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Tags      []string   `json:"tags"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type NoteListResponse struct {
	Notes      []NoteResponse `json:"notes"`
	TotalCount int64          `json:"total_count"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
}

func toNoteResponse(note *models.Note) NoteResponse {
	return NoteResponse{
		ID:        note.ID,
		Title:     note.Title,
		Content:   note.Content,
		Tags:      note.TagNames(),
		CreatedAt: &note.CreatedAt,
		UpdatedAt: &note.UpdatedAt,
	}
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

// ==================== Handlers ====================

// CreateNote creates a note owned by the caller
func (h *NoteHandler) CreateNote(c *gin.Context) {
	var req NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("⚠️ [Handler] Invalid create note request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request. Title (1-200 chars) and content required; tags cannot be empty."})
		return
	}

	result, err := h.noteService.CreateNote(c.Request.Context(), middleware.IdentityFrom(c), service.NoteInput{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
	})
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, NoteResponse{
		ID:        result.Note.ID,
		Title:     result.Note.Title,
		Content:   result.Note.Content,
		Tags:      nonNilTags(result.Tags),
		CreatedAt: &result.Note.CreatedAt,
	})
}

// ListNotes returns a page of the caller's notes
func (h *NoteHandler) ListNotes(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page"})
		return
	}

	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page_size"})
		return
	}

	result, err := h.noteService.ListNotes(c.Request.Context(), middleware.IdentityFrom(c), service.ListNotesQuery{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(c.Query("search")),
		Tags:     splitTags(c.Query("tags")),
	})
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	notes := make([]NoteResponse, 0, len(result.Notes))
	for i := range result.Notes {
		notes = append(notes, toNoteResponse(&result.Notes[i]))
	}

	c.JSON(http.StatusOK, NoteListResponse{
		Notes:      notes,
		TotalCount: result.TotalCount,
		Page:       result.Page,
		PageSize:   result.PageSize,
	})
}

// GetNote returns one of the caller's notes
func (h *NoteHandler) GetNote(c *gin.Context) {
	noteID, ok := h.parseNoteID(c)
	if !ok {
		return
	}

	note, err := h.noteService.GetNote(c.Request.Context(), middleware.IdentityFrom(c), noteID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toNoteResponse(note))
}

// UpdateNote replaces the title, content and tags of one of the caller's notes
func (h *NoteHandler) UpdateNote(c *gin.Context) {
	noteID, ok := h.parseNoteID(c)
	if !ok {
		return
	}

	var req NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("⚠️ [Handler] Invalid update note request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request. Title (1-200 chars) and content required; tags cannot be empty."})
		return
	}

	result, err := h.noteService.UpdateNote(c.Request.Context(), middleware.IdentityFrom(c), noteID, service.NoteInput{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
	})
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, NoteResponse{
		ID:        result.Note.ID,
		Title:     result.Note.Title,
		Content:   result.Note.Content,
		Tags:      nonNilTags(result.Tags),
		UpdatedAt: &result.Note.UpdatedAt,
	})
}

// DeleteNote soft-deletes one of the caller's notes
func (h *NoteHandler) DeleteNote(c *gin.Context) {
	noteID, ok := h.parseNoteID(c)
	if !ok {
		return
	}

	if err := h.noteService.DeleteNote(c.Request.Context(), middleware.IdentityFrom(c), noteID); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ==================== Helpers ====================

func (h *NoteHandler) parseNoteID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid note ID"})
		return 0, false
	}
	return uint(id), true
}

// splitTags parses a comma-separated tag filter, dropping empty entries
func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}

	var tags []string
	for _, part := range strings.Split(raw, ",") {
		if name := strings.TrimSpace(part); name != "" {
			tags = append(tags, name)
		}
	}
	return tags
}
