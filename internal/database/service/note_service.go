package service

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/notesapp/notes-api/internal/auth"
	"github.com/notesapp/notes-api/internal/config"
	"github.com/notesapp/notes-api/internal/database/models"
	"github.com/notesapp/notes-api/internal/database/repository"
)

// NoteService defines the interface for note business logic.
// Every method rejects an identity without a user id and only ever sees
// live notes owned by that identity.
type NoteService interface {
	CreateNote(ctx context.Context, identity auth.Identity, input NoteInput) (*NoteResult, error)
	GetNote(ctx context.Context, identity auth.Identity, noteID uint) (*models.Note, error)
	ListNotes(ctx context.Context, identity auth.Identity, query ListNotesQuery) (*NotePage, error)
	UpdateNote(ctx context.Context, identity auth.Identity, noteID uint, input NoteInput) (*NoteResult, error)
	DeleteNote(ctx context.Context, identity auth.Identity, noteID uint) error
}

// NoteInput carries the writable fields of a note
type NoteInput struct {
	Title   string
	Content string
	Tags    []string
}

// NoteResult is a written note with the tags applied to it, in request order
type NoteResult struct {
	Note *models.Note
	Tags []string
}

// ListNotesQuery selects a page of notes. Page is 1-based.
type ListNotesQuery struct {
	Page     int
	PageSize int
	Search   string
	Tags     []string
}

// NotePage is one page of a note listing
type NotePage struct {
	Notes      []models.Note
	TotalCount int64
	Page       int
	PageSize   int
}

type noteService struct {
	uow             repository.UnitOfWork
	noteRepo        repository.NoteRepository
	reconciler      *TagReconciler
	defaultPageSize int
	maxPageSize     int
	logger          *slog.Logger
	now             func() time.Time
}

// NewNoteService creates a new note service instance
func NewNoteService(
	uow repository.UnitOfWork,
	noteRepo repository.NoteRepository,
	reconciler *TagReconciler,
	cfg *config.Config,
	logger *slog.Logger,
) NoteService {
	return &noteService{
		uow:             uow,
		noteRepo:        noteRepo,
		reconciler:      reconciler,
		defaultPageSize: int(cfg.DefaultPageSize),
		maxPageSize:     int(cfg.MaxPageSize),
		logger:          logger,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func (s *noteService) CreateNote(ctx context.Context, identity auth.Identity, input NoteInput) (*NoteResult, error) {
	if !identity.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}
	if _, err := DistinctTagNames(input.Tags); err != nil {
		return nil, err
	}

	now := s.now()
	note := &models.Note{
		UserID:    identity.UserID,
		Title:     input.Title,
		Content:   input.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var applied []string
	err := s.uow.Do(ctx, func(repos repository.TxRepositories) error {
		if err := repos.Notes.Create(ctx, note); err != nil {
			return err
		}

		var err error
		applied, err = s.reconciler.Reconcile(ctx, repos.Tags, note, input.Tags)
		return err
	})
	if err != nil {
		s.logger.Error("❌ [NoteService] Failed to create note", "user_id", identity.UserID, "error", err)
		return nil, err
	}

	s.logger.Info("📝 [NoteService] Note created", "note_id", note.ID, "user_id", identity.UserID)
	return &NoteResult{Note: note, Tags: applied}, nil
}

func (s *noteService) GetNote(ctx context.Context, identity auth.Identity, noteID uint) (*models.Note, error) {
	if !identity.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}

	note, err := s.noteRepo.FindOwned(ctx, noteID, identity.UserID)
	if err != nil {
		return nil, s.noteError(err, "find", noteID, identity)
	}
	return note, nil
}

func (s *noteService) ListNotes(ctx context.Context, identity auth.Identity, query ListNotesQuery) (*NotePage, error) {
	if !identity.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}

	page, pageSize := s.normalizePage(query.Page, query.PageSize)

	notes, total, err := s.noteRepo.List(ctx, repository.NoteFilter{
		UserID: identity.UserID,
		Search: query.Search,
		Tags:   query.Tags,
		Offset: (page - 1) * pageSize,
		Limit:  pageSize,
	})
	if err != nil {
		s.logger.Error("❌ [NoteService] Failed to list notes", "user_id", identity.UserID, "error", err)
		return nil, err
	}

	s.logger.Debug("📚 [NoteService] Notes listed", "user_id", identity.UserID, "count", len(notes), "total", total)

	return &NotePage{
		Notes:      notes,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

func (s *noteService) UpdateNote(ctx context.Context, identity auth.Identity, noteID uint, input NoteInput) (*NoteResult, error) {
	if !identity.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}
	if _, err := DistinctTagNames(input.Tags); err != nil {
		return nil, err
	}

	var note *models.Note
	var applied []string
	err := s.uow.Do(ctx, func(repos repository.TxRepositories) error {
		var err error
		note, err = repos.Notes.FindOwned(ctx, noteID, identity.UserID)
		if err != nil {
			return err
		}

		note.Title = input.Title
		note.Content = input.Content
		note.UpdatedAt = s.now()
		if err := repos.Notes.UpdateContent(ctx, note); err != nil {
			return err
		}

		applied, err = s.reconciler.Reconcile(ctx, repos.Tags, note, input.Tags)
		return err
	})
	if err != nil {
		return nil, s.noteError(err, "update", noteID, identity)
	}

	s.logger.Info("✏️ [NoteService] Note updated", "note_id", noteID, "user_id", identity.UserID)
	return &NoteResult{Note: note, Tags: applied}, nil
}

func (s *noteService) DeleteNote(ctx context.Context, identity auth.Identity, noteID uint) error {
	if !identity.IsAuthenticated() {
		return ErrUnauthenticated
	}

	if err := s.noteRepo.SoftDelete(ctx, noteID, identity.UserID, s.now()); err != nil {
		return s.noteError(err, "delete", noteID, identity)
	}

	s.logger.Info("🗑️ [NoteService] Note deleted", "note_id", noteID, "user_id", identity.UserID)
	return nil
}

// noteError maps a repository failure to a service error, logging store faults once
func (s *noteService) noteError(err error, op string, noteID uint, identity auth.Identity) error {
	switch {
	case errors.Is(err, repository.ErrNoteNotFound):
		s.logger.Warn("⚠️ [NoteService] Note not found", "op", op, "note_id", noteID, "user_id", identity.UserID)
		return ErrNoteNotFound
	case errors.Is(err, ErrBlankTagName):
		return err
	default:
		s.logger.Error("❌ [NoteService] Note operation failed", "op", op, "note_id", noteID, "user_id", identity.UserID, "error", err)
		return err
	}
}

func (s *noteService) normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = s.defaultPageSize
	}
	if s.maxPageSize > 0 && pageSize > s.maxPageSize {
		pageSize = s.maxPageSize
	}
	if pageSize < 1 {
		pageSize = 1
	}
	// Keep (page-1)*pageSize within int
	if maxPage := math.MaxInt / pageSize; page > maxPage {
		page = maxPage
	}
	return page, pageSize
}
