package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/notesapp/notes-api/internal/database/models"
)

// NoteFilter narrows a note listing. UserID is always applied together with
// the not-deleted predicate, before search, tag filtering and pagination.
type NoteFilter struct {
	UserID uint
	Search string
	Tags   []string
	Offset int
	Limit  int
}

// NoteRepository defines the interface for note data operations.
// Every read and write is scoped to the owning user and skips deleted notes;
// a note owned by someone else is reported as ErrNoteNotFound.
type NoteRepository interface {
	Create(ctx context.Context, note *models.Note) error
	FindOwned(ctx context.Context, id, userID uint) (*models.Note, error)
	UpdateContent(ctx context.Context, note *models.Note) error
	SoftDelete(ctx context.Context, id, userID uint, at time.Time) error
	List(ctx context.Context, filter NoteFilter) ([]models.Note, int64, error)
}

type noteRepository struct {
	db *gorm.DB
}

// NewNoteRepository creates a new note repository instance
func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &noteRepository{db: db}
}

// owned applies the ownership and soft-delete predicate
func owned(db *gorm.DB, userID uint) *gorm.DB {
	return db.Where("notes.user_id = ? AND notes.is_deleted = ?", userID, false)
}

func (r *noteRepository) Create(ctx context.Context, note *models.Note) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(note).Error
}

func (r *noteRepository) FindOwned(ctx context.Context, id, userID uint) (*models.Note, error) {
	var note models.Note
	err := owned(r.db.WithContext(ctx), userID).
		Preload("NoteTags.Tag").
		Where("notes.id = ?", id).
		First(&note).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}
	return &note, nil
}

// UpdateContent writes title, content and updated_at of an owned, live note
func (r *noteRepository) UpdateContent(ctx context.Context, note *models.Note) error {
	result := owned(r.db.WithContext(ctx).Model(&models.Note{}), note.UserID).
		Where("notes.id = ?", note.ID).
		Updates(map[string]any{
			"title":      note.Title,
			"content":    note.Content,
			"updated_at": note.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoteNotFound
	}
	return nil
}

func (r *noteRepository) SoftDelete(ctx context.Context, id, userID uint, at time.Time) error {
	result := owned(r.db.WithContext(ctx).Model(&models.Note{}), userID).
		Where("notes.id = ?", id).
		Updates(map[string]any{
			"is_deleted": true,
			"updated_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoteNotFound
	}
	return nil
}

func (r *noteRepository) List(ctx context.Context, filter NoteFilter) ([]models.Note, int64, error) {
	var notes []models.Note
	var total int64

	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.filtered(ctx, filter).
		Preload("NoteTags.Tag").
		Order("notes.updated_at DESC").
		Order("notes.id ASC").
		Offset(filter.Offset)
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	if err := query.Find(&notes).Error; err != nil {
		return nil, 0, err
	}
	return notes, total, nil
}

func (r *noteRepository) filtered(ctx context.Context, filter NoteFilter) *gorm.DB {
	query := owned(r.db.WithContext(ctx).Model(&models.Note{}), filter.UserID)

	if filter.Search != "" {
		pattern := "%" + escapeLike(filter.Search) + "%"
		query = query.Where(`(notes.title LIKE ? ESCAPE '\' OR notes.content LIKE ? ESCAPE '\')`, pattern, pattern)
	}

	if len(filter.Tags) > 0 {
		query = query.Where(
			"EXISTS (SELECT 1 FROM note_tags JOIN tags ON tags.id = note_tags.tag_id WHERE note_tags.note_id = notes.id AND tags.name IN ?)",
			filter.Tags,
		)
	}

	return query
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Repository errors
var (
	ErrNoteNotFound = errors.New("note not found")
)
