package repository

import (
	"context"
	"errors"
	"slices"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/notesapp/notes-api/internal/database/models"
)

// TagRepository defines the interface for tag and note-tag link operations
type TagRepository interface {
	FindByName(ctx context.Context, name string) (*models.Tag, error)
	// Create inserts a tag and returns ErrTagExists when the name is already taken.
	// A failed insert never aborts an enclosing transaction.
	Create(ctx context.Context, tag *models.Tag) error
	ListNoteTagIDs(ctx context.Context, noteID uint) ([]uint, error)
	LinkTags(ctx context.Context, noteID uint, tagIDs []uint) error
	UnlinkTags(ctx context.Context, noteID uint, tagIDs []uint) error
	ListNamesForUser(ctx context.Context, userID uint) ([]string, error)
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new tag repository instance
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) FindByName(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) Create(ctx context.Context, tag *models.Tag) error {
	// Nested inside a transaction this runs under a SAVEPOINT
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(tag).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrTagExists
	}
	return err
}

func (r *tagRepository) ListNoteTagIDs(ctx context.Context, noteID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.NoteTag{}).
		Where("note_id = ?", noteID).
		Order("tag_id").
		Pluck("tag_id", &ids).Error
	return ids, err
}

func (r *tagRepository) LinkTags(ctx context.Context, noteID uint, tagIDs []uint) error {
	if len(tagIDs) == 0 {
		return nil
	}

	links := make([]models.NoteTag, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		links = append(links, models.NoteTag{NoteID: noteID, TagID: tagID})
	}

	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&links).Error
}

func (r *tagRepository) UnlinkTags(ctx context.Context, noteID uint, tagIDs []uint) error {
	if len(tagIDs) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).
		Where("note_id = ? AND tag_id IN ?", noteID, tagIDs).
		Delete(&models.NoteTag{}).Error
}

// ListNamesForUser returns the distinct tag names attached to the user's
// live notes, sorted alphabetically
func (r *tagRepository) ListNamesForUser(ctx context.Context, userID uint) ([]string, error) {
	names := []string{}
	err := r.db.WithContext(ctx).
		Model(&models.Tag{}).
		Joins("JOIN note_tags ON note_tags.tag_id = tags.id").
		Joins("JOIN notes ON notes.id = note_tags.note_id").
		Where("notes.user_id = ? AND notes.is_deleted = ?", userID, false).
		Distinct().
		Pluck("tags.name", &names).Error
	if err != nil {
		return nil, err
	}

	// Byte order, independent of the database collation
	slices.Sort(names)
	return names, nil
}

// Repository errors
var (
	ErrTagNotFound = errors.New("tag not found")
	ErrTagExists   = errors.New("tag already exists")
)
