package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/notesapp/notes-api/internal/database"
	"github.com/notesapp/notes-api/internal/database/models"
)

// SetupTestDB creates a migrated in-memory SQLite database for testing
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)

	require.NoError(t, database.Migrate(db, database.DriverSQLite))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// CreateTestUser inserts a user with a placeholder password hash
func CreateTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{
		Email:        email,
		FullName:     "Test User",
		PasswordHash: "hashedpassword",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CountTags returns the number of rows in the tags table
func CountTags(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&models.Tag{}).Count(&count).Error)
	return count
}

// NoteTagNames returns the tag names linked to noteID, sorted
func NoteTagNames(t *testing.T, db *gorm.DB, noteID uint) []string {
	t.Helper()

	names := []string{}
	err := db.Model(&models.Tag{}).
		Joins("JOIN note_tags ON note_tags.tag_id = tags.id").
		Where("note_tags.note_id = ?", noteID).
		Order("tags.name").
		Pluck("tags.name", &names).Error
	require.NoError(t, err)
	return names
}

// DiscardLogger returns a logger that drops everything
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
