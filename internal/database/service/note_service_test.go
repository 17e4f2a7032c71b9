package service_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/notesapp/notes-api/internal/auth"
	"github.com/notesapp/notes-api/internal/config"
	"github.com/notesapp/notes-api/internal/database/models"
	"github.com/notesapp/notes-api/internal/database/repository"
	"github.com/notesapp/notes-api/internal/database/service"
	"github.com/notesapp/notes-api/internal/testutil"
)

func newNoteService(db *gorm.DB) service.NoteService {
	cfg := &config.Config{DefaultPageSize: 10, MaxPageSize: 100}
	logger := testutil.DiscardLogger()

	return service.NewNoteService(
		repository.NewUnitOfWork(db),
		repository.NewNoteRepository(db),
		service.NewTagReconciler(logger),
		cfg,
		logger,
	)
}

func identityOf(user *models.User) auth.Identity {
	return auth.Identity{UserID: user.ID, Email: user.Email}
}

func countNotes(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&models.Note{}).Count(&count).Error)
	return count
}

func TestNoteService_CreateNote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newNoteService(db)
	ctx := context.Background()
	alice := identityOf(testutil.CreateTestUser(t, db, "alice@example.com"))

	result, err := svc.CreateNote(ctx, alice, service.NoteInput{
		Title:   "T",
		Content: "C",
		Tags:    []string{"x", "y", "x"},
	})
	require.NoError(t, err)

	assert.NotZero(t, result.Note.ID)
	assert.Equal(t, alice.UserID, result.Note.UserID)
	assert.Equal(t, []string{"x", "y"}, result.Tags)
	assert.False(t, result.Note.CreatedAt.IsZero())
	assert.Equal(t, int64(2), testutil.CountTags(t, db))
	assert.Equal(t, []string{"x", "y"}, testutil.NoteTagNames(t, db, result.Note.ID))
}

func TestNoteService_CreateNote_BlankTagWritesNothing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newNoteService(db)
	alice := identityOf(testutil.CreateTestUser(t, db, "alice@example.com"))

	_, err := svc.CreateNote(context.Background(), alice, service.NoteInput{
		Title:   "T",
		Content: "C",
		Tags:    []string{"ok", " "},
	})
	assert.ErrorIs(t, err, service.ErrBlankTagName)
	assert.Zero(t, countNotes(t, db))
	assert.Zero(t, testutil.CountTags(t, db))
}

func TestNoteService_RejectsAnonymousIdentity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newNoteService(db)
	ctx := context.Background()
	anonymous := auth.Identity{Email: "ghost@example.com"}
	input := service.NoteInput{Title: "T", Content: "C"}

	tests := []struct {
		name string
		call func() error
	}{
		{name: "create", call: func() error { _, err := svc.CreateNote(ctx, anonymous, input); return err }},
		{name: "get", call: func() error { _, err := svc.GetNote(ctx, anonymous, 1); return err }},
		{name: "list", call: func() error { _, err := svc.ListNotes(ctx, anonymous, service.ListNotesQuery{}); return err }},
		{name: "update", call: func() error { _, err := svc.UpdateNote(ctx, anonymous, 1, input); return err }},
		{name: "delete", call: func() error { return svc.DeleteNote(ctx, anonymous, 1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.call(), service.ErrUnauthenticated)
		})
	}
	assert.Zero(t, countNotes(t, db))
}

func TestNoteService_OwnershipIsolation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newNoteService(db)
	ctx := context.Background()
	alice := identityOf(testutil.CreateTestUser(t, db, "alice@example.com"))
	bob := identityOf(testutil.CreateTestUser(t, db, "bob@example.com"))

	created, err := svc.CreateNote(ctx, alice, service.NoteInput{Title: "private", Content: "C", Tags: []string{"mine"}})
	require.NoError(t, err)
	noteID := created.Note.ID

	_, err = svc.GetNote(ctx, bob, noteID)
	assert.ErrorIs(t, err, service.ErrNoteNotFound)

	_, err = svc.UpdateNote(ctx, bob, noteID, service.NoteInput{Title: "stolen", Content: "x", Tags: []string{"theirs"}})
	assert.ErrorIs(t, err, service.ErrNoteNotFound)

	err = svc.DeleteNote(ctx, bob, noteID)
	assert.ErrorIs(t, err, service.ErrNoteNotFound)

	page, err := svc.ListNotes(ctx, bob, service.ListNotesQuery{})
	require.NoError(t, err)
	assert.Empty(t, page.Notes)
	assert.Zero(t, page.TotalCount)

	// Alice's note is untouched
	note, err := svc.GetNote(ctx, alice, noteID)
	require.NoError(t, err)
	assert.Equal(t, "private", note.Title)
	assert.Equal(t, []string{"mine"}, note.TagNames())
	assert.Equal(t, int64(1), testutil.CountTags(t, db))
}

func TestNoteService_UpdateNote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newNoteService(db)
	ctx := context.Background()
	alice := identityOf(testutil.CreateTestUser(t, db, "alice@example.com"))

	created, err := svc.CreateNote(ctx, alice, service.NoteInput{Title: "T", Content: "C", Tags: []string{"x", "y"}})
	require.NoError(t, err)

	updated, err := svc.UpdateNote(ctx, alice, created.Note.ID, service.NoteInput{
		Title:   "T2",
		Content: "C2",
		Tags:    []string{"y", "z"},
	})
	require.NoError(t, err)

	assert.Equal(t, "T2", updated.Note.Title)
	assert.Equal(t, "C2", updated.Note.Content)
	assert.Equal(t, []string{"y", "z"}, updated.Tags)
	assert.False(t, updated.Note.UpdatedAt.Before(created.Note.UpdatedAt))
	assert.Equal(t, []string{"y", "z"}, testutil.NoteTagNames(t, db, created.Note.ID))
	assert.Equal(t, int64(3), testutil.CountTags(t, db))
}

func TestNoteService_UpdateNote_FailureKeepsPreviousState(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newNoteService(db)
	ctx := context.Background()
	alice := identityOf(testutil.CreateTestUser(t, db, "alice@example.com"))

	created, err := svc.CreateNote(ctx, alice, service.NoteInput{Title: "before", Content: "C", Tags: []string{"a"}})
	require.NoError(t, err)

	injected := errors.New("injected insert failure")
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:fail_tag", func(tx *gorm.DB) {
		if tag, ok := tx.Statement.Dest.(*models.Tag); ok && tag.Name == "explode" {
			_ = tx.AddError(injected)
		}
	}))

	_, err = svc.UpdateNote(ctx, alice, created.Note.ID, service.NoteInput{
		Title:   "after",
		Content: "C",
		Tags:    []string{"b", "explode"},
	})
	require.ErrorIs(t, err, injected)

	note, err := svc.GetNote(ctx, alice, created.Note.ID)
	require.NoError(t, err)
	assert.Equal(t, "before", note.Title)
	assert.Equal(t, []string{"a"}, testutil.NoteTagNames(t, db, created.Note.ID))
	assert.Equal(t, int64(1), testutil.CountTags(t, db))
}

func TestNoteService_DeleteNote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newNoteService(db)
	ctx := context.Background()
	alice := identityOf(testutil.CreateTestUser(t, db, "alice@example.com"))

	created, err := svc.CreateNote(ctx, alice, service.NoteInput{Title: "T", Content: "C", Tags: []string{"x"}})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteNote(ctx, alice, created.Note.ID))

	_, err = svc.GetNote(ctx, alice, created.Note.ID)
	assert.ErrorIs(t, err, service.ErrNoteNotFound)

	err = svc.DeleteNote(ctx, alice, created.Note.ID)
	assert.ErrorIs(t, err, service.ErrNoteNotFound)

	_, err = svc.UpdateNote(ctx, alice, created.Note.ID, service.NoteInput{Title: "T", Content: "C"})
	assert.ErrorIs(t, err, service.ErrNoteNotFound)

	page, err := svc.ListNotes(ctx, alice, service.ListNotesQuery{})
	require.NoError(t, err)
	assert.Empty(t, page.Notes)

	// The row and the tag survive
	assert.Equal(t, int64(1), countNotes(t, db))
	assert.Equal(t, int64(1), testutil.CountTags(t, db))
}

func TestNoteService_ListNotes_Pagination(t *testing.T) {
	tests := []struct {
		name         string
		query        service.ListNotesQuery
		wantFilter   repository.NoteFilter
		wantPage     int
		wantPageSize int
	}{
		{
			name:         "defaults",
			query:        service.ListNotesQuery{},
			wantFilter:   repository.NoteFilter{UserID: 9, Offset: 0, Limit: 10},
			wantPage:     1,
			wantPageSize: 10,
		},
		{
			name:         "third page",
			query:        service.ListNotesQuery{Page: 3, PageSize: 5, Search: "q", Tags: []string{"a"}},
			wantFilter:   repository.NoteFilter{UserID: 9, Search: "q", Tags: []string{"a"}, Offset: 10, Limit: 5},
			wantPage:     3,
			wantPageSize: 5,
		},
		{
			name:         "negative values normalised",
			query:        service.ListNotesQuery{Page: -2, PageSize: -1},
			wantFilter:   repository.NoteFilter{UserID: 9, Offset: 0, Limit: 10},
			wantPage:     1,
			wantPageSize: 10,
		},
		{
			name:         "page size clamped",
			query:        service.ListNotesQuery{Page: 2, PageSize: 1000},
			wantFilter:   repository.NoteFilter{UserID: 9, Offset: 100, Limit: 100},
			wantPage:     2,
			wantPageSize: 100,
		},
		{
			name:         "huge page clamped so the offset stays positive",
			query:        service.ListNotesQuery{Page: math.MaxInt, PageSize: 10},
			wantFilter:   repository.NoteFilter{UserID: 9, Offset: (math.MaxInt/10 - 1) * 10, Limit: 10},
			wantPage:     math.MaxInt / 10,
			wantPageSize: 10,
		},
		{
			name:         "huge page at max page size",
			query:        service.ListNotesQuery{Page: math.MaxInt - 1, PageSize: 500},
			wantFilter:   repository.NoteFilter{UserID: 9, Offset: (math.MaxInt/100 - 1) * 100, Limit: 100},
			wantPage:     math.MaxInt / 100,
			wantPageSize: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			notes := new(testutil.MockNoteRepository)
			notes.On("List", ctx, tt.wantFilter).Return([]models.Note{{ID: 1}}, int64(42), nil)

			logger := testutil.DiscardLogger()
			svc := service.NewNoteService(
				&testutil.MockUnitOfWork{},
				notes,
				service.NewTagReconciler(logger),
				&config.Config{DefaultPageSize: 10, MaxPageSize: 100},
				logger,
			)

			page, err := svc.ListNotes(ctx, auth.Identity{UserID: 9}, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, page.Page)
			assert.Equal(t, tt.wantPageSize, page.PageSize)
			assert.Equal(t, int64(42), page.TotalCount)
			assert.Len(t, page.Notes, 1)
			notes.AssertExpectations(t)
		})
	}
}

func TestNoteService_StoreFailurePassesThrough(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection refused")

	notes := new(testutil.MockNoteRepository)
	notes.On("FindOwned", ctx, uint(4), uint(9)).Return(nil, boom)
	notes.On("SoftDelete", ctx, uint(4), uint(9), mock.AnythingOfType("time.Time")).Return(boom)
	notes.On("List", ctx, mock.Anything).Return(nil, int64(0), boom)

	logger := testutil.DiscardLogger()
	svc := service.NewNoteService(
		&testutil.MockUnitOfWork{},
		notes,
		service.NewTagReconciler(logger),
		&config.Config{DefaultPageSize: 10, MaxPageSize: 100},
		logger,
	)
	identity := auth.Identity{UserID: 9}

	_, err := svc.GetNote(ctx, identity, 4)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, service.ErrNoteNotFound)

	assert.ErrorIs(t, svc.DeleteNote(ctx, identity, 4), boom)

	_, err = svc.ListNotes(ctx, identity, service.ListNotesQuery{})
	assert.ErrorIs(t, err, boom)

	notes.AssertExpectations(t)
}

func TestNoteService_CancelledContextWritesNothing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newNoteService(db)
	alice := identityOf(testutil.CreateTestUser(t, db, "alice@example.com"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.CreateNote(ctx, alice, service.NoteInput{Title: "T", Content: "C", Tags: []string{"x"}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, countNotes(t, db))
	assert.Zero(t, testutil.CountTags(t, db))
}
