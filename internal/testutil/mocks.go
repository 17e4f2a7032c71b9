package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/notesapp/notes-api/internal/auth"
	"github.com/notesapp/notes-api/internal/database/models"
	"github.com/notesapp/notes-api/internal/database/repository"
)

// ==================== MOCK USER REPOSITORY ====================

// MockUserRepository implements repository.UserRepository for testing
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// ==================== MOCK TAG REPOSITORY ====================

// MockTagRepository implements repository.TagRepository for testing
type MockTagRepository struct {
	mock.Mock
}

func (m *MockTagRepository) FindByName(ctx context.Context, name string) (*models.Tag, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tag), args.Error(1)
}

func (m *MockTagRepository) Create(ctx context.Context, tag *models.Tag) error {
	args := m.Called(ctx, tag)
	return args.Error(0)
}

func (m *MockTagRepository) ListNoteTagIDs(ctx context.Context, noteID uint) ([]uint, error) {
	args := m.Called(ctx, noteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockTagRepository) LinkTags(ctx context.Context, noteID uint, tagIDs []uint) error {
	args := m.Called(ctx, noteID, tagIDs)
	return args.Error(0)
}

func (m *MockTagRepository) UnlinkTags(ctx context.Context, noteID uint, tagIDs []uint) error {
	args := m.Called(ctx, noteID, tagIDs)
	return args.Error(0)
}

func (m *MockTagRepository) ListNamesForUser(ctx context.Context, userID uint) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// ==================== MOCK NOTE REPOSITORY ====================

// MockNoteRepository implements repository.NoteRepository for testing
type MockNoteRepository struct {
	mock.Mock
}

func (m *MockNoteRepository) Create(ctx context.Context, note *models.Note) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockNoteRepository) FindOwned(ctx context.Context, id, userID uint) (*models.Note, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Note), args.Error(1)
}

func (m *MockNoteRepository) UpdateContent(ctx context.Context, note *models.Note) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockNoteRepository) SoftDelete(ctx context.Context, id, userID uint, at time.Time) error {
	args := m.Called(ctx, id, userID, at)
	return args.Error(0)
}

func (m *MockNoteRepository) List(ctx context.Context, filter repository.NoteFilter) ([]models.Note, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Note), args.Get(1).(int64), args.Error(2)
}

// ==================== MOCK UNIT OF WORK ====================

// MockUnitOfWork runs fn directly against the given repositories
type MockUnitOfWork struct {
	Repos repository.TxRepositories
}

func (u *MockUnitOfWork) Do(ctx context.Context, fn func(repos repository.TxRepositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(u.Repos)
}

// ==================== MOCK TOKEN SERVICE ====================

// MockTokenService implements auth.TokenService for testing
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Issue(userID uint, email string) (string, error) {
	args := m.Called(userID, email)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) Validate(tokenString string) (auth.Identity, error) {
	args := m.Called(tokenString)
	return args.Get(0).(auth.Identity), args.Error(1)
}

func (m *MockTokenService) TTL() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}
