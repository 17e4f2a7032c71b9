package service

import (
	"context"
	"log/slog"

	"github.com/notesapp/notes-api/internal/auth"
	"github.com/notesapp/notes-api/internal/database/repository"
)

// TagService defines the interface for tag queries
type TagService interface {
	// ListTags returns the distinct tag names on the caller's live notes, sorted
	ListTags(ctx context.Context, identity auth.Identity) ([]string, error)
}

type tagService struct {
	tagRepo repository.TagRepository
	logger  *slog.Logger
}

// NewTagService creates a new tag service instance
func NewTagService(tagRepo repository.TagRepository, logger *slog.Logger) TagService {
	return &tagService{
		tagRepo: tagRepo,
		logger:  logger,
	}
}

func (s *tagService) ListTags(ctx context.Context, identity auth.Identity) ([]string, error) {
	if !identity.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}

	names, err := s.tagRepo.ListNamesForUser(ctx, identity.UserID)
	if err != nil {
		s.logger.Error("❌ [TagService] Failed to list tags", "user_id", identity.UserID, "error", err)
		return nil, err
	}

	s.logger.Debug("🏷️ [TagService] Tags listed", "user_id", identity.UserID, "count", len(names))
	return names, nil
}
