package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/notesapp/notes-api/internal/database/models"
	"github.com/notesapp/notes-api/internal/database/repository"
)

// TagReconciler makes the tag links of a note match a requested set of names.
// Tags are global: a name already used by any note is reused, unknown names
// are created, and tags left without notes are kept.
type TagReconciler struct {
	logger *slog.Logger
}

// NewTagReconciler creates a new tag reconciler
func NewTagReconciler(logger *slog.Logger) *TagReconciler {
	return &TagReconciler{logger: logger}
}

// Reconcile links note to exactly the tags named in names and returns the
// distinct names in the order the caller supplied them. tags should be bound
// to the transaction that owns the note write so a failure leaves the previous
// links untouched.
func (r *TagReconciler) Reconcile(ctx context.Context, tags repository.TagRepository, note *models.Note, names []string) ([]string, error) {
	applied, err := DistinctTagNames(names)
	if err != nil {
		return nil, err
	}

	target := make(map[uint]struct{}, len(applied))
	for _, name := range applied {
		tag, err := r.resolve(ctx, tags, name)
		if err != nil {
			return nil, err
		}
		target[tag.ID] = struct{}{}
	}

	currentIDs, err := tags.ListNoteTagIDs(ctx, note.ID)
	if err != nil {
		return nil, fmt.Errorf("list tag links of note %d: %w", note.ID, err)
	}

	current := make(map[uint]struct{}, len(currentIDs))
	var stale []uint
	for _, id := range currentIDs {
		current[id] = struct{}{}
		if _, keep := target[id]; !keep {
			stale = append(stale, id)
		}
	}

	var missing []uint
	for id := range target {
		if _, linked := current[id]; !linked {
			missing = append(missing, id)
		}
	}
	slices.Sort(missing)

	if err := tags.UnlinkTags(ctx, note.ID, stale); err != nil {
		return nil, fmt.Errorf("unlink tags from note %d: %w", note.ID, err)
	}
	if err := tags.LinkTags(ctx, note.ID, missing); err != nil {
		return nil, fmt.Errorf("link tags to note %d: %w", note.ID, err)
	}

	r.logger.Debug("🏷️ [TagReconciler] Tags reconciled",
		"note_id", note.ID,
		"tags", len(applied),
		"added", len(missing),
		"removed", len(stale),
	)

	return applied, nil
}

// resolve looks a tag up by name and creates it when absent. When a
// concurrent writer inserts the same name first, the unique constraint
// rejects our insert and the winner's row is read back once.
func (r *TagReconciler) resolve(ctx context.Context, tags repository.TagRepository, name string) (*models.Tag, error) {
	tag, err := tags.FindByName(ctx, name)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, repository.ErrTagNotFound) {
		return nil, fmt.Errorf("find tag %q: %w", name, err)
	}

	tag = &models.Tag{Name: name}
	err = tags.Create(ctx, tag)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, repository.ErrTagExists) {
		return nil, fmt.Errorf("create tag %q: %w", name, err)
	}

	r.logger.Debug("🔁 [TagReconciler] Tag created concurrently, reading it back", "tag", name)

	tag, err = tags.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("re-read tag %q after conflict: %w", name, err)
	}
	return tag, nil
}

// DistinctTagNames removes duplicate names, keeping the first occurrence of
// each. Comparison is exact and case-sensitive. A name that is empty after
// trimming whitespace is rejected with ErrBlankTagName.
func DistinctTagNames(names []string) ([]string, error) {
	seen := make(map[string]struct{}, len(names))
	distinct := make([]string, 0, len(names))

	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			return nil, ErrBlankTagName
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		distinct = append(distinct, name)
	}

	return distinct, nil
}
