package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/fritter-app/fritter/internal/models"
	"github.com/fritter-app/fritter/internal/storage"
)

// maxFreetLength caps freet content, matching the classic 140 characters.
const maxFreetLength = 140

// FreetService handles the freet content model: creation, lookup, and
// author-initiated deletion. Group attachment is GroupService's job.
type FreetService struct {
	store storage.Store
}

// NewFreetService creates a new FreetService with the given storage backend.
func NewFreetService(store storage.Store) *FreetService {
	return &FreetService{store: store}
}

// Create posts a new freet by the caller.
func (s *FreetService) Create(ctx context.Context, caller Caller, content string) (*models.Freet, error) {
	if err := runChecks(
		requireAuthenticated(caller),
		func() error {
			if strings.TrimSpace(content) == "" {
				return models.ErrValidation("freet content must be nonempty")
			}
			return nil
		},
		func() error {
			if len(content) > maxFreetLength {
				return models.ErrValidation("freet content must be at most %d characters", maxFreetLength)
			}
			return nil
		},
	); err != nil {
		return nil, err
	}

	freet := models.NewFreet(caller.UserID, content)
	if err := s.store.CreateFreet(ctx, freet); err != nil {
		return nil, err
	}

	slog.Info("freet created", "freet_id", freet.ID, "author", caller.UserID)
	return freet, nil
}

// Get returns a freet by id.
func (s *FreetService) Get(ctx context.Context, freetID string) (*models.Freet, error) {
	if err := runChecks(validFreetID(freetID)); err != nil {
		return nil, err
	}
	return s.store.GetFreet(ctx, freetID)
}

// Delete removes a freet. Only the author may delete their own freet.
func (s *FreetService) Delete(ctx context.Context, caller Caller, freetID string) error {
	if err := runChecks(
		requireAuthenticated(caller),
		validFreetID(freetID),
	); err != nil {
		return err
	}

	freet, err := s.store.GetFreet(ctx, freetID)
	if err != nil {
		return err
	}
	if freet.AuthorID != caller.UserID {
		return models.ErrForbidden("only the author may delete a freet")
	}

	if err := s.store.DeleteFreet(ctx, freet.ID); err != nil {
		return err
	}

	slog.Info("freet deleted", "freet_id", freet.ID, "deleted_by", caller.UserID)
	return nil
}
