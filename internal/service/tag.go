package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/recipebox/recipebox/internal/metrics"
	"github.com/recipebox/recipebox/internal/model"
	"github.com/recipebox/recipebox/internal/repository"
)

// Tag service errors.
var (
	ErrTagNotFound = errors.New("tag not found")
	ErrTagExists   = errors.New("tag already exists")
)

// TagService handles tag business logic.
type TagService struct {
	repo    *repository.Repository
	metrics metrics.Recorder
}

// NewTagService creates a new TagService.
func NewTagService(repo *repository.Repository, recorder metrics.Recorder) *TagService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &TagService{
		repo:    repo,
		metrics: recorder,
	}
}

// CreateTag creates a standalone tag for the user.
func (s *TagService) CreateTag(ctx context.Context, userID, name string) (*model.Tag, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}

	tag := &model.Tag{
		ID:        ulid.Make().String(),
		UserID:    userID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.CreateTag(ctx, tag); err != nil {
		if errors.Is(err, repository.ErrTagExists) {
			return nil, ErrTagExists
		}
		return nil, err
	}

	s.metrics.IncTagCreated()

	return tag, nil
}

// GetTag retrieves a tag owned by the user.
func (s *TagService) GetTag(ctx context.Context, id, userID string) (*model.Tag, error) {
	tag, err := s.repo.GetTagByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrTagNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	return tag, nil
}

// ListTags retrieves the user's tags, name descending. assignedOnly
// restricts the listing to tags attached to at least one recipe.
func (s *TagService) ListTags(ctx context.Context, userID string, assignedOnly bool) ([]*model.Tag, error) {
	return s.repo.ListTagsByUserID(ctx, userID, assignedOnly)
}

// UpdateTag renames a tag owned by the user.
func (s *TagService) UpdateTag(ctx context.Context, id, userID, name string) (*model.Tag, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}

	tag, err := s.repo.UpdateTag(ctx, id, userID, name)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTagNotFound):
			return nil, ErrTagNotFound
		case errors.Is(err, repository.ErrTagExists):
			return nil, ErrTagExists
		}
		return nil, err
	}

	return tag, nil
}

// DeleteTag removes a tag owned by the user. Recipes keep their other
// tags; the join rows cascade.
func (s *TagService) DeleteTag(ctx context.Context, id, userID string) error {
	if err := s.repo.DeleteTag(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrTagNotFound) {
			return ErrTagNotFound
		}
		return err
	}
	return nil
}

// validateName trims and bounds a tag or ingredient name.
func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrNameRequired
	}
	if len(name) > maxNameLength {
		return "", ErrNameTooLong
	}
	return name, nil
}
