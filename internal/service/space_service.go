package service

import (
	"context"
	"fmt"
	"strings"

	"graphics-server/internal/models"
	"graphics-server/internal/repository"

	"go.uber.org/zap"
)

// SpaceService manages spaces and guards access to them.
type SpaceService interface {
	// AssertOwned returns models.ErrSpaceNotFound unless userID owns spaceID.
	AssertOwned(ctx context.Context, spaceID, userID int64) error
	List(ctx context.Context, userID int64) ([]models.Space, error)
	Create(ctx context.Context, userID int64, name string, description *string) (*models.Space, error)
	Delete(ctx context.Context, userID, spaceID int64) error
}

type spaceServiceImpl struct {
	repo   repository.SpaceRepository
	logger *zap.Logger
}

func NewSpaceService(repo repository.SpaceRepository, logger *zap.Logger) SpaceService {
	return &spaceServiceImpl{repo: repo, logger: logger.Named("SpaceService")}
}

func (s *spaceServiceImpl) AssertOwned(ctx context.Context, spaceID, userID int64) error {
	owned, err := s.repo.IsOwnedBy(ctx, spaceID, userID)
	if err != nil {
		return err
	}
	if !owned {
		s.logger.Debug("Space access denied", zap.Int64("space_id", spaceID), zap.Int64("user_id", userID))
		return fmt.Errorf("%w: space %d", models.ErrSpaceNotFound, spaceID)
	}
	return nil
}

func (s *spaceServiceImpl) List(ctx context.Context, userID int64) ([]models.Space, error) {
	return s.repo.ListByOwner(ctx, userID)
}

func (s *spaceServiceImpl) Create(ctx context.Context, userID int64, name string, description *string) (*models.Space, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.ErrNameRequired
	}
	space, err := s.repo.Create(ctx, userID, name, trimToNil(description))
	if err != nil {
		return nil, err
	}
	s.logger.Info("Space created", zap.Int64("space_id", space.ID), zap.Int64("user_id", userID))
	return space, nil
}

func (s *spaceServiceImpl) Delete(ctx context.Context, userID, spaceID int64) error {
	deleted, err := s.repo.Delete(ctx, spaceID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: space %d", models.ErrSpaceNotFound, spaceID)
	}
	s.logger.Info("Space deleted", zap.Int64("space_id", spaceID), zap.Int64("user_id", userID))
	return nil
}

// trimToNil trims s and maps blank values to nil.
func trimToNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
