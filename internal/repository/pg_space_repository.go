package repository

import (
	"context"
	"errors"
	"fmt"

	"graphics-server/internal/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var _ SpaceRepository = (*pgSpaceRepository)(nil)

const (
	listSpacesQuery = `
		SELECT id, owner_user_id, name, description, created_at, updated_at
		FROM spaces
		WHERE owner_user_id = $1
		ORDER BY created_at DESC, id DESC`
	createSpaceQuery = `
		INSERT INTO spaces (owner_user_id, name, description)
		VALUES ($1, $2, $3)
		RETURNING id, owner_user_id, name, description, created_at, updated_at`
	deleteSpaceQuery    = `DELETE FROM spaces WHERE id = $1 AND owner_user_id = $2`
	spaceOwnershipQuery = `SELECT 1 FROM spaces WHERE id = $1 AND owner_user_id = $2`
)

type pgSpaceRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewPgSpaceRepository creates a SpaceRepository backed by PostgreSQL.
func NewPgSpaceRepository(db DBTX, logger *zap.Logger) SpaceRepository {
	return &pgSpaceRepository{db: db, logger: logger.Named("PgSpaceRepo")}
}

func (r *pgSpaceRepository) ListByOwner(ctx context.Context, ownerUserID int64) ([]models.Space, error) {
	spaces := make([]models.Space, 0)
	if err := pgxscan.Select(ctx, r.db, &spaces, listSpacesQuery, ownerUserID); err != nil {
		r.logger.Error("Failed to list spaces", zap.Int64("owner_user_id", ownerUserID), zap.Error(err))
		return nil, fmt.Errorf("failed to list spaces: %w", err)
	}
	r.logger.Debug("Listed spaces", zap.Int64("owner_user_id", ownerUserID), zap.Int("count", len(spaces)))
	return spaces, nil
}

func (r *pgSpaceRepository) Create(ctx context.Context, ownerUserID int64, name string, description *string) (*models.Space, error) {
	var space models.Space
	if err := pgxscan.Get(ctx, r.db, &space, createSpaceQuery, ownerUserID, name, description); err != nil {
		r.logger.Error("Failed to create space", zap.Int64("owner_user_id", ownerUserID), zap.Error(err))
		return nil, fmt.Errorf("failed to create space: %w", err)
	}
	r.logger.Info("Space created", zap.Int64("space_id", space.ID), zap.Int64("owner_user_id", ownerUserID))
	return &space, nil
}

func (r *pgSpaceRepository) Delete(ctx context.Context, spaceID, ownerUserID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, deleteSpaceQuery, spaceID, ownerUserID)
	if err != nil {
		r.logger.Error("Failed to delete space", zap.Int64("space_id", spaceID), zap.Error(err))
		return false, fmt.Errorf("failed to delete space %d: %w", spaceID, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *pgSpaceRepository) IsOwnedBy(ctx context.Context, spaceID, userID int64) (bool, error) {
	var one int
	err := r.db.QueryRow(ctx, spaceOwnershipQuery, spaceID, userID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		r.logger.Error("Failed to check space ownership", zap.Int64("space_id", spaceID), zap.Int64("user_id", userID), zap.Error(err))
		return false, fmt.Errorf("failed to check ownership of space %d: %w", spaceID, err)
	}
	return true, nil
}
