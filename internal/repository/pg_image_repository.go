package repository

import (
	"context"
	"fmt"

	"graphics-server/internal/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"go.uber.org/zap"
)

var _ ImageRepository = (*pgImageRepository)(nil)

const imageColumns = `id, space_id, character_version_id, style_version_id, scene_version_id, seed,
	prompt, negative_prompt, model_name, aspect_ratio, resolution, storage_key, created_at, deleted_at`

var (
	insertImageQuery = `
		INSERT INTO images (space_id, character_version_id, style_version_id, scene_version_id, seed,
			prompt, negative_prompt, model_name, aspect_ratio, resolution, storage_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + imageColumns
	listLiveImagesQuery = `SELECT ` + imageColumns + `
		FROM images
		WHERE space_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC, id DESC`
	getImageInSpaceQuery = `SELECT ` + imageColumns + ` FROM images WHERE id = $1 AND space_id = $2`
	softDeleteImageQuery = `UPDATE images SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
)

type pgImageRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewPgImageRepository creates an ImageRepository backed by PostgreSQL.
func NewPgImageRepository(db DBTX, logger *zap.Logger) ImageRepository {
	return &pgImageRepository{db: db, logger: logger.Named("PgImageRepo")}
}

func (r *pgImageRepository) Create(ctx context.Context, img *models.Image) (*models.Image, error) {
	var created models.Image
	err := pgxscan.Get(ctx, r.db, &created, insertImageQuery,
		img.SpaceID, img.CharacterVersionID, img.StyleVersionID, img.SceneVersionID, img.Seed,
		img.Prompt, img.NegativePrompt, img.ModelName, img.AspectRatio, img.Resolution, img.StorageKey,
	)
	if err != nil {
		r.logger.Error("Failed to insert image", zap.Int64("space_id", img.SpaceID), zap.String("storage_key", img.StorageKey), zap.Error(err))
		return nil, fmt.Errorf("failed to insert image: %w", err)
	}
	r.logger.Info("Image created", zap.Int64("image_id", created.ID), zap.Int64("space_id", created.SpaceID))
	return &created, nil
}

func (r *pgImageRepository) ListLive(ctx context.Context, spaceID int64) ([]models.Image, error) {
	images := make([]models.Image, 0)
	if err := pgxscan.Select(ctx, r.db, &images, listLiveImagesQuery, spaceID); err != nil {
		r.logger.Error("Failed to list images", zap.Int64("space_id", spaceID), zap.Error(err))
		return nil, fmt.Errorf("failed to list images of space %d: %w", spaceID, err)
	}
	r.logger.Debug("Listed images", zap.Int64("space_id", spaceID), zap.Int("count", len(images)))
	return images, nil
}

func (r *pgImageRepository) GetInSpace(ctx context.Context, spaceID, imageID int64) (*models.Image, error) {
	var img models.Image
	if err := pgxscan.Get(ctx, r.db, &img, getImageInSpaceQuery, imageID, spaceID); err != nil {
		if pgxscan.NotFound(err) {
			return nil, fmt.Errorf("%w: image %d in space %d", models.ErrNotFound, imageID, spaceID)
		}
		r.logger.Error("Failed to get image", zap.Int64("image_id", imageID), zap.Error(err))
		return nil, fmt.Errorf("failed to get image %d: %w", imageID, err)
	}
	return &img, nil
}

func (r *pgImageRepository) SoftDelete(ctx context.Context, imageID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, softDeleteImageQuery, imageID)
	if err != nil {
		r.logger.Error("Failed to soft delete image", zap.Int64("image_id", imageID), zap.Error(err))
		return false, fmt.Errorf("failed to delete image %d: %w", imageID, err)
	}
	return tag.RowsAffected() > 0, nil
}
