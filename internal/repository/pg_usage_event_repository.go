package repository

import (
	"context"
	"fmt"

	"graphics-server/internal/models"

	"go.uber.org/zap"
)

var _ UsageEventRepository = (*pgUsageEventRepository)(nil)

const insertUsageEventQuery = `
	INSERT INTO image_usage_events (user_id, space_id, image_id, action, model_name, seed, storage_key)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

type pgUsageEventRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewPgUsageEventRepository creates a UsageEventRepository backed by PostgreSQL.
func NewPgUsageEventRepository(db DBTX, logger *zap.Logger) UsageEventRepository {
	return &pgUsageEventRepository{db: db, logger: logger.Named("PgUsageEventRepo")}
}

func (r *pgUsageEventRepository) Log(ctx context.Context, e models.ImageUsageEvent) error {
	_, err := r.db.Exec(ctx, insertUsageEventQuery,
		e.UserID, e.SpaceID, e.ImageID, string(e.Action), e.ModelName, e.Seed, e.StorageKey)
	if err != nil {
		return fmt.Errorf("failed to insert %s usage event: %w", e.Action, err)
	}
	r.logger.Debug("Usage event logged", zap.String("action", string(e.Action)), zap.Int64("space_id", e.SpaceID))
	return nil
}
