package repository

import (
	"context"

	"graphics-server/internal/attributes"
	"graphics-server/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// SpaceRepository stores spaces.
type SpaceRepository interface {
	ListByOwner(ctx context.Context, ownerUserID int64) ([]models.Space, error)
	Create(ctx context.Context, ownerUserID int64, name string, description *string) (*models.Space, error)
	// Delete returns false when no space with that id is owned by the user.
	Delete(ctx context.Context, spaceID, ownerUserID int64) (bool, error)
	IsOwnedBy(ctx context.Context, spaceID, userID int64) (bool, error)
}

// EntityUpdate patches a head and, when Attributes is non-nil, the attribute
// blob of version VersionID.
type EntityUpdate struct {
	EntityID    int64
	Name        string
	Description *string
	VersionID   int64
	Attributes  attributes.Values
}

// EntityRepository stores heads and versions of one entity kind.
type EntityRepository interface {
	Kind() *models.EntityKind
	// ListWithLatest returns the space's entities, newest first, with their latest version.
	ListWithLatest(ctx context.Context, spaceID int64) ([]models.EntitySummary, error)
	// CreateWithInitialVersion inserts a head and version 1 in one transaction.
	CreateWithInitialVersion(ctx context.Context, spaceID int64, name string, description *string, draft models.VersionDraft) (*models.EntityWithVersions, error)
	GetHead(ctx context.Context, spaceID, entityID int64) (*models.EntityHead, error)
	ListVersions(ctx context.Context, entityID int64) ([]models.Version, error)
	GetVersion(ctx context.Context, entityID, versionID int64) (*models.Version, error)
	LatestVersion(ctx context.Context, entityID int64) (*models.Version, error)
	// GetVersionInSpace resolves a version id together with its head, provided the head lives in spaceID.
	GetVersionInSpace(ctx context.Context, spaceID, versionID int64) (*models.Version, *models.EntityHead, error)
	// VersionHasImages counts every image row, soft-deleted ones included.
	VersionHasImages(ctx context.Context, versionID int64) (bool, error)
	Update(ctx context.Context, upd EntityUpdate) (*models.EntityHead, error)
	// InsertNextVersion appends a version numbered max+1; a nil draft label becomes "v{n}".
	// Returns models.ErrVersionConflict when a concurrent insert took the same number.
	InsertNextVersion(ctx context.Context, entityID int64, draft models.VersionDraft) (*models.Version, error)
}

// ImageRepository stores generated images.
type ImageRepository interface {
	Create(ctx context.Context, img *models.Image) (*models.Image, error)
	// ListLive returns non-deleted images of the space, newest first.
	ListLive(ctx context.Context, spaceID int64) ([]models.Image, error)
	// GetInSpace returns the image including soft-deleted rows.
	GetInSpace(ctx context.Context, spaceID, imageID int64) (*models.Image, error)
	// SoftDelete returns false when the image was already deleted.
	SoftDelete(ctx context.Context, imageID int64) (bool, error)
}

// UsageEventRepository appends audit events.
type UsageEventRepository interface {
	Log(ctx context.Context, event models.ImageUsageEvent) error
}
