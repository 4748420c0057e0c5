package mocks

import (
	"context"

	"graphics-server/internal/models"
	"graphics-server/internal/repository"

	"github.com/stretchr/testify/mock"
)

var (
	_ repository.SpaceRepository      = (*SpaceRepository)(nil)
	_ repository.EntityRepository     = (*EntityRepository)(nil)
	_ repository.ImageRepository      = (*ImageRepository)(nil)
	_ repository.UsageEventRepository = (*UsageEventRepository)(nil)
)

// Mock SpaceRepository
type SpaceRepository struct {
	mock.Mock
}

func (m *SpaceRepository) ListByOwner(ctx context.Context, ownerUserID int64) ([]models.Space, error) {
	args := m.Called(ctx, ownerUserID)
	spaces, _ := args.Get(0).([]models.Space)
	return spaces, args.Error(1)
}
func (m *SpaceRepository) Create(ctx context.Context, ownerUserID int64, name string, description *string) (*models.Space, error) {
	args := m.Called(ctx, ownerUserID, name, description)
	space, _ := args.Get(0).(*models.Space)
	return space, args.Error(1)
}
func (m *SpaceRepository) Delete(ctx context.Context, spaceID, ownerUserID int64) (bool, error) {
	args := m.Called(ctx, spaceID, ownerUserID)
	return args.Bool(0), args.Error(1)
}
func (m *SpaceRepository) IsOwnedBy(ctx context.Context, spaceID, userID int64) (bool, error) {
	args := m.Called(ctx, spaceID, userID)
	return args.Bool(0), args.Error(1)
}

// Mock EntityRepository. Kind returns KindDesc without recording a call.
type EntityRepository struct {
	mock.Mock
	KindDesc *models.EntityKind
}

// NewEntityRepository returns a mock bound to kind.
func NewEntityRepository(kind *models.EntityKind) *EntityRepository {
	return &EntityRepository{KindDesc: kind}
}

func (m *EntityRepository) Kind() *models.EntityKind { return m.KindDesc }

func (m *EntityRepository) ListWithLatest(ctx context.Context, spaceID int64) ([]models.EntitySummary, error) {
	args := m.Called(ctx, spaceID)
	list, _ := args.Get(0).([]models.EntitySummary)
	return list, args.Error(1)
}
func (m *EntityRepository) CreateWithInitialVersion(ctx context.Context, spaceID int64, name string, description *string, draft models.VersionDraft) (*models.EntityWithVersions, error) {
	args := m.Called(ctx, spaceID, name, description, draft)
	e, _ := args.Get(0).(*models.EntityWithVersions)
	return e, args.Error(1)
}
func (m *EntityRepository) GetHead(ctx context.Context, spaceID, entityID int64) (*models.EntityHead, error) {
	args := m.Called(ctx, spaceID, entityID)
	h, _ := args.Get(0).(*models.EntityHead)
	return h, args.Error(1)
}
func (m *EntityRepository) ListVersions(ctx context.Context, entityID int64) ([]models.Version, error) {
	args := m.Called(ctx, entityID)
	vs, _ := args.Get(0).([]models.Version)
	return vs, args.Error(1)
}
func (m *EntityRepository) GetVersion(ctx context.Context, entityID, versionID int64) (*models.Version, error) {
	args := m.Called(ctx, entityID, versionID)
	v, _ := args.Get(0).(*models.Version)
	return v, args.Error(1)
}
func (m *EntityRepository) LatestVersion(ctx context.Context, entityID int64) (*models.Version, error) {
	args := m.Called(ctx, entityID)
	v, _ := args.Get(0).(*models.Version)
	return v, args.Error(1)
}
func (m *EntityRepository) GetVersionInSpace(ctx context.Context, spaceID, versionID int64) (*models.Version, *models.EntityHead, error) {
	args := m.Called(ctx, spaceID, versionID)
	v, _ := args.Get(0).(*models.Version)
	h, _ := args.Get(1).(*models.EntityHead)
	return v, h, args.Error(2)
}
func (m *EntityRepository) VersionHasImages(ctx context.Context, versionID int64) (bool, error) {
	args := m.Called(ctx, versionID)
	return args.Bool(0), args.Error(1)
}
func (m *EntityRepository) Update(ctx context.Context, upd repository.EntityUpdate) (*models.EntityHead, error) {
	args := m.Called(ctx, upd)
	h, _ := args.Get(0).(*models.EntityHead)
	return h, args.Error(1)
}
func (m *EntityRepository) InsertNextVersion(ctx context.Context, entityID int64, draft models.VersionDraft) (*models.Version, error) {
	args := m.Called(ctx, entityID, draft)
	v, _ := args.Get(0).(*models.Version)
	return v, args.Error(1)
}

// Mock ImageRepository
type ImageRepository struct {
	mock.Mock
}

func (m *ImageRepository) Create(ctx context.Context, img *models.Image) (*models.Image, error) {
	args := m.Called(ctx, img)
	created, _ := args.Get(0).(*models.Image)
	return created, args.Error(1)
}
func (m *ImageRepository) ListLive(ctx context.Context, spaceID int64) ([]models.Image, error) {
	args := m.Called(ctx, spaceID)
	images, _ := args.Get(0).([]models.Image)
	return images, args.Error(1)
}
func (m *ImageRepository) GetInSpace(ctx context.Context, spaceID, imageID int64) (*models.Image, error) {
	args := m.Called(ctx, spaceID, imageID)
	img, _ := args.Get(0).(*models.Image)
	return img, args.Error(1)
}
func (m *ImageRepository) SoftDelete(ctx context.Context, imageID int64) (bool, error) {
	args := m.Called(ctx, imageID)
	return args.Bool(0), args.Error(1)
}

// Mock UsageEventRepository
type UsageEventRepository struct {
	mock.Mock
}

func (m *UsageEventRepository) Log(ctx context.Context, event models.ImageUsageEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
