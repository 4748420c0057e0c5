package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"graphics-server/internal/attributes"
	"graphics-server/internal/models"
	"graphics-server/internal/repository"

	"go.uber.org/zap"
)

const maxVersionInsertAttempts = 3

// EntityService is the versioned store of one entity kind. Every operation
// checks space ownership first.
type EntityService interface {
	Kind() *models.EntityKind
	List(ctx context.Context, userID, spaceID int64) ([]models.EntitySummary, error)
	Create(ctx context.Context, userID, spaceID int64, in models.CreateEntityInput) (*models.EntitySummary, error)
	// Update fails with the kind's has-images error once any image, deleted or
	// not, references the latest version.
	Update(ctx context.Context, userID, spaceID, entityID int64, in models.UpdateEntityInput) (*models.EntitySummary, error)
	GetWithVersions(ctx context.Context, userID, spaceID, entityID int64) (*models.EntityWithVersions, error)
	CloneVersion(ctx context.Context, userID, spaceID, entityID int64, in models.CloneVersionInput) (*models.Version, error)
}

type entityServiceImpl struct {
	kind   *models.EntityKind
	repo   repository.EntityRepository
	spaces SpaceService
	logger *zap.Logger
}

func NewEntityService(repo repository.EntityRepository, spaces SpaceService, logger *zap.Logger) EntityService {
	kind := repo.Kind()
	return &entityServiceImpl{
		kind:   kind,
		repo:   repo,
		spaces: spaces,
		logger: logger.Named("EntityService").With(zap.String("kind", kind.Name)),
	}
}

func (s *entityServiceImpl) Kind() *models.EntityKind { return s.kind }

func (s *entityServiceImpl) List(ctx context.Context, userID, spaceID int64) ([]models.EntitySummary, error) {
	if err := s.spaces.AssertOwned(ctx, spaceID, userID); err != nil {
		return nil, err
	}
	return s.repo.ListWithLatest(ctx, spaceID)
}

func (s *entityServiceImpl) Create(ctx context.Context, userID, spaceID int64, in models.CreateEntityInput) (*models.EntitySummary, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, models.ErrNameRequired
	}
	if err := s.spaces.AssertOwned(ctx, spaceID, userID); err != nil {
		return nil, err
	}

	label := "v1"
	draft := models.VersionDraft{
		Label:          &label,
		Fields:         s.knownFields(in.Fields),
		Attributes:     s.storedAttributes(in.Attributes),
		BasePrompt:     in.BasePrompt,
		NegativePrompt: in.NegativePrompt,
		BaseSeed:       in.BaseSeed,
	}
	created, err := s.repo.CreateWithInitialVersion(ctx, spaceID, name, trimToNil(in.Description), draft)
	if err != nil {
		return nil, err
	}
	summary := &models.EntitySummary{ID: created.ID, Name: created.Name, Description: created.Description}
	if len(created.Versions) > 0 {
		summary.LatestVersion = created.Versions[0].Ref()
	}
	s.logger.Info("Entity created", zap.Int64("space_id", spaceID), zap.Int64("entity_id", created.ID))
	return summary, nil
}

func (s *entityServiceImpl) Update(ctx context.Context, userID, spaceID, entityID int64, in models.UpdateEntityInput) (*models.EntitySummary, error) {
	if err := s.spaces.AssertOwned(ctx, spaceID, userID); err != nil {
		return nil, err
	}
	head, err := s.head(ctx, spaceID, entityID)
	if err != nil {
		return nil, err
	}

	latest, err := s.repo.LatestVersion(ctx, entityID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}
	if latest != nil {
		locked, err := s.repo.VersionHasImages(ctx, latest.ID)
		if err != nil {
			return nil, err
		}
		if locked {
			s.logger.Info("Update rejected, latest version has images",
				zap.Int64("entity_id", entityID), zap.Int64("version_id", latest.ID))
			return nil, fmt.Errorf("%w: %s %d", s.kind.ErrHasImages, s.kind.Name, entityID)
		}
	}

	upd := repository.EntityUpdate{EntityID: entityID, Name: head.Name, Description: head.Description}
	if in.Name != nil {
		if n := strings.TrimSpace(*in.Name); n != "" {
			upd.Name = n
		}
	}
	if in.Description != nil {
		upd.Description = trimToNil(in.Description)
	}
	if in.Attributes != nil && latest != nil {
		upd.VersionID = latest.ID
		upd.Attributes = s.storedAttributes(in.Attributes)
	}

	updated, err := s.repo.Update(ctx, upd)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s %d", s.kind.ErrNotFound, s.kind.Name, entityID)
		}
		return nil, err
	}
	summary := &models.EntitySummary{ID: updated.ID, Name: updated.Name, Description: updated.Description}
	if latest != nil {
		summary.LatestVersion = latest.Ref()
	}
	return summary, nil
}

func (s *entityServiceImpl) GetWithVersions(ctx context.Context, userID, spaceID, entityID int64) (*models.EntityWithVersions, error) {
	if err := s.spaces.AssertOwned(ctx, spaceID, userID); err != nil {
		return nil, err
	}
	head, err := s.head(ctx, spaceID, entityID)
	if err != nil {
		return nil, err
	}
	versions, err := s.repo.ListVersions(ctx, entityID)
	if err != nil {
		return nil, err
	}
	return &models.EntityWithVersions{EntityHead: *head, Versions: versions}, nil
}

func (s *entityServiceImpl) CloneVersion(ctx context.Context, userID, spaceID, entityID int64, in models.CloneVersionInput) (*models.Version, error) {
	if err := s.spaces.AssertOwned(ctx, spaceID, userID); err != nil {
		return nil, err
	}
	if _, err := s.head(ctx, spaceID, entityID); err != nil {
		return nil, err
	}
	source, err := s.repo.GetVersion(ctx, entityID, in.FromVersionID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: version %d of %s %d", s.kind.ErrVersionNotFound, in.FromVersionID, s.kind.Name, entityID)
		}
		return nil, err
	}

	draft := models.VersionDraft{
		Fields:              s.cloneFields(in.Fields, source.Fields),
		Attributes:          source.Attributes.Clone(),
		BasePrompt:          in.BasePrompt.Or(source.BasePrompt),
		NegativePrompt:      in.NegativePrompt.Or(source.NegativePrompt),
		BaseSeed:            in.BaseSeed.Or(source.BaseSeed),
		ClonedFromVersionID: &source.ID,
	}
	if in.Label != nil && strings.TrimSpace(*in.Label) != "" {
		label := *in.Label
		draft.Label = &label
	}

	var lastErr error
	for attempt := 1; attempt <= maxVersionInsertAttempts; attempt++ {
		version, err := s.repo.InsertNextVersion(ctx, entityID, draft)
		if err == nil {
			s.logger.Info("Version cloned",
				zap.Int64("entity_id", entityID),
				zap.Int64("from_version_id", source.ID),
				zap.Int("version_number", version.VersionNumber))
			return version, nil
		}
		if !errors.Is(err, models.ErrVersionConflict) {
			return nil, err
		}
		lastErr = err
		versionConflictsTotal.WithLabelValues(s.kind.Name).Inc()
		s.logger.Warn("Version number conflict, retrying", zap.Int64("entity_id", entityID), zap.Int("attempt", attempt))
	}
	return nil, fmt.Errorf("clone %s version after %d attempts: %w", s.kind.Name, maxVersionInsertAttempts, lastErr)
}

func (s *entityServiceImpl) head(ctx context.Context, spaceID, entityID int64) (*models.EntityHead, error) {
	head, err := s.repo.GetHead(ctx, spaceID, entityID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s %d", s.kind.ErrNotFound, s.kind.Name, entityID)
		}
		return nil, err
	}
	return head, nil
}

// knownFields drops keys that are not fields of the kind.
func (s *entityServiceImpl) knownFields(in map[string]*string) map[string]*string {
	out := make(map[string]*string, len(s.kind.Fields))
	for _, f := range s.kind.Fields {
		out[f.Key] = in[f.Key]
	}
	return out
}

// cloneFields copies base, replacing every field whose override was supplied.
func (s *entityServiceImpl) cloneFields(overrides map[string]models.Optional[string], base map[string]*string) map[string]*string {
	out := make(map[string]*string, len(s.kind.Fields))
	for _, f := range s.kind.Fields {
		out[f.Key] = overrides[f.Key].Or(base[f.Key])
	}
	return out
}

// storedAttributes normalizes raw input and reduces it to the stored form.
func (s *entityServiceImpl) storedAttributes(raw attributes.Values) attributes.Values {
	return attributes.Serialize(s.kind.Schema, attributes.NormalizeExisting(s.kind.Schema, raw))
}
