package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"graphics-server/internal/generation"
	"graphics-server/internal/messaging"
	"graphics-server/internal/models"
	"graphics-server/internal/prompt"
	"graphics-server/internal/repository"
	"graphics-server/internal/storage"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// GeneratorSource hands out the image generator, constructing it on demand.
type GeneratorSource interface {
	Get(ctx context.Context) (generation.ImageGenerator, error)
}

// ImageService generates, lists and deletes images.
type ImageService interface {
	Generate(ctx context.Context, in models.GenerateImageInput) (*models.ImageSummary, error)
	List(ctx context.Context, userID, spaceID int64) ([]models.ImageSummary, error)
	// Delete returns false when the image is absent or already deleted.
	Delete(ctx context.Context, userID, spaceID, imageID int64) (bool, error)
}

// ImageServiceDeps collects the collaborators of the image service.
type ImageServiceDeps struct {
	Spaces     SpaceService
	Characters repository.EntityRepository
	Styles     repository.EntityRepository
	Scenes     repository.EntityRepository
	Images     repository.ImageRepository
	Events     repository.UsageEventRepository
	Generators GeneratorSource
	Storage    storage.ObjectStorage
	Signer     storage.URLSigner
	Publisher  messaging.ImageEventPublisher

	ModelName string
	ImageSize string

	// Optional; default to time.Now and RandomSeed.
	Now        func() time.Time
	RandomSeed func() int32
}

type imageServiceImpl struct {
	deps   ImageServiceDeps
	logger *zap.Logger
}

func NewImageService(deps ImageServiceDeps, logger *zap.Logger) ImageService {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.RandomSeed == nil {
		deps.RandomSeed = RandomSeed
	}
	if deps.Signer == nil {
		deps.Signer = storage.NoSigner{}
	}
	if deps.Publisher == nil {
		deps.Publisher = messaging.NoopPublisher{}
	}
	if deps.Storage == nil {
		deps.Storage = storage.Disabled{}
	}
	return &imageServiceImpl{deps: deps, logger: logger.Named("ImageService")}
}

// resolved is one validated version together with its head.
type resolved struct {
	version *models.Version
	head    *models.EntityHead
}

func (s *imageServiceImpl) Generate(ctx context.Context, in models.GenerateImageInput) (*models.ImageSummary, error) {
	logFields := []zap.Field{
		zap.Int64("user_id", in.UserID),
		zap.Int64("space_id", in.SpaceID),
		zap.Int64("character_version_id", in.CharacterVersionID),
		zap.Int64("style_version_id", in.StyleVersionID),
	}

	summary, err := s.generate(ctx, in, logFields)
	if err != nil {
		imageGenerationsTotal.WithLabelValues(models.ErrorCode(err)).Inc()
		s.logger.Warn("Image generation failed", append(logFields, zap.Error(err))...)
		return nil, err
	}
	imageGenerationsTotal.WithLabelValues("success").Inc()
	return summary, nil
}

func (s *imageServiceImpl) generate(ctx context.Context, in models.GenerateImageInput, logFields []zap.Field) (*models.ImageSummary, error) {
	if err := s.deps.Spaces.AssertOwned(ctx, in.SpaceID, in.UserID); err != nil {
		return nil, err
	}

	character, style, scene, err := s.resolveVersions(ctx, in)
	if err != nil {
		return nil, err
	}

	characterPart := prompt.Part{Kind: models.CharacterKind, Name: character.head.Name, Description: character.head.Description, Version: character.version}
	stylePart := prompt.Part{Kind: models.StyleKind, Name: style.head.Name, Description: style.head.Description, Version: style.version}
	var scenePart *prompt.Part
	if scene != nil {
		scenePart = &prompt.Part{Kind: models.SceneKind, Name: scene.head.Name, Description: scene.head.Description, Version: scene.version}
	}
	composed, err := prompt.Compose(characterPart, stylePart, scenePart)
	if err != nil {
		return nil, err
	}

	seed := effectiveSeed(in.Seed, s.deps.RandomSeed)
	logFields = append(logFields, zap.Int32("seed", seed), zap.String("model", s.deps.ModelName))

	img, err := s.synthesize(ctx, composed, seed, in)
	if err != nil {
		return nil, err
	}

	key := storage.ImageKey(in.SpaceID, s.deps.Now(), seed, img.MIMEType)
	if err := s.deps.Storage.Put(ctx, key, img.Data, img.MIMEType); err != nil {
		return nil, fmt.Errorf("failed to store generated image: %w", err)
	}

	var sceneVersionID *int64
	if scene != nil {
		sceneVersionID = &scene.version.ID
	}
	created, err := s.deps.Images.Create(ctx, &models.Image{
		SpaceID:            in.SpaceID,
		CharacterVersionID: character.version.ID,
		StyleVersionID:     style.version.ID,
		SceneVersionID:     sceneVersionID,
		Seed:               seed,
		Prompt:             composed.Prompt,
		NegativePrompt:     composed.NegativePrompt,
		ModelName:          s.deps.ModelName,
		AspectRatio:        in.AspectRatio,
		Resolution:         in.Resolution,
		StorageKey:         key,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Image generated", append(logFields, zap.Int64("image_id", created.ID), zap.String("storage_key", key))...)

	s.recordUsage(ctx, in.UserID, created, models.UsageActionCreate)
	s.publish(ctx, in.UserID, created, messaging.EventImageCreated)

	summary := s.summarize(created)
	return &summary, nil
}

// resolveVersions looks up the referenced versions concurrently. Errors are
// reported with character before style before scene.
func (s *imageServiceImpl) resolveVersions(ctx context.Context, in models.GenerateImageInput) (character, style, scene *resolved, err error) {
	type lookup struct {
		repo   repository.EntityRepository
		id     int64
		result *resolved
		err    error
	}
	lookups := []*lookup{
		{repo: s.deps.Characters, id: in.CharacterVersionID},
		{repo: s.deps.Styles, id: in.StyleVersionID},
	}
	if in.SceneVersionID != nil {
		lookups = append(lookups, &lookup{repo: s.deps.Scenes, id: *in.SceneVersionID})
	}

	var g errgroup.Group
	for _, l := range lookups {
		g.Go(func() error {
			v, h, err := l.repo.GetVersionInSpace(ctx, in.SpaceID, l.id)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					kind := l.repo.Kind()
					err = fmt.Errorf("%w: %s version %d", kind.ErrVersionNotFound, kind.Name, l.id)
				}
				l.err = err
				return err
			}
			l.result = &resolved{version: v, head: h}
			return nil
		})
	}
	if g.Wait() != nil {
		for _, l := range lookups {
			if l.err != nil {
				return nil, nil, nil, l.err
			}
		}
	}

	character, style = lookups[0].result, lookups[1].result
	if len(lookups) > 2 {
		scene = lookups[2].result
	}
	return character, style, scene, nil
}

func (s *imageServiceImpl) synthesize(ctx context.Context, composed prompt.Result, seed int32, in models.GenerateImageInput) (*generation.Image, error) {
	generator, err := s.deps.Generators.Get(ctx)
	if err != nil {
		if errors.Is(err, models.ErrImageGenerationFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", models.ErrImageGenerationFailed, err)
	}

	req := generation.Request{
		Prompt:    composed.Prompt,
		Model:     s.deps.ModelName,
		Seed:      seed,
		ImageSize: s.deps.ImageSize,
	}
	if in.AspectRatio != nil {
		req.AspectRatio = *in.AspectRatio
	}

	started := time.Now()
	defer func() { imageGenerationDuration.Observe(time.Since(started).Seconds()) }()

	stream, err := generator.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrImageGenerationFailed, err)
	}
	return generation.FirstImage(stream)
}

func (s *imageServiceImpl) List(ctx context.Context, userID, spaceID int64) ([]models.ImageSummary, error) {
	if err := s.deps.Spaces.AssertOwned(ctx, spaceID, userID); err != nil {
		return nil, err
	}
	images, err := s.deps.Images.ListLive(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	out := make([]models.ImageSummary, 0, len(images))
	for i := range images {
		out = append(out, s.summarize(&images[i]))
	}
	return out, nil
}

func (s *imageServiceImpl) Delete(ctx context.Context, userID, spaceID, imageID int64) (bool, error) {
	if err := s.deps.Spaces.AssertOwned(ctx, spaceID, userID); err != nil {
		return false, err
	}
	img, err := s.deps.Images.GetInSpace(ctx, spaceID, imageID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if img.DeletedAt != nil {
		return false, nil
	}
	deleted, err := s.deps.Images.SoftDelete(ctx, imageID)
	if err != nil {
		return false, err
	}
	if !deleted {
		return false, nil
	}
	imagesDeletedTotal.Inc()

	bg := context.WithoutCancel(ctx)
	if err := s.deps.Storage.Delete(bg, img.StorageKey); err != nil {
		bestEffortFailuresTotal.WithLabelValues("storage_delete").Inc()
		s.logger.Warn("Failed to delete image object", zap.Int64("image_id", imageID), zap.String("storage_key", img.StorageKey), zap.Error(err))
	}
	s.recordUsage(ctx, userID, img, models.UsageActionDelete)
	s.publish(ctx, userID, img, messaging.EventImageDeleted)

	s.logger.Info("Image deleted", zap.Int64("image_id", imageID), zap.Int64("space_id", spaceID))
	return true, nil
}

// recordUsage writes an audit event. Failures are logged, never returned.
func (s *imageServiceImpl) recordUsage(ctx context.Context, userID int64, img *models.Image, action models.UsageAction) {
	imageID, seed, key := img.ID, img.Seed, img.StorageKey
	event := models.ImageUsageEvent{
		UserID:     userID,
		SpaceID:    img.SpaceID,
		ImageID:    &imageID,
		Action:     action,
		ModelName:  img.ModelName,
		Seed:       &seed,
		StorageKey: &key,
	}
	if err := s.deps.Events.Log(context.WithoutCancel(ctx), event); err != nil {
		bestEffortFailuresTotal.WithLabelValues("usage_event").Inc()
		s.logger.Warn("Failed to log usage event", zap.String("action", string(action)), zap.Int64("image_id", img.ID), zap.Error(err))
	}
}

func (s *imageServiceImpl) publish(ctx context.Context, userID int64, img *models.Image, eventType string) {
	event := messaging.ImageEvent{
		Type:       eventType,
		ImageID:    img.ID,
		SpaceID:    img.SpaceID,
		UserID:     userID,
		ModelName:  img.ModelName,
		Seed:       img.Seed,
		StorageKey: img.StorageKey,
		OccurredAt: s.deps.Now().UTC(),
	}
	if err := s.deps.Publisher.PublishImageEvent(context.WithoutCancel(ctx), event); err != nil {
		bestEffortFailuresTotal.WithLabelValues("publish").Inc()
		s.logger.Warn("Failed to publish image event", zap.String("type", eventType), zap.Int64("image_id", img.ID), zap.Error(err))
	}
}

func (s *imageServiceImpl) summarize(img *models.Image) models.ImageSummary {
	summary := models.ImageSummary{
		ID:                 img.ID,
		SpaceID:            img.SpaceID,
		CharacterVersionID: img.CharacterVersionID,
		StyleVersionID:     img.StyleVersionID,
		SceneVersionID:     img.SceneVersionID,
		Seed:               img.Seed,
		Prompt:             img.Prompt,
		NegativePrompt:     img.NegativePrompt,
		ModelName:          img.ModelName,
		AspectRatio:        img.AspectRatio,
		Resolution:         img.Resolution,
		StorageKey:         img.StorageKey,
		PublicURL:          s.deps.Storage.PublicURL(img.StorageKey),
		CreatedAt:          img.CreatedAt,
	}
	if url, ok := s.deps.Signer.Sign(img.StorageKey); ok {
		summary.SignedURL = url
	}
	return summary
}
