package service_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"graphics-server/internal/generation"
	"graphics-server/internal/messaging"
	msgmocks "graphics-server/internal/messaging/mocks"
	"graphics-server/internal/models"
	"graphics-server/internal/repository/mocks"
	"graphics-server/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sliceStream struct {
	chunks []generation.Chunk
	err    error
	closed bool
}

func (s *sliceStream) Next() (generation.Chunk, error) {
	if len(s.chunks) == 0 {
		if s.err != nil {
			return generation.Chunk{}, s.err
		}
		return generation.Chunk{}, io.EOF
	}
	c := s.chunks[0]
	s.chunks = s.chunks[1:]
	return c, nil
}

func (s *sliceStream) Close() error {
	s.closed = true
	return nil
}

type fakeGenerator struct {
	stream   *sliceStream
	err      error
	requests []generation.Request
}

func (g *fakeGenerator) Generate(_ context.Context, req generation.Request) (generation.ChunkStream, error) {
	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	return g.stream, nil
}

type fakeSource struct {
	gen generation.ImageGenerator
	err error
}

func (s fakeSource) Get(context.Context) (generation.ImageGenerator, error) {
	return s.gen, s.err
}

type memoryStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleteErr error
	deletes   []string
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}}
}

func (m *memoryStorage) Put(_ context.Context, key string, data []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *memoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, key)
	delete(m.objects, key)
	return m.deleteErr
}

func (m *memoryStorage) PublicURL(key string) string {
	return "https://media.s3.us-east-1.amazonaws.com/" + key
}

type prefixSigner struct{}

func (prefixSigner) Sign(key string) (string, bool) {
	return "https://cdn.example.com/" + key + "?Signature=x", true
}

type imageFixture struct {
	ctx        context.Context
	spaces     *mocks.SpaceRepository
	characters *mocks.EntityRepository
	styles     *mocks.EntityRepository
	scenes     *mocks.EntityRepository
	images     *mocks.ImageRepository
	events     *mocks.UsageEventRepository
	publisher  *msgmocks.ImageEventPublisher
	storage    *memoryStorage
	generator  *fakeGenerator
	source     fakeSource
	now        time.Time
}

func newImageFixture() *imageFixture {
	gen := &fakeGenerator{stream: &sliceStream{chunks: []generation.Chunk{
		{},
		{Data: []byte("jpeg-bytes"), MIMEType: "image/jpeg"},
	}}}
	return &imageFixture{
		ctx:        context.Background(),
		spaces:     new(mocks.SpaceRepository),
		characters: mocks.NewEntityRepository(models.CharacterKind),
		styles:     mocks.NewEntityRepository(models.StyleKind),
		scenes:     mocks.NewEntityRepository(models.SceneKind),
		images:     new(mocks.ImageRepository),
		events:     new(mocks.UsageEventRepository),
		publisher:  new(msgmocks.ImageEventPublisher),
		storage:    newMemoryStorage(),
		generator:  gen,
		source:     fakeSource{gen: gen},
		now:        time.UnixMilli(1700000000123),
	}
}

func (f *imageFixture) service() service.ImageService {
	return service.NewImageService(service.ImageServiceDeps{
		Spaces:     service.NewSpaceService(f.spaces, zap.NewNop()),
		Characters: f.characters,
		Styles:     f.styles,
		Scenes:     f.scenes,
		Images:     f.images,
		Events:     f.events,
		Generators: f.source,
		Storage:    f.storage,
		Signer:     prefixSigner{},
		Publisher:  f.publisher,
		ModelName:  "gemini-3-pro-image-preview",
		ImageSize:  "1K",
		Now:        func() time.Time { return f.now },
		RandomSeed: func() int32 { return 777 },
	}, zap.NewNop())
}

func (f *imageFixture) assertAll(t *testing.T) {
	f.spaces.AssertExpectations(t)
	f.characters.AssertExpectations(t)
	f.styles.AssertExpectations(t)
	f.scenes.AssertExpectations(t)
	f.images.AssertExpectations(t)
	f.events.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func (f *imageFixture) owned() {
	f.spaces.On("IsOwnedBy", f.ctx, testSpaceID, testUserID).Return(true, nil).Once()
}

func (f *imageFixture) versionsResolve() {
	f.characters.On("GetVersionInSpace", f.ctx, testSpaceID, int64(11)).Return(
		&models.Version{ID: 11, Fields: map[string]*string{"identitySummary": strPtr("A clockwork inventor")}},
		&models.EntityHead{ID: 1, Name: "Ada"}, nil).Once()
	f.styles.On("GetVersionInSpace", f.ctx, testSpaceID, int64(22)).Return(
		&models.Version{ID: 22, Fields: map[string]*string{"artStyle": strPtr("ink")}, NegativePrompt: strPtr("color")},
		&models.EntityHead{ID: 2, Name: "Noir"}, nil).Once()
}

func float(v float64) *float64 { return &v }

func TestImageService_Generate(t *testing.T) {
	f := newImageFixture()
	f.owned()
	f.versionsResolve()

	const key = "spaces/10/images/1700000000123_5.jpg"
	f.images.On("Create", f.ctx, mock.MatchedBy(func(img *models.Image) bool {
		return img.SpaceID == testSpaceID && img.CharacterVersionID == 11 && img.StyleVersionID == 22 &&
			img.SceneVersionID == nil && img.Seed == 5 && img.StorageKey == key &&
			img.ModelName == "gemini-3-pro-image-preview" &&
			strings.Contains(img.Prompt, "- Character identity: A clockwork inventor") &&
			img.NegativePrompt != nil && *img.NegativePrompt == "color" &&
			img.AspectRatio != nil && *img.AspectRatio == "16:9"
	})).Return(&models.Image{
		ID: 100, SpaceID: testSpaceID, CharacterVersionID: 11, StyleVersionID: 22, Seed: 5,
		ModelName: "gemini-3-pro-image-preview", StorageKey: key, Prompt: "p", CreatedAt: f.now,
	}, nil).Once()
	f.events.On("Log", mock.Anything, mock.MatchedBy(func(e models.ImageUsageEvent) bool {
		return e.Action == models.UsageActionCreate && e.UserID == testUserID && *e.ImageID == 100 &&
			*e.Seed == 5 && *e.StorageKey == key
	})).Return(nil).Once()
	f.publisher.On("PublishImageEvent", mock.Anything, mock.MatchedBy(func(e messaging.ImageEvent) bool {
		return e.Type == messaging.EventImageCreated && e.ImageID == 100
	})).Return(nil).Once()

	summary, err := f.service().Generate(f.ctx, models.GenerateImageInput{
		UserID:             testUserID,
		SpaceID:            testSpaceID,
		CharacterVersionID: 11,
		StyleVersionID:     22,
		Seed:               float(-5),
		AspectRatio:        strPtr("16:9"),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(100), summary.ID)
	assert.Equal(t, int32(5), summary.Seed)
	assert.Equal(t, key, summary.StorageKey)
	assert.Equal(t, "https://media.s3.us-east-1.amazonaws.com/"+key, summary.PublicURL)
	assert.Equal(t, "https://cdn.example.com/"+key+"?Signature=x", summary.SignedURL)
	assert.Equal(t, []byte("jpeg-bytes"), f.storage.objects[key])
	assert.True(t, f.generator.stream.closed)

	require.Len(t, f.generator.requests, 1)
	req := f.generator.requests[0]
	assert.Equal(t, int32(5), req.Seed)
	assert.Equal(t, "16:9", req.AspectRatio)
	assert.Equal(t, "1K", req.ImageSize)
	assert.True(t, strings.HasPrefix(req.Prompt, "# Image Specification\n\n## Character\n"))
	f.assertAll(t)
}

func TestImageService_Generate_RandomSeedWhenAbsent(t *testing.T) {
	f := newImageFixture()
	f.owned()
	f.versionsResolve()
	f.images.On("Create", f.ctx, mock.MatchedBy(func(img *models.Image) bool { return img.Seed == 777 })).
		Return(&models.Image{ID: 1, Seed: 777}, nil).Once()
	f.events.On("Log", mock.Anything, mock.Anything).Return(nil).Once()
	f.publisher.On("PublishImageEvent", mock.Anything, mock.Anything).Return(nil).Once()

	summary, err := f.service().Generate(f.ctx, models.GenerateImageInput{
		UserID: testUserID, SpaceID: testSpaceID, CharacterVersionID: 11, StyleVersionID: 22,
	})
	require.NoError(t, err)
	assert.Equal(t, int32(777), summary.Seed)
	f.assertAll(t)
}

func TestImageService_Generate_BestEffortFailuresDoNotAbort(t *testing.T) {
	f := newImageFixture()
	f.owned()
	f.versionsResolve()
	f.images.On("Create", f.ctx, mock.Anything).Return(&models.Image{ID: 1}, nil).Once()
	f.events.On("Log", mock.Anything, mock.Anything).Return(errors.New("audit table locked")).Once()
	f.publisher.On("PublishImageEvent", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	_, err := f.service().Generate(f.ctx, models.GenerateImageInput{
		UserID: testUserID, SpaceID: testSpaceID, CharacterVersionID: 11, StyleVersionID: 22, Seed: float(1),
	})
	assert.NoError(t, err)
	f.assertAll(t)
}

func TestImageService_Generate_CrossSpaceVersion(t *testing.T) {
	f := newImageFixture()
	f.owned()
	f.characters.On("GetVersionInSpace", f.ctx, testSpaceID, int64(11)).Return(nil, nil, models.ErrNotFound).Once()
	f.styles.On("GetVersionInSpace", f.ctx, testSpaceID, int64(22)).
		Return(&models.Version{ID: 22}, &models.EntityHead{ID: 2, Name: "Noir"}, nil).Once()

	_, err := f.service().Generate(f.ctx, models.GenerateImageInput{
		UserID: testUserID, SpaceID: testSpaceID, CharacterVersionID: 11, StyleVersionID: 22,
	})
	require.ErrorIs(t, err, models.ErrCharacterVersionNotFound)
	assert.Equal(t, "CHARACTER_VERSION_NOT_FOUND", models.ErrorCode(err))
	assert.Empty(t, f.generator.requests)
	f.images.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.assertAll(t)
}

func TestImageService_Generate_ErrorPrecedence(t *testing.T) {
	f := newImageFixture()
	f.owned()
	f.characters.On("GetVersionInSpace", f.ctx, testSpaceID, int64(11)).Return(nil, nil, models.ErrNotFound).Once()
	f.styles.On("GetVersionInSpace", f.ctx, testSpaceID, int64(22)).Return(nil, nil, models.ErrNotFound).Once()
	f.scenes.On("GetVersionInSpace", f.ctx, testSpaceID, int64(33)).Return(nil, nil, models.ErrNotFound).Once()

	sceneID := int64(33)
	_, err := f.service().Generate(f.ctx, models.GenerateImageInput{
		UserID: testUserID, SpaceID: testSpaceID, CharacterVersionID: 11, StyleVersionID: 22, SceneVersionID: &sceneID,
	})
	assert.Equal(t, "CHARACTER_VERSION_NOT_FOUND", models.ErrorCode(err))
	f.assertAll(t)
}

func TestImageService_Generate_SceneVersionMissing(t *testing.T) {
	f := newImageFixture()
	f.owned()
	f.versionsResolve()
	f.scenes.On("GetVersionInSpace", f.ctx, testSpaceID, int64(33)).Return(nil, nil, models.ErrNotFound).Once()

	sceneID := int64(33)
	_, err := f.service().Generate(f.ctx, models.GenerateImageInput{
		UserID: testUserID, SpaceID: testSpaceID, CharacterVersionID: 11, StyleVersionID: 22, SceneVersionID: &sceneID,
	})
	assert.Equal(t, "SCENE_VERSION_NOT_FOUND", models.ErrorCode(err))
	f.assertAll(t)
}

func TestImageService_Generate_ForeignSpace(t *testing.T) {
	f := newImageFixture()
	f.spaces.On("IsOwnedBy", f.ctx, testSpaceID, testUserID).Return(false, nil).Once()

	_, err := f.service().Generate(f.ctx, models.GenerateImageInput{
		UserID: testUserID, SpaceID: testSpaceID, CharacterVersionID: 11, StyleVersionID: 22,
	})
	assert.ErrorIs(t, err, models.ErrSpaceNotFound)
	f.assertAll(t)
}

func TestImageService_Generate_GenerationFailures(t *testing.T) {
	input := models.GenerateImageInput{UserID: testUserID, SpaceID: testSpaceID, CharacterVersionID: 11, StyleVersionID: 22}

	cases := []struct {
		name   string
		mutate func(f *imageFixture)
		code   string
	}{
		{"not configured", func(f *imageFixture) {
			f.source = fakeSource{err: models.ErrGeminiNotConfigured}
		}, models.ErrCodeGeminiNotConfigured},
		{"no image bytes", func(f *imageFixture) {
			f.generator.stream = &sliceStream{chunks: []generation.Chunk{{}, {}}}
		}, models.ErrCodeImageBytesMissing},
		{"transport error", func(f *imageFixture) {
			f.generator.err = errors.New("503 from upstream")
		}, models.ErrCodeImageGenerationFailed},
		{"stream error", func(f *imageFixture) {
			f.generator.stream = &sliceStream{err: errors.New("reset")}
		}, models.ErrCodeImageGenerationFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newImageFixture()
			tc.mutate(f)
			f.owned()
			f.versionsResolve()

			_, err := f.service().Generate(f.ctx, input)
			require.ErrorIs(t, err, models.ErrImageGenerationFailed)
			assert.Equal(t, tc.code, models.ErrorCode(err))
			assert.Empty(t, f.storage.objects, "nothing is uploaded on failure")
			f.images.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			f.assertAll(t)
		})
	}
}

func TestImageService_List(t *testing.T) {
	f := newImageFixture()
	f.owned()
	f.images.On("ListLive", f.ctx, testSpaceID).Return([]models.Image{
		{ID: 2, StorageKey: "spaces/10/images/2_1.png"},
		{ID: 1, StorageKey: "spaces/10/images/1_1.png"},
	}, nil).Once()

	list, err := f.service().List(f.ctx, testUserID, testSpaceID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(2), list[0].ID)
	assert.Equal(t, "https://media.s3.us-east-1.amazonaws.com/spaces/10/images/2_1.png", list[0].PublicURL)
	assert.NotEmpty(t, list[1].SignedURL)
	f.assertAll(t)
}

func TestImageService_Delete(t *testing.T) {
	const key = "spaces/10/images/1_1.png"

	t.Run("deletes once", func(t *testing.T) {
		f := newImageFixture()
		f.spaces.On("IsOwnedBy", f.ctx, testSpaceID, testUserID).Return(true, nil).Twice()
		live := &models.Image{ID: 1, SpaceID: testSpaceID, StorageKey: key, Seed: 1, ModelName: "m"}
		deletedAt := time.Now()
		gone := *live
		gone.DeletedAt = &deletedAt
		f.images.On("GetInSpace", f.ctx, testSpaceID, int64(1)).Return(live, nil).Once()
		f.images.On("GetInSpace", f.ctx, testSpaceID, int64(1)).Return(&gone, nil).Once()
		f.images.On("SoftDelete", f.ctx, int64(1)).Return(true, nil).Once()
		f.events.On("Log", mock.Anything, mock.MatchedBy(func(e models.ImageUsageEvent) bool {
			return e.Action == models.UsageActionDelete && *e.StorageKey == key && e.ModelName == "m"
		})).Return(nil).Once()
		f.publisher.On("PublishImageEvent", mock.Anything, mock.MatchedBy(func(e messaging.ImageEvent) bool {
			return e.Type == messaging.EventImageDeleted
		})).Return(nil).Once()
		svc := f.service()

		ok, err := svc.Delete(f.ctx, testUserID, testSpaceID, 1)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = svc.Delete(f.ctx, testUserID, testSpaceID, 1)
		require.NoError(t, err)
		assert.False(t, ok, "second delete is a no-op")
		assert.Equal(t, []string{key}, f.storage.deletes)
		f.assertAll(t)
	})

	t.Run("missing image", func(t *testing.T) {
		f := newImageFixture()
		f.owned()
		f.images.On("GetInSpace", f.ctx, testSpaceID, int64(9)).Return(nil, models.ErrNotFound).Once()

		ok, err := f.service().Delete(f.ctx, testUserID, testSpaceID, 9)
		require.NoError(t, err)
		assert.False(t, ok)
		f.assertAll(t)
	})

	t.Run("storage failure is swallowed", func(t *testing.T) {
		f := newImageFixture()
		f.storage.deleteErr = errors.New("access denied")
		f.owned()
		f.images.On("GetInSpace", f.ctx, testSpaceID, int64(1)).
			Return(&models.Image{ID: 1, SpaceID: testSpaceID, StorageKey: key}, nil).Once()
		f.images.On("SoftDelete", f.ctx, int64(1)).Return(true, nil).Once()
		f.events.On("Log", mock.Anything, mock.Anything).Return(errors.New("audit down")).Once()
		f.publisher.On("PublishImageEvent", mock.Anything, mock.Anything).Return(nil).Once()

		ok, err := f.service().Delete(f.ctx, testUserID, testSpaceID, 1)
		require.NoError(t, err)
		assert.True(t, ok)
		f.assertAll(t)
	})

	t.Run("lost race", func(t *testing.T) {
		f := newImageFixture()
		f.owned()
		f.images.On("GetInSpace", f.ctx, testSpaceID, int64(1)).
			Return(&models.Image{ID: 1, SpaceID: testSpaceID, StorageKey: key}, nil).Once()
		f.images.On("SoftDelete", f.ctx, int64(1)).Return(false, nil).Once()

		ok, err := f.service().Delete(f.ctx, testUserID, testSpaceID, 1)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, f.storage.deletes)
		f.assertAll(t)
	})
}
