package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"graphics-server/internal/attributes"
	"graphics-server/internal/models"
	"graphics-server/internal/repository"
	"graphics-server/migrations"
	"graphics-server/pkg/migration"

	"github.com/docker/docker/client"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

type RepositorySuite struct {
	suite.Suite
	ctx         context.Context
	pgContainer *postgres.PostgresContainer
	pool        *pgxpool.Pool
	logger      *zap.Logger

	spaces     repository.SpaceRepository
	characters repository.EntityRepository
	styles     repository.EntityRepository
	images     repository.ImageRepository
	events     repository.UsageEventRepository
}

func (s *RepositorySuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = zap.NewNop()

	var err error
	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("graphics_test"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start postgres container")

	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err)
	s.pool, err = pgxpool.New(s.ctx, connStr)
	require.NoError(s.T(), err)

	migrator := migration.NewMigrator(migration.Config{MigrationsFS: migrations.FS}, s.pool)
	require.NoError(s.T(), migrator.Up(s.ctx), "Failed to run migrations")

	s.spaces = repository.NewPgSpaceRepository(s.pool, s.logger)
	s.characters = repository.NewPgEntityRepository(s.pool, models.CharacterKind, s.logger)
	s.styles = repository.NewPgEntityRepository(s.pool, models.StyleKind, s.logger)
	s.images = repository.NewPgImageRepository(s.pool, s.logger)
	s.events = repository.NewPgUsageEventRepository(s.pool, s.logger)
}

func (s *RepositorySuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(s.ctx); err != nil {
			s.T().Logf("failed to terminate postgres container: %v", err)
		}
	}
}

func (s *RepositorySuite) SetupTest() {
	_, err := s.pool.Exec(s.ctx, "TRUNCATE TABLE image_usage_events, spaces RESTART IDENTITY CASCADE")
	require.NoError(s.T(), err)
}

func TestRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		t.Skipf("Docker client init error: %v", err)
	}
	if _, err := cli.Ping(context.Background()); err != nil {
		cli.Close()
		t.Skipf("Docker daemon is not reachable: %v", err)
	}
	cli.Close()

	suite.Run(t, new(RepositorySuite))
}

func text(s string) *string { return &s }

func (s *RepositorySuite) newSpace(owner int64) *models.Space {
	space, err := s.spaces.Create(s.ctx, owner, "Studio", nil)
	s.Require().NoError(err)
	return space
}

func (s *RepositorySuite) newCharacter(spaceID int64) *models.EntityWithVersions {
	created, err := s.characters.CreateWithInitialVersion(s.ctx, spaceID, "Ada", text("inventor"), models.VersionDraft{
		Label:  text("v1"),
		Fields: map[string]*string{"identitySummary": text("A clockwork inventor")},
		Attributes: attributes.Values{
			"hair": {"hair_color": attributes.TagsValue("copper")},
		},
	})
	s.Require().NoError(err)
	s.Require().Len(created.Versions, 1)
	return created
}

func (s *RepositorySuite) newStyleVersion(spaceID int64) int64 {
	created, err := s.styles.CreateWithInitialVersion(s.ctx, spaceID, "Noir", nil, models.VersionDraft{
		Label:  text("v1"),
		Fields: map[string]*string{"artStyle": text("ink")},
	})
	s.Require().NoError(err)
	return created.Versions[0].ID
}

func (s *RepositorySuite) TestSpaces() {
	space := s.newSpace(1)

	owned, err := s.spaces.IsOwnedBy(s.ctx, space.ID, 1)
	s.Require().NoError(err)
	s.True(owned)
	owned, err = s.spaces.IsOwnedBy(s.ctx, space.ID, 2)
	s.Require().NoError(err)
	s.False(owned)

	list, err := s.spaces.ListByOwner(s.ctx, 1)
	s.Require().NoError(err)
	s.Len(list, 1)

	deleted, err := s.spaces.Delete(s.ctx, space.ID, 2)
	s.Require().NoError(err)
	s.False(deleted, "only the owner can delete")
	deleted, err = s.spaces.Delete(s.ctx, space.ID, 1)
	s.Require().NoError(err)
	s.True(deleted)
}

func (s *RepositorySuite) TestVersionNumbering() {
	space := s.newSpace(1)
	character := s.newCharacter(space.ID)
	first := character.Versions[0]
	s.Equal(1, first.VersionNumber)
	s.Equal([]string{"copper"}, first.Attributes["hair"]["hair_color"].Tags)

	for i := 0; i < 3; i++ {
		v, err := s.characters.InsertNextVersion(s.ctx, character.ID, models.VersionDraft{
			Fields:              first.Fields,
			Attributes:          first.Attributes,
			ClonedFromVersionID: &first.ID,
		})
		s.Require().NoError(err)
		s.Equal(i+2, v.VersionNumber)
		s.Require().NotNil(v.Label)
		s.Equal(fmt.Sprintf("v%d", i+2), *v.Label)
		s.Equal(first.ID, *v.ClonedFromVersionID)
	}

	versions, err := s.characters.ListVersions(s.ctx, character.ID)
	s.Require().NoError(err)
	numbers := make([]int, len(versions))
	for i, v := range versions {
		numbers[i] = v.VersionNumber
	}
	s.Equal([]int{1, 2, 3, 4}, numbers)

	latest, err := s.characters.LatestVersion(s.ctx, character.ID)
	s.Require().NoError(err)
	s.Equal(4, latest.VersionNumber)
}

func (s *RepositorySuite) TestConcurrentVersionInsertsStayDense() {
	space := s.newSpace(1)
	character := s.newCharacter(space.ID)

	const writers = 6
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				_, err := s.characters.InsertNextVersion(s.ctx, character.ID, models.VersionDraft{})
				if errors.Is(err, models.ErrVersionConflict) {
					continue
				}
				errs <- err
				return
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.Require().NoError(err)
	}

	versions, err := s.characters.ListVersions(s.ctx, character.ID)
	s.Require().NoError(err)
	numbers := make([]int, len(versions))
	for i, v := range versions {
		numbers[i] = v.VersionNumber
	}
	sort.Ints(numbers)
	s.Equal([]int{1, 2, 3, 4, 5, 6, 7}, numbers)
}

func (s *RepositorySuite) TestEditLockSurvivesSoftDelete() {
	space := s.newSpace(1)
	character := s.newCharacter(space.ID)
	versionID := character.Versions[0].ID
	styleVersionID := s.newStyleVersion(space.ID)

	has, err := s.characters.VersionHasImages(s.ctx, versionID)
	s.Require().NoError(err)
	s.False(has)

	img, err := s.images.Create(s.ctx, &models.Image{
		SpaceID:            space.ID,
		CharacterVersionID: versionID,
		StyleVersionID:     styleVersionID,
		Seed:               5,
		Prompt:             "# Image Specification",
		ModelName:          "gemini-3-pro-image-preview",
		StorageKey:         "spaces/1/images/1_5.png",
	})
	s.Require().NoError(err)
	s.NotZero(img.ID)

	has, err = s.characters.VersionHasImages(s.ctx, versionID)
	s.Require().NoError(err)
	s.True(has)

	deleted, err := s.images.SoftDelete(s.ctx, img.ID)
	s.Require().NoError(err)
	s.True(deleted)
	deleted, err = s.images.SoftDelete(s.ctx, img.ID)
	s.Require().NoError(err)
	s.False(deleted, "second soft delete is a no-op")

	has, err = s.characters.VersionHasImages(s.ctx, versionID)
	s.Require().NoError(err)
	s.True(has, "soft-deleted images keep the version locked")

	live, err := s.images.ListLive(s.ctx, space.ID)
	s.Require().NoError(err)
	s.Empty(live)

	stored, err := s.images.GetInSpace(s.ctx, space.ID, img.ID)
	s.Require().NoError(err)
	s.NotNil(stored.DeletedAt)

	seed := img.Seed
	s.NoError(s.events.Log(s.ctx, models.ImageUsageEvent{
		UserID: 1, SpaceID: space.ID, ImageID: &img.ID, Action: models.UsageActionDelete,
		ModelName: img.ModelName, Seed: &seed, StorageKey: &img.StorageKey,
	}))
}

func (s *RepositorySuite) TestGetVersionInSpaceRejectsOtherSpaces() {
	mine := s.newSpace(1)
	theirs := s.newSpace(2)
	character := s.newCharacter(theirs.ID)

	_, _, err := s.characters.GetVersionInSpace(s.ctx, mine.ID, character.Versions[0].ID)
	s.ErrorIs(err, models.ErrNotFound)

	v, head, err := s.characters.GetVersionInSpace(s.ctx, theirs.ID, character.Versions[0].ID)
	s.Require().NoError(err)
	s.Equal(character.ID, head.ID)
	s.Equal("Ada", head.Name)
	s.Equal("A clockwork inventor", v.Field("identitySummary"))

	_, err = s.characters.GetHead(s.ctx, mine.ID, character.ID)
	s.ErrorIs(err, models.ErrNotFound)
}

func (s *RepositorySuite) TestListWithLatestAndUpdate() {
	space := s.newSpace(1)
	character := s.newCharacter(space.ID)
	_, err := s.characters.InsertNextVersion(s.ctx, character.ID, models.VersionDraft{Label: text("final")})
	s.Require().NoError(err)

	list, err := s.characters.ListWithLatest(s.ctx, space.ID)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Require().NotNil(list[0].LatestVersion)
	s.Equal(2, list[0].LatestVersion.VersionNumber)
	s.Equal("final", *list[0].LatestVersion.Label)

	latest, err := s.characters.LatestVersion(s.ctx, character.ID)
	s.Require().NoError(err)
	head, err := s.characters.Update(s.ctx, repository.EntityUpdate{
		EntityID:   character.ID,
		Name:       "Ada Lovelace",
		VersionID:  latest.ID,
		Attributes: attributes.Values{"face": {"eye_color": attributes.TextValue("grey")}},
	})
	s.Require().NoError(err)
	s.Equal("Ada Lovelace", head.Name)
	s.Nil(head.Description)

	latest, err = s.characters.LatestVersion(s.ctx, character.ID)
	s.Require().NoError(err)
	s.Equal("grey", latest.Attributes["face"]["eye_color"].Text)
	s.NotContains(latest.Attributes, "hair")

	empty, err := s.styles.ListWithLatest(s.ctx, space.ID)
	s.Require().NoError(err)
	s.Empty(empty)
}
