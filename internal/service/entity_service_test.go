package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"graphics-server/internal/attributes"
	"graphics-server/internal/models"
	"graphics-server/internal/repository"
	"graphics-server/internal/repository/mocks"
	"graphics-server/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

const (
	testUserID  int64 = 1
	testSpaceID int64 = 10
)

type EntityServiceSuite struct {
	suite.Suite
	ctx    context.Context
	spaces *mocks.SpaceRepository
	repo   *mocks.EntityRepository
	svc    service.EntityService
}

func (s *EntityServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.spaces = new(mocks.SpaceRepository)
	s.repo = mocks.NewEntityRepository(models.CharacterKind)
	s.svc = service.NewEntityService(s.repo, service.NewSpaceService(s.spaces, zap.NewNop()), zap.NewNop())
}

func (s *EntityServiceSuite) TearDownTest() {
	s.spaces.AssertExpectations(s.T())
	s.repo.AssertExpectations(s.T())
}

func (s *EntityServiceSuite) owned() {
	s.spaces.On("IsOwnedBy", s.ctx, testSpaceID, testUserID).Return(true, nil).Once()
}

func sourceVersion() *models.Version {
	seed := int64(99)
	return &models.Version{
		ID:            7,
		EntityID:      5,
		VersionNumber: 2,
		Label:         strPtr("v2"),
		Fields: map[string]*string{
			"identitySummary":       strPtr("A clockwork inventor"),
			"physicalDescription":   strPtr("tall"),
			"wardrobeDescription":   nil,
			"personalityMannerisms": strPtr("curious"),
			"extraNotes":            nil,
		},
		Attributes: attributes.Values{
			"hair": {"hair_color": attributes.TextValue("copper")},
		},
		BasePrompt:     strPtr("always smiling"),
		NegativePrompt: strPtr("blurry"),
		BaseSeed:       &seed,
		CreatedAt:      time.Unix(1700000000, 0),
	}
}

func (s *EntityServiceSuite) TestCreate() {
	s.owned()
	s.repo.On("CreateWithInitialVersion", s.ctx, testSpaceID, "Ada", (*string)(nil), mock.MatchedBy(func(d models.VersionDraft) bool {
		hair := d.Attributes["hair"]
		return d.Label != nil && *d.Label == "v1" &&
			len(d.Fields) == len(models.CharacterKind.Fields) &&
			d.Fields["identitySummary"] != nil && *d.Fields["identitySummary"] == "inventor" &&
			len(d.Attributes) == 1 &&
			assert.ObjectsAreEqual([]string{"copper"}, hair["hair_color"].Tags)
	})).Return(&models.EntityWithVersions{
		EntityHead: models.EntityHead{ID: 5, SpaceID: testSpaceID, Name: "Ada"},
		Versions:   []models.Version{{ID: 50, VersionNumber: 1, Label: strPtr("v1")}},
	}, nil).Once()

	summary, err := s.svc.Create(s.ctx, testUserID, testSpaceID, models.CreateEntityInput{
		Name:        "  Ada  ",
		Description: strPtr("  "),
		Fields: map[string]*string{
			"identitySummary": strPtr("inventor"),
			"unknownField":    strPtr("dropped"),
		},
		Attributes: attributes.Values{
			"hair":    {"hair_color": attributes.TextValue("  copper "), "bogus": attributes.TextValue("x")},
			"unknown": {"x": attributes.TextValue("y")},
		},
	})
	s.Require().NoError(err)
	s.Equal(int64(5), summary.ID)
	s.Require().NotNil(summary.LatestVersion)
	s.Equal(1, summary.LatestVersion.VersionNumber)
	s.Equal("v1", *summary.LatestVersion.Label)
}

func (s *EntityServiceSuite) TestCreate_NameRequired() {
	_, err := s.svc.Create(s.ctx, testUserID, testSpaceID, models.CreateEntityInput{Name: "  "})
	s.ErrorIs(err, models.ErrNameRequired)
}

func (s *EntityServiceSuite) TestCreate_ForeignSpace() {
	s.spaces.On("IsOwnedBy", s.ctx, testSpaceID, testUserID).Return(false, nil).Once()
	_, err := s.svc.Create(s.ctx, testUserID, testSpaceID, models.CreateEntityInput{Name: "Ada"})
	s.ErrorIs(err, models.ErrSpaceNotFound)
}

func (s *EntityServiceSuite) TestCloneVersion_SparseOverride() {
	src := sourceVersion()
	s.owned()
	s.repo.On("GetHead", s.ctx, testSpaceID, int64(5)).Return(&models.EntityHead{ID: 5}, nil).Once()
	s.repo.On("GetVersion", s.ctx, int64(5), int64(7)).Return(src, nil).Once()

	var captured models.VersionDraft
	s.repo.On("InsertNextVersion", s.ctx, int64(5), mock.AnythingOfType("models.VersionDraft")).
		Run(func(args mock.Arguments) { captured = args.Get(2).(models.VersionDraft) }).
		Return(&models.Version{ID: 8, VersionNumber: 3, Label: strPtr("x")}, nil).Once()

	v, err := s.svc.CloneVersion(s.ctx, testUserID, testSpaceID, 5, models.CloneVersionInput{
		FromVersionID: 7,
		Label:         strPtr("x"),
	})
	s.Require().NoError(err)
	s.Equal(3, v.VersionNumber)

	s.Equal("x", *captured.Label)
	s.Equal(src.Fields, captured.Fields)
	s.Equal(src.Attributes, captured.Attributes)
	s.Equal(src.BasePrompt, captured.BasePrompt)
	s.Equal(src.NegativePrompt, captured.NegativePrompt)
	s.Equal(src.BaseSeed, captured.BaseSeed)
	s.Require().NotNil(captured.ClonedFromVersionID)
	s.Equal(int64(7), *captured.ClonedFromVersionID)

	// The clone must not alias the source attribute maps.
	captured.Attributes["hair"]["hair_color"] = attributes.TextValue("black")
	s.Equal("copper", src.Attributes["hair"]["hair_color"].Text)
}

func (s *EntityServiceSuite) TestCloneVersion_OverridesAndDefaultLabel() {
	src := sourceVersion()
	s.owned()
	s.repo.On("GetHead", s.ctx, testSpaceID, int64(5)).Return(&models.EntityHead{ID: 5}, nil).Once()
	s.repo.On("GetVersion", s.ctx, int64(5), int64(7)).Return(src, nil).Once()
	s.repo.On("InsertNextVersion", s.ctx, int64(5), mock.MatchedBy(func(d models.VersionDraft) bool {
		return d.Label == nil &&
			*d.Fields["physicalDescription"] == "short" &&
			*d.Fields["identitySummary"] == "A clockwork inventor" &&
			*d.NegativePrompt == "grainy" &&
			*d.BasePrompt == "always smiling"
	})).Return(&models.Version{ID: 8, VersionNumber: 3, Label: strPtr("v3")}, nil).Once()

	v, err := s.svc.CloneVersion(s.ctx, testUserID, testSpaceID, 5, models.CloneVersionInput{
		FromVersionID: 7,
		Label:         strPtr("   "),
		Fields: map[string]models.Optional[string]{
			"physicalDescription": models.Present(strPtr("short")),
			"identitySummary":     {},
		},
		NegativePrompt: models.Present(strPtr("grainy")),
	})
	s.Require().NoError(err)
	s.Equal("v3", *v.Label)
}

func (s *EntityServiceSuite) TestCloneVersion_NullOverrideClears() {
	src := sourceVersion()
	s.owned()
	s.repo.On("GetHead", s.ctx, testSpaceID, int64(5)).Return(&models.EntityHead{ID: 5}, nil).Once()
	s.repo.On("GetVersion", s.ctx, int64(5), int64(7)).Return(src, nil).Once()

	var captured models.VersionDraft
	s.repo.On("InsertNextVersion", s.ctx, int64(5), mock.AnythingOfType("models.VersionDraft")).
		Run(func(args mock.Arguments) { captured = args.Get(2).(models.VersionDraft) }).
		Return(&models.Version{ID: 8, VersionNumber: 3}, nil).Once()

	_, err := s.svc.CloneVersion(s.ctx, testUserID, testSpaceID, 5, models.CloneVersionInput{
		FromVersionID: 7,
		Fields:        map[string]models.Optional[string]{"identitySummary": models.Present[string](nil)},
		BasePrompt:    models.Present[string](nil),
		BaseSeed:      models.Present[int64](nil),
	})
	s.Require().NoError(err)

	s.Nil(captured.Fields["identitySummary"])
	s.Equal(src.Fields["physicalDescription"], captured.Fields["physicalDescription"])
	s.Nil(captured.BasePrompt)
	s.Nil(captured.BaseSeed)
	s.Equal(src.NegativePrompt, captured.NegativePrompt)
}

func (s *EntityServiceSuite) TestCloneVersion_RetriesConflicts() {
	s.owned()
	s.repo.On("GetHead", s.ctx, testSpaceID, int64(5)).Return(&models.EntityHead{ID: 5}, nil).Once()
	s.repo.On("GetVersion", s.ctx, int64(5), int64(7)).Return(sourceVersion(), nil).Once()
	s.repo.On("InsertNextVersion", s.ctx, int64(5), mock.Anything).Return(nil, models.ErrVersionConflict).Twice()
	s.repo.On("InsertNextVersion", s.ctx, int64(5), mock.Anything).Return(&models.Version{ID: 9, VersionNumber: 4}, nil).Once()

	v, err := s.svc.CloneVersion(s.ctx, testUserID, testSpaceID, 5, models.CloneVersionInput{FromVersionID: 7})
	s.Require().NoError(err)
	s.Equal(4, v.VersionNumber)
}

func (s *EntityServiceSuite) TestCloneVersion_GivesUpAfterRepeatedConflicts() {
	s.owned()
	s.repo.On("GetHead", s.ctx, testSpaceID, int64(5)).Return(&models.EntityHead{ID: 5}, nil).Once()
	s.repo.On("GetVersion", s.ctx, int64(5), int64(7)).Return(sourceVersion(), nil).Once()
	s.repo.On("InsertNextVersion", s.ctx, int64(5), mock.Anything).Return(nil, models.ErrVersionConflict).Times(3)

	_, err := s.svc.CloneVersion(s.ctx, testUserID, testSpaceID, 5, models.CloneVersionInput{FromVersionID: 7})
	s.ErrorIs(err, models.ErrVersionConflict)
}

func (s *EntityServiceSuite) TestCloneVersion_SourceFromAnotherEntity() {
	s.owned()
	s.repo.On("GetHead", s.ctx, testSpaceID, int64(5)).Return(&models.EntityHead{ID: 5}, nil).Once()
	s.repo.On("GetVersion", s.ctx, int64(5), int64(70)).Return(nil, models.ErrNotFound).Once()

	_, err := s.svc.CloneVersion(s.ctx, testUserID, testSpaceID, 5, models.CloneVersionInput{FromVersionID: 70})
	s.Require().ErrorIs(err, models.ErrCharacterVersionNotFound)
	s.Equal("CHARACTER_VERSION_NOT_FOUND", models.ErrorCode(err))
}

func (s *EntityServiceSuite) TestCloneVersion_EntityNotFound() {
	s.owned()
	s.repo.On("GetHead", s.ctx, testSpaceID, int64(5)).Return(nil, models.ErrNotFound).Once()

	_, err := s.svc.CloneVersion(s.ctx, testUserID, testSpaceID, 5, models.CloneVersionInput{FromVersionID: 7})
	s.Require().ErrorIs(err, models.ErrCharacterNotFound)
	s.Equal("CHARACTER_NOT_FOUND", models.ErrorCode(err))
}

func (s *EntityServiceSuite) TestUpdate_EditLock() {
	s.owned()
	s.repo.On("GetHead", s.ctx, testSpaceID, int64(5)).Return(&models.EntityHead{ID: 5, Name: "Ada"}, nil).Once()
	s.repo.On("LatestVersion", s.ctx, int64(5)).Return(sourceVersion(), nil).Once()
	s.repo.On("VersionHasImages", s.ctx, int64(7)).Return(true, nil).Once()

	_, err := s.svc.Update(s.ctx, testUserID, testSpaceID, 5, models.UpdateEntityInput{Name: strPtr("Bea")})
	s.Require().ErrorIs(err, models.ErrCharacterHasGeneratedImages)
	s.Equal("CHARACTER_HAS_GENERATED_IMAGES", models.ErrorCode(err))
}

func (s *EntityServiceSuite) TestUpdate_PatchSemantics() {
	s.owned()
	s.repo.On("GetHead", s.ctx, testSpaceID, int64(5)).
		Return(&models.EntityHead{ID: 5, Name: "Ada", Description: strPtr("old")}, nil).Once()
	s.repo.On("LatestVersion", s.ctx, int64(5)).Return(sourceVersion(), nil).Once()
	s.repo.On("VersionHasImages", s.ctx, int64(7)).Return(false, nil).Once()
	s.repo.On("Update", s.ctx, mock.MatchedBy(func(u repository.EntityUpdate) bool {
		tags := u.Attributes["wardrobe"]["signature_items"].Tags
		return u.EntityID == 5 && u.Name == "Ada" && u.Description == nil &&
			u.VersionID == 7 && assert.ObjectsAreEqual([]string{"pin", "ribbon"}, tags)
	})).Return(&models.EntityHead{ID: 5, Name: "Ada"}, nil).Once()

	summary, err := s.svc.Update(s.ctx, testUserID, testSpaceID, 5, models.UpdateEntityInput{
		Name:        strPtr("   "),
		Description: strPtr("  "),
		Attributes: attributes.Values{
			"wardrobe": {"signature_items": attributes.TextValue("pin, ribbon, pin")},
		},
	})
	s.Require().NoError(err)
	s.Equal("Ada", summary.Name)
	s.Require().NotNil(summary.LatestVersion)
	s.Equal(int64(7), summary.LatestVersion.ID)
}

func (s *EntityServiceSuite) TestUpdate_AbsentFieldsKeepExisting() {
	s.owned()
	s.repo.On("GetHead", s.ctx, testSpaceID, int64(5)).
		Return(&models.EntityHead{ID: 5, Name: "Ada", Description: strPtr("old")}, nil).Once()
	s.repo.On("LatestVersion", s.ctx, int64(5)).Return(sourceVersion(), nil).Once()
	s.repo.On("VersionHasImages", s.ctx, int64(7)).Return(false, nil).Once()
	s.repo.On("Update", s.ctx, mock.MatchedBy(func(u repository.EntityUpdate) bool {
		return u.Name == "Bea" && u.Description != nil && *u.Description == "old" && u.Attributes == nil
	})).Return(&models.EntityHead{ID: 5, Name: "Bea", Description: strPtr("old")}, nil).Once()

	_, err := s.svc.Update(s.ctx, testUserID, testSpaceID, 5, models.UpdateEntityInput{Name: strPtr(" Bea ")})
	s.NoError(err)
}

func (s *EntityServiceSuite) TestGetWithVersions() {
	s.owned()
	s.repo.On("GetHead", s.ctx, testSpaceID, int64(5)).Return(&models.EntityHead{ID: 5, Name: "Ada"}, nil).Once()
	s.repo.On("ListVersions", s.ctx, int64(5)).Return([]models.Version{{ID: 1, VersionNumber: 1}, {ID: 2, VersionNumber: 2}}, nil).Once()

	e, err := s.svc.GetWithVersions(s.ctx, testUserID, testSpaceID, 5)
	s.Require().NoError(err)
	s.Equal("Ada", e.Name)
	s.Len(e.Versions, 2)
}

func TestEntityServiceSuite(t *testing.T) {
	suite.Run(t, new(EntityServiceSuite))
}

func TestEntityService_KindErrors(t *testing.T) {
	ctx := context.Background()
	for _, kind := range models.Kinds {
		t.Run(kind.Name, func(t *testing.T) {
			spaces := new(mocks.SpaceRepository)
			spaces.On("IsOwnedBy", ctx, testSpaceID, testUserID).Return(true, nil).Once()
			repo := mocks.NewEntityRepository(kind)
			repo.On("GetHead", ctx, testSpaceID, int64(5)).Return(nil, models.ErrNotFound).Once()
			svc := service.NewEntityService(repo, service.NewSpaceService(spaces, zap.NewNop()), zap.NewNop())

			_, err := svc.GetWithVersions(ctx, testUserID, testSpaceID, 5)
			require.ErrorIs(t, err, kind.ErrNotFound)
			assert.True(t, errors.Is(err, models.ErrEntityNotFound))
		})
	}
}
