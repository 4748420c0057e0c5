package handler

import (
	"bytes"

	"graphics-server/internal/attributes"
	"graphics-server/internal/models"
)

type createSpaceRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// entityRequest carries the members every entity kind shares. Kind-specific
// members are bound separately into a kindBody.
type entityRequest struct {
	Name           *string                 `json:"name"`
	Description    models.Optional[string] `json:"description"`
	Label          *string                 `json:"label"`
	BasePrompt     models.Optional[string] `json:"basePrompt"`
	NegativePrompt models.Optional[string] `json:"negativePrompt"`
	BaseSeed       models.Optional[int64]  `json:"baseSeed"`
}

type cloneVersionRequest struct {
	FromVersionID *int64 `json:"fromVersionId" binding:"required,gt=0"`
}

type generateImageRequest struct {
	SpaceID            *int64   `json:"spaceId" binding:"required,gt=0"`
	CharacterVersionID *int64   `json:"characterVersionId" binding:"required,gt=0"`
	StyleVersionID     *int64   `json:"styleVersionId" binding:"required,gt=0"`
	SceneVersionID     *int64   `json:"sceneVersionId" binding:"omitempty,gt=0"`
	Seed               *float64 `json:"seed"`
	AspectRatio        *string  `json:"aspectRatio"`
	Resolution         *string  `json:"resolution"`
}

// attributeBlob holds decoded attribute values. Anything other than a JSON
// object leaves it empty.
type attributeBlob struct {
	values attributes.Values
}

func (b *attributeBlob) UnmarshalJSON(data []byte) error {
	b.values = nil
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil
	}
	vs, err := attributes.Decode(data)
	if err != nil {
		return err
	}
	b.values = vs
	return nil
}

// kindBody is the kind-specific part of an entity request.
type kindBody interface {
	fields() map[string]models.Optional[string]
	attributeValues() attributes.Values
}

type characterBody struct {
	IdentitySummary       models.Optional[string] `json:"identitySummary"`
	PhysicalDescription   models.Optional[string] `json:"physicalDescription"`
	WardrobeDescription   models.Optional[string] `json:"wardrobeDescription"`
	PersonalityMannerisms models.Optional[string] `json:"personalityMannerisms"`
	ExtraNotes            models.Optional[string] `json:"extraNotes"`
	Appearance            attributeBlob           `json:"appearance"`
}

func (b *characterBody) fields() map[string]models.Optional[string] {
	return map[string]models.Optional[string]{
		"identitySummary":       b.IdentitySummary,
		"physicalDescription":   b.PhysicalDescription,
		"wardrobeDescription":   b.WardrobeDescription,
		"personalityMannerisms": b.PersonalityMannerisms,
		"extraNotes":            b.ExtraNotes,
	}
}

func (b *characterBody) attributeValues() attributes.Values { return b.Appearance.values }

type styleBody struct {
	ArtStyle        models.Optional[string] `json:"artStyle"`
	ColorPalette    models.Optional[string] `json:"colorPalette"`
	Lighting        models.Optional[string] `json:"lighting"`
	Camera          models.Optional[string] `json:"camera"`
	RenderTechnique models.Optional[string] `json:"renderTechnique"`
	StyleDefinition attributeBlob           `json:"styleDefinition"`
}

func (b *styleBody) fields() map[string]models.Optional[string] {
	return map[string]models.Optional[string]{
		"artStyle":        b.ArtStyle,
		"colorPalette":    b.ColorPalette,
		"lighting":        b.Lighting,
		"camera":          b.Camera,
		"renderTechnique": b.RenderTechnique,
	}
}

func (b *styleBody) attributeValues() attributes.Values { return b.StyleDefinition.values }

type sceneBody struct {
	EnvironmentDescription models.Optional[string] `json:"environmentDescription"`
	LayoutDescription      models.Optional[string] `json:"layoutDescription"`
	TimeOfDay              models.Optional[string] `json:"timeOfDay"`
	Mood                   models.Optional[string] `json:"mood"`
	Attributes             attributeBlob           `json:"attributes"`
}

func (b *sceneBody) fields() map[string]models.Optional[string] {
	return map[string]models.Optional[string]{
		"environmentDescription": b.EnvironmentDescription,
		"layoutDescription":      b.LayoutDescription,
		"timeOfDay":              b.TimeOfDay,
		"mood":                   b.Mood,
	}
}

func (b *sceneBody) attributeValues() attributes.Values { return b.Attributes.values }

var kindBodies = map[string]func() kindBody{
	models.CharacterKind.Name: func() kindBody { return new(characterBody) },
	models.StyleKind.Name:     func() kindBody { return new(styleBody) },
	models.SceneKind.Name:     func() kindBody { return new(sceneBody) },
}

// values flattens present overrides for create, where null and absent are the same.
func values(fields map[string]models.Optional[string]) map[string]*string {
	out := make(map[string]*string, len(fields))
	for k, f := range fields {
		out[k] = f.Value
	}
	return out
}

// clearable maps a present null to an empty string, which the services store as null.
func clearable(o models.Optional[string]) *string {
	if o.Set && o.Value == nil {
		empty := ""
		return &empty
	}
	return o.Value
}
