package models

import "graphics-server/internal/attributes"

// TextField is a free-text version column.
type TextField struct {
	Key    string // JSON name
	Column string
	Label  string // prompt label
}

// EntityKind describes one versioned entity type. A single repository and
// service implementation is parameterized by these descriptors.
type EntityKind struct {
	Name   string // singular, lower case
	Plural string // route segment

	EntityTable      string
	VersionTable     string
	ParentColumn     string // version → head FK column
	ImageColumn      string // images → version FK column
	AttributesColumn string
	AttributesKey    string // JSON name of the attribute blob

	Fields []TextField

	Schema           *attributes.Schema // nil when the kind has no attribute schema
	PromptCategories []string           // nil renders every category
	PromptHeading    string
	FallbackLabel    string // empty disables the name/description fallback line

	ErrNotFound        error
	ErrVersionNotFound error
	ErrHasImages       error
}

// FieldKeys returns the JSON names of the free-text fields in order.
func (k *EntityKind) FieldKeys() []string {
	keys := make([]string, len(k.Fields))
	for i, f := range k.Fields {
		keys[i] = f.Key
	}
	return keys
}

var CharacterKind = &EntityKind{
	Name:             "character",
	Plural:           "characters",
	EntityTable:      "characters",
	VersionTable:     "character_versions",
	ParentColumn:     "character_id",
	ImageColumn:      "character_version_id",
	AttributesColumn: "appearance_json",
	AttributesKey:    "appearance",
	Fields: []TextField{
		{Key: "identitySummary", Column: "identity_summary", Label: "Character identity"},
		{Key: "physicalDescription", Column: "physical_description", Label: "Physical description"},
		{Key: "wardrobeDescription", Column: "wardrobe_description", Label: "Wardrobe"},
		{Key: "personalityMannerisms", Column: "personality_mannerisms", Label: "Personality and mannerisms"},
		{Key: "extraNotes", Column: "extra_notes", Label: "Additional character notes"},
	},
	Schema:             attributes.CharacterAppearance(),
	PromptCategories:   attributes.CharacterPromptCategories,
	PromptHeading:      "Character",
	FallbackLabel:      "Character",
	ErrNotFound:        ErrCharacterNotFound,
	ErrVersionNotFound: ErrCharacterVersionNotFound,
	ErrHasImages:       ErrCharacterHasGeneratedImages,
}

var StyleKind = &EntityKind{
	Name:             "style",
	Plural:           "styles",
	EntityTable:      "styles",
	VersionTable:     "style_versions",
	ParentColumn:     "style_id",
	ImageColumn:      "style_version_id",
	AttributesColumn: "style_definition_json",
	AttributesKey:    "styleDefinition",
	Fields: []TextField{
		{Key: "artStyle", Column: "art_style", Label: "Art style"},
		{Key: "colorPalette", Column: "color_palette", Label: "Color palette"},
		{Key: "lighting", Column: "lighting", Label: "Lighting"},
		{Key: "camera", Column: "camera", Label: "Camera"},
		{Key: "renderTechnique", Column: "render_technique", Label: "Rendering"},
	},
	Schema:             attributes.StyleDefinition(),
	PromptHeading:      "Art Style",
	FallbackLabel:      "Style",
	ErrNotFound:        ErrStyleNotFound,
	ErrVersionNotFound: ErrStyleVersionNotFound,
	ErrHasImages:       ErrStyleHasGeneratedImages,
}

var SceneKind = &EntityKind{
	Name:             "scene",
	Plural:           "scenes",
	EntityTable:      "scenes",
	VersionTable:     "scene_versions",
	ParentColumn:     "scene_id",
	ImageColumn:      "scene_version_id",
	AttributesColumn: "attributes_json",
	AttributesKey:    "attributes",
	Fields: []TextField{
		{Key: "environmentDescription", Column: "environment_description", Label: "Scene environment"},
		{Key: "layoutDescription", Column: "layout_description", Label: "Scene layout"},
		{Key: "timeOfDay", Column: "time_of_day", Label: "Time of day"},
		{Key: "mood", Column: "mood", Label: "Scene mood"},
	},
	PromptHeading:      "Scene",
	ErrNotFound:        ErrSceneNotFound,
	ErrVersionNotFound: ErrSceneVersionNotFound,
	ErrHasImages:       ErrSceneHasGeneratedImages,
}

// Kinds lists every entity kind.
var Kinds = []*EntityKind{CharacterKind, StyleKind, SceneKind}
