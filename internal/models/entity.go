package models

import (
	"time"

	"graphics-server/internal/attributes"
)

// EntityHead is the mutable head record of a versioned entity.
type EntityHead struct {
	ID          int64
	SpaceID     int64
	Name        string
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// VersionRef is the projection of a version used in summaries.
type VersionRef struct {
	ID            int64   `json:"id"`
	VersionNumber int     `json:"versionNumber"`
	Label         *string `json:"label"`
}

// EntitySummary is one row of an entity listing.
type EntitySummary struct {
	ID            int64       `json:"id"`
	Name          string      `json:"name"`
	Description   *string     `json:"description"`
	LatestVersion *VersionRef `json:"latestVersion,omitempty"`
}

// Version is a snapshot of an entity's descriptive fields.
type Version struct {
	ID                  int64
	EntityID            int64
	VersionNumber       int
	Label               *string
	Fields              map[string]*string // keyed by TextField.Key
	Attributes          attributes.Values  // stored (serialized) form
	BasePrompt          *string
	NegativePrompt      *string
	BaseSeed            *int64
	ClonedFromVersionID *int64
	CreatedAt           time.Time
}

// Field returns the value of a free-text field, or "" when unset.
func (v *Version) Field(key string) string {
	if v == nil || v.Fields == nil {
		return ""
	}
	if p := v.Fields[key]; p != nil {
		return *p
	}
	return ""
}

// Ref projects v for summaries.
func (v *Version) Ref() *VersionRef {
	return &VersionRef{ID: v.ID, VersionNumber: v.VersionNumber, Label: v.Label}
}

// EntityWithVersions is a head with its full history, oldest first.
type EntityWithVersions struct {
	EntityHead
	Versions []Version
}

// VersionDraft holds the column values of a version about to be inserted.
type VersionDraft struct {
	Label               *string
	Fields              map[string]*string
	Attributes          attributes.Values
	BasePrompt          *string
	NegativePrompt      *string
	BaseSeed            *int64
	ClonedFromVersionID *int64
}

// CreateEntityInput creates a head and its first version.
type CreateEntityInput struct {
	Name           string
	Description    *string
	Fields         map[string]*string
	Attributes     attributes.Values // raw client input; nil means none
	BasePrompt     *string
	NegativePrompt *string
	BaseSeed       *int64
}

// UpdateEntityInput patches a head and the latest version's attributes.
// Nil fields are left untouched.
type UpdateEntityInput struct {
	Name        *string
	Description *string
	Attributes  attributes.Values
}

// CloneVersionInput clones FromVersionID. Overrides that are not Set keep
// the source value; a Set override with a nil Value clears it.
type CloneVersionInput struct {
	FromVersionID  int64
	Label          *string
	Fields         map[string]Optional[string]
	BasePrompt     Optional[string]
	NegativePrompt Optional[string]
	BaseSeed       Optional[int64]
}
