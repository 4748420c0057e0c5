package models

import "time"

// Image is a generated image row.
type Image struct {
	ID                 int64      `db:"id"`
	SpaceID            int64      `db:"space_id"`
	CharacterVersionID int64      `db:"character_version_id"`
	StyleVersionID     int64      `db:"style_version_id"`
	SceneVersionID     *int64     `db:"scene_version_id"`
	Seed               int32      `db:"seed"`
	Prompt             string     `db:"prompt"`
	NegativePrompt     *string    `db:"negative_prompt"`
	ModelName          string     `db:"model_name"`
	AspectRatio        *string    `db:"aspect_ratio"`
	Resolution         *string    `db:"resolution"`
	StorageKey         string     `db:"storage_key"`
	CreatedAt          time.Time  `db:"created_at"`
	DeletedAt          *time.Time `db:"deleted_at"`
}

// ImageSummary is the API view of an image. URLs are derived on every read.
type ImageSummary struct {
	ID                 int64     `json:"id"`
	SpaceID            int64     `json:"spaceId"`
	CharacterVersionID int64     `json:"characterVersionId"`
	StyleVersionID     int64     `json:"styleVersionId"`
	SceneVersionID     *int64    `json:"sceneVersionId"`
	Seed               int32     `json:"seed"`
	Prompt             string    `json:"prompt"`
	NegativePrompt     *string   `json:"negativePrompt"`
	ModelName          string    `json:"modelName"`
	AspectRatio        *string   `json:"aspectRatio,omitempty"`
	Resolution         *string   `json:"resolution,omitempty"`
	StorageKey         string    `json:"s3Key"`
	PublicURL          string    `json:"s3Url,omitempty"`
	SignedURL          string    `json:"cloudfrontUrl,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
}

// UsageAction is an audit event type.
type UsageAction string

const (
	UsageActionCreate UsageAction = "CREATE"
	UsageActionDelete UsageAction = "DELETE"
)

// ImageUsageEvent is an append-only audit record.
type ImageUsageEvent struct {
	UserID     int64
	SpaceID    int64
	ImageID    *int64
	Action     UsageAction
	ModelName  string
	Seed       *int32
	StorageKey *string
}

// GenerateImageInput is a generation request after HTTP validation.
type GenerateImageInput struct {
	UserID             int64
	SpaceID            int64
	CharacterVersionID int64
	StyleVersionID     int64
	SceneVersionID     *int64
	Seed               *float64
	AspectRatio        *string
	Resolution         *string
}
