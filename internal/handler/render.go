package handler

import (
	"time"

	"graphics-server/internal/attributes"
	"graphics-server/internal/models"

	"github.com/gin-gonic/gin"
)

// versionJSON renders a version with the kind's own field and attribute names.
func versionJSON(kind *models.EntityKind, v *models.Version) gin.H {
	out := gin.H{
		"id":                  v.ID,
		kind.Name + "Id":      v.EntityID,
		"versionNumber":       v.VersionNumber,
		"label":               v.Label,
		"basePrompt":          v.BasePrompt,
		"negativePrompt":      v.NegativePrompt,
		"baseSeed":            v.BaseSeed,
		"clonedFromVersionId": v.ClonedFromVersionID,
		"createdAt":           v.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	for _, f := range kind.Fields {
		out[f.Key] = v.Fields[f.Key]
	}
	attrs := v.Attributes
	if attrs == nil {
		attrs = attributes.Values{}
	}
	out[kind.AttributesKey] = attrs
	return out
}

func entityJSON(kind *models.EntityKind, e *models.EntityWithVersions) gin.H {
	versions := make([]gin.H, 0, len(e.Versions))
	for i := range e.Versions {
		versions = append(versions, versionJSON(kind, &e.Versions[i]))
	}
	return gin.H{
		"id":          e.ID,
		"spaceId":     e.SpaceID,
		"name":        e.Name,
		"description": e.Description,
		"createdAt":   e.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updatedAt":   e.UpdatedAt.UTC().Format(time.RFC3339Nano),
		"versions":    versions,
	}
}
