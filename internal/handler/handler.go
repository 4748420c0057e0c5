// Package handler exposes the HTTP API over gin.
package handler

import (
	"net/http"

	"graphics-server/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves the /api routes.
type Handler struct {
	spaces   service.SpaceService
	entities []service.EntityService
	images   service.ImageService
	logger   *zap.Logger
}

func NewHandler(spaces service.SpaceService, images service.ImageService, logger *zap.Logger, entities ...service.EntityService) *Handler {
	useJSONFieldNames()
	return &Handler{
		spaces:   spaces,
		entities: entities,
		images:   images,
		logger:   logger.Named("Handler"),
	}
}

// RegisterRoutes mounts the API. auth guards every route except the schema
// config; generateLimit runs after auth so it can key on the user.
func (h *Handler) RegisterRoutes(router *gin.Engine, auth gin.HandlerFunc, generateLimit gin.HandlerFunc) {
	api := router.Group("/api")
	api.GET("/character-appearance-config", h.characterAppearanceConfig)
	api.GET("/style-definition-config", h.styleDefinitionConfig)

	protected := api.Group("")
	protected.Use(auth)
	{
		protected.GET("/spaces", h.listSpaces)
		protected.POST("/spaces", h.createSpace)
		protected.DELETE("/spaces/:spaceId", h.deleteSpace)

		protected.GET("/spaces/:spaceId/images", h.listImages)
		protected.DELETE("/spaces/:spaceId/images/:imageId", h.deleteImage)

		for _, svc := range h.entities {
			kind := svc.Kind()
			newBody, ok := kindBodies[kind.Name]
			if !ok {
				panic("handler: no request body for entity kind " + kind.Name)
			}
			e := &entityEndpoints{svc: svc, kind: kind, newBody: newBody}
			group := protected.Group("/spaces/:spaceId/" + e.kind.Plural)
			group.GET("", e.list)
			group.POST("", e.create)
			group.PATCH("/:entityId", e.update)
			group.GET("/:entityId/versions", e.getWithVersions)
			group.POST("/:entityId/versions", e.cloneVersion)
		}

		if generateLimit != nil {
			protected.POST("/images/generate", generateLimit, h.generateImage)
		} else {
			protected.POST("/images/generate", h.generateImage)
		}
	}
}

// Health answers liveness probes.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "graphics-server"})
}
