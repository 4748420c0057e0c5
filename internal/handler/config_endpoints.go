package handler

import (
	"net/http"

	"graphics-server/internal/attributes"

	"github.com/gin-gonic/gin"
)

func (h *Handler) characterAppearanceConfig(c *gin.Context) {
	c.JSON(http.StatusOK, attributes.CharacterAppearance().Sorted())
}

func (h *Handler) styleDefinitionConfig(c *gin.Context) {
	c.JSON(http.StatusOK, attributes.StyleDefinition().Sorted())
}
