package handler

import (
	"net/http"

	"graphics-server/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listSpaces(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	spaces, err := h.spaces.List(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if spaces == nil {
		spaces = []models.Space{}
	}
	c.JSON(http.StatusOK, gin.H{"spaces": spaces})
}

func (h *Handler) createSpace(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req createSpaceRequest
	if !bindJSON(c, &req, nil) {
		return
	}
	var name string
	if req.Name != nil {
		name = *req.Name
	}

	space, err := h.spaces.Create(c.Request.Context(), userID, name, req.Description)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"space": space})
}

func (h *Handler) deleteSpace(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	spaceID, ok := pathID(c, "spaceId", codeInvalidSpaceID)
	if !ok {
		return
	}
	if err := h.spaces.Delete(c.Request.Context(), userID, spaceID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
