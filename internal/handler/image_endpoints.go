package handler

import (
	"net/http"

	"graphics-server/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) generateImage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req generateImageRequest
	if !bindJSON(c, &req, map[string]string{
		"spaceId":            codeInvalidSpaceID,
		"characterVersionId": codeInvalidCharacterVersionID,
		"styleVersionId":     codeInvalidStyleVersionID,
		"sceneVersionId":     codeInvalidSceneVersionID,
	}) {
		return
	}

	in := models.GenerateImageInput{
		UserID:             userID,
		SpaceID:            *req.SpaceID,
		CharacterVersionID: *req.CharacterVersionID,
		StyleVersionID:     *req.StyleVersionID,
		SceneVersionID:     req.SceneVersionID,
		Seed:               req.Seed,
		AspectRatio:        req.AspectRatio,
		Resolution:         req.Resolution,
	}
	image, err := h.images.Generate(c.Request.Context(), in)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"image": image})
}

func (h *Handler) listImages(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	spaceID, ok := pathID(c, "spaceId", codeInvalidSpaceID)
	if !ok {
		return
	}
	images, err := h.images.List(c.Request.Context(), userID, spaceID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"images": images})
}

func (h *Handler) deleteImage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	spaceID, ok := pathID(c, "spaceId", codeInvalidSpaceID)
	if !ok {
		return
	}
	imageID, ok := pathID(c, "imageId", codeInvalidImageID)
	if !ok {
		return
	}
	deleted, err := h.images.Delete(c.Request.Context(), userID, spaceID, imageID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if !deleted {
		abortWithCode(c, http.StatusNotFound, models.ErrCodeImageNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}
