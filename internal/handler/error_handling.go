package handler

import (
	"errors"
	"net/http"

	"graphics-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func abortWithCode(c *gin.Context, status int, code string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{Error: code})
}

func handleServiceError(c *gin.Context, err error) {
	code := models.ErrorCode(err)
	var statusCode int
	errResp := models.ErrorResponse{Error: code}

	switch {
	case errors.Is(err, models.ErrInvalidInput):
		statusCode = http.StatusBadRequest
	case errors.Is(err, models.ErrSpaceNotFound),
		errors.Is(err, models.ErrEntityNotFound),
		errors.Is(err, models.ErrVersionNotFound):
		statusCode = http.StatusNotFound
	case errors.Is(err, models.ErrHasGeneratedImages):
		statusCode = http.StatusConflict
	case errors.Is(err, models.ErrGeminiNotConfigured):
		statusCode = http.StatusServiceUnavailable
		errResp = models.ErrorResponse{Error: models.ErrCodeImageGenerationFailed, Message: code}
	case errors.Is(err, models.ErrImageGenerationFailed):
		statusCode = http.StatusBadGateway
		errResp = models.ErrorResponse{Error: models.ErrCodeImageGenerationFailed, Message: code}
		if code == models.ErrCodeImageGenerationFailed {
			errResp.Message = err.Error()
		}
	case errors.Is(err, models.ErrStorageNotConfigured):
		statusCode = http.StatusServiceUnavailable
	default:
		zap.L().Error("Unhandled internal error in handleServiceError", zap.String("path", c.Request.URL.Path), zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResp = models.ErrorResponse{Error: models.ErrCodeInternal, Message: "An unexpected internal error occurred"}
	}

	c.AbortWithStatusJSON(statusCode, errResp)
}
