package models

import (
	"errors"
	"fmt"
)

// Repository-level errors.
var (
	ErrNotFound        = errors.New("not found")
	ErrVersionConflict = errors.New("version number already taken")
)

// Domain errors. Handlers translate these into stable error codes.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNameRequired       = fmt.Errorf("%w: name is required", ErrInvalidInput)
	ErrSpaceNotFound      = errors.New("space not found or not owned by user")
	ErrEntityNotFound     = errors.New("entity not found")
	ErrVersionNotFound    = errors.New("version not found")
	ErrHasGeneratedImages = errors.New("latest version has generated images")

	ErrCharacterNotFound = fmt.Errorf("character: %w", ErrEntityNotFound)
	ErrStyleNotFound     = fmt.Errorf("style: %w", ErrEntityNotFound)
	ErrSceneNotFound     = fmt.Errorf("scene: %w", ErrEntityNotFound)

	ErrCharacterVersionNotFound = fmt.Errorf("character: %w", ErrVersionNotFound)
	ErrStyleVersionNotFound     = fmt.Errorf("style: %w", ErrVersionNotFound)
	ErrSceneVersionNotFound     = fmt.Errorf("scene: %w", ErrVersionNotFound)

	ErrCharacterHasGeneratedImages = fmt.Errorf("character: %w", ErrHasGeneratedImages)
	ErrStyleHasGeneratedImages     = fmt.Errorf("style: %w", ErrHasGeneratedImages)
	ErrSceneHasGeneratedImages     = fmt.Errorf("scene: %w", ErrHasGeneratedImages)
)

// Generation errors.
var (
	ErrImageGenerationFailed = errors.New("image generation failed")
	ErrGeminiNotConfigured   = fmt.Errorf("%w: gemini api key is not configured", ErrImageGenerationFailed)
	ErrImageBytesMissing     = fmt.Errorf("%w: model returned no image bytes", ErrImageGenerationFailed)
	ErrPromptEmpty           = fmt.Errorf("%w: prompt is empty", ErrImageGenerationFailed)
	ErrStorageNotConfigured  = errors.New("object storage is not configured")
)

// Error codes returned in API error bodies.
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeBadRequest      = "INVALID_REQUEST_BODY"
	ErrCodeUnauthenticated = "UNAUTHENTICATED"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeNameRequired    = "NAME_REQUIRED"
	ErrCodeSpaceNotFound   = "SPACE_NOT_FOUND_OR_FORBIDDEN"
	ErrCodeEntityNotFound  = "ENTITY_NOT_FOUND"
	ErrCodeVersionNotFound = "VERSION_NOT_FOUND"
	ErrCodeHasImages       = "ENTITY_HAS_GENERATED_IMAGES"
	ErrCodeImageNotFound   = "IMAGE_NOT_FOUND"

	ErrCodeImageGenerationFailed = "IMAGE_GENERATION_FAILED"
	ErrCodeGeminiNotConfigured   = "GEMINI_NOT_CONFIGURED"
	ErrCodeImageBytesMissing     = "IMAGE_BYTES_MISSING"
	ErrCodePromptEmpty           = "PROMPT_EMPTY"
	ErrCodeStorageNotConfigured  = "STORAGE_NOT_CONFIGURED"
)

// errorCodes is checked in order, so specific errors come before the generic ones they wrap.
var errorCodes = []struct {
	err  error
	code string
}{
	{ErrSpaceNotFound, ErrCodeSpaceNotFound},
	{ErrCharacterNotFound, "CHARACTER_NOT_FOUND"},
	{ErrStyleNotFound, "STYLE_NOT_FOUND"},
	{ErrSceneNotFound, "SCENE_NOT_FOUND"},
	{ErrEntityNotFound, ErrCodeEntityNotFound},
	{ErrCharacterVersionNotFound, "CHARACTER_VERSION_NOT_FOUND"},
	{ErrStyleVersionNotFound, "STYLE_VERSION_NOT_FOUND"},
	{ErrSceneVersionNotFound, "SCENE_VERSION_NOT_FOUND"},
	{ErrVersionNotFound, ErrCodeVersionNotFound},
	{ErrCharacterHasGeneratedImages, "CHARACTER_HAS_GENERATED_IMAGES"},
	{ErrStyleHasGeneratedImages, "STYLE_HAS_GENERATED_IMAGES"},
	{ErrSceneHasGeneratedImages, "SCENE_HAS_GENERATED_IMAGES"},
	{ErrHasGeneratedImages, ErrCodeHasImages},
	{ErrGeminiNotConfigured, ErrCodeGeminiNotConfigured},
	{ErrImageBytesMissing, ErrCodeImageBytesMissing},
	{ErrPromptEmpty, ErrCodePromptEmpty},
	{ErrImageGenerationFailed, ErrCodeImageGenerationFailed},
	{ErrStorageNotConfigured, ErrCodeStorageNotConfigured},
	{ErrNameRequired, ErrCodeNameRequired},
	{ErrInvalidInput, ErrCodeBadRequest},
}

// ErrorCode returns the most specific API code for err, or ErrCodeInternal.
func ErrorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return ErrCodeInternal
}

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
