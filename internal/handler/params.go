package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"graphics-server/internal/models"
	"graphics-server/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	codeInvalidSpaceID            = "INVALID_SPACE_ID"
	codeInvalidImageID            = "INVALID_IMAGE_ID"
	codeInvalidFromVersionID      = "INVALID_FROM_VERSION_ID"
	codeInvalidCharacterVersionID = "INVALID_CHARACTER_VERSION_ID"
	codeInvalidStyleVersionID     = "INVALID_STYLE_VERSION_ID"
	codeInvalidSceneVersionID     = "INVALID_SCENE_VERSION_ID"
)

// invalidIDCode returns INVALID_{KIND}_ID.
func invalidIDCode(kind *models.EntityKind) string {
	return "INVALID_" + strings.ToUpper(kind.Name) + "_ID"
}

func currentUser(c *gin.Context) (int64, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		abortWithCode(c, http.StatusUnauthorized, models.ErrCodeUnauthenticated)
	}
	return userID, ok
}

// pathID parses a positive id path parameter, aborting with code on failure.
func pathID(c *gin.Context, param, code string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		abortWithCode(c, http.StatusBadRequest, code)
		return 0, false
	}
	return id, true
}

// bindJSON binds the request body into req with gin's JSON binding. An empty
// body binds as an empty object. A failure on a member listed in codes aborts
// with that code, any other failure with INVALID_REQUEST_BODY. The body is
// cached, so several requests can be bound from one body.
func bindJSON(c *gin.Context, req any, codes map[string]string) bool {
	err := c.ShouldBindBodyWith(req, binding.JSON)
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(req)
	}
	if err == nil {
		return true
	}
	if code, ok := codes[failedMember(err)]; ok {
		abortWithCode(c, http.StatusBadRequest, code)
		return false
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   models.ErrCodeBadRequest,
		Message: "Invalid request body: " + err.Error(),
	})
	return false
}

// failedMember returns the JSON name of the first member that failed to
// decode or validate, or "" when the error is not tied to one member.
func failedMember(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return typeErr.Field
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		return validationErrs[0].Field()
	}
	return ""
}

var registerFieldNames sync.Once

// useJSONFieldNames makes validation errors report JSON member names.
func useJSONFieldNames() {
	registerFieldNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
}
