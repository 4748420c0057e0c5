package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"graphics-server/pkg/authutils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserIDKey is the gin context key holding the authenticated user id (int64).
const UserIDKey = "user_id"

// TokenVerifier is satisfied by *authutils.JWTVerifier.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, tokenString string) (*authutils.Claims, error)
}

type authErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// GinAuth rejects requests without a valid bearer token and stores the user id under UserIDKey.
func GinAuth(verifier TokenVerifier, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, authErrorBody{Error: "UNAUTHENTICATED", Message: "Authorization header missing or malformed"})
			return
		}

		claims, err := verifier.VerifyToken(c.Request.Context(), tokenString)
		if err != nil {
			msg := "Token is invalid"
			if errors.Is(err, authutils.ErrTokenExpired) {
				msg = "Token has expired"
			}
			log.Debug("Rejected request token", zap.String("path", c.Request.URL.Path), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, authErrorBody{Error: "UNAUTHENTICATED", Message: msg})
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Next()
	}
}

// UserID returns the id stored by GinAuth.
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id > 0
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}
