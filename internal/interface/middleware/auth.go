package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"cryptofolio/internal/domain/repository"
	"cryptofolio/pkg/helpers"
	"cryptofolio/pkg/response"
)

// Auth validates the bearer session token and resolves the caller.
// It sets userID in the Gin context on success. Expired and forged
// tokens both answer 401 with the same message; the log keeps the
// real cause apart.
func Auth(users repository.UserRepository, jwt *helpers.JWTManager, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(raw, "Bearer ")
		if !ok || token == "" {
			response.AbortError(c, http.StatusUnauthorized, "missing session token")
			return
		}

		claims, err := jwt.ParseSessionToken(token)
		if err != nil {
			if logger != nil && errors.Is(err, helpers.ErrTokenExpired) {
				logger.WithField("path", c.FullPath()).Debug("session token expired")
			}
			response.AbortError(c, http.StatusUnauthorized, "invalid session token")
			return
		}

		// A token can outlive its account; a deleted user's session
		// must stop working immediately.
		u, err := users.GetByID(claims.UserID)
		if err != nil || u == nil {
			response.AbortError(c, http.StatusUnauthorized, "invalid session token")
			return
		}

		c.Set("userID", u.ID)
		c.Next()
	}
}
