package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "cryptofolio/internal/application"
	"cryptofolio/pkg/response"
)

// writeServiceError maps a service failure onto the boundary status
// and message. Unknown errors are logged with their cause and reported
// generically; nothing internal leaks to the caller.
func writeServiceError(c *gin.Context, logger *logrus.Logger, err error) {
	if ve, ok := app.AsValidation(err); ok {
		response.Error[any](c, http.StatusBadRequest, "validation failed", map[string]string{ve.Field: ve.Message})
		return
	}
	switch {
	case errors.Is(err, app.ErrInvalidCredentials):
		response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
	case errors.Is(err, app.ErrUnauthorized):
		response.Error[any](c, http.StatusUnauthorized, "unauthorized", nil)
	case errors.Is(err, app.ErrForbidden):
		response.Error[any](c, http.StatusForbidden, "forbidden", nil)
	case errors.Is(err, app.ErrNotFound), errors.Is(err, app.ErrUserNotFound):
		response.Error[any](c, http.StatusNotFound, "not found", nil)
	case errors.Is(err, app.ErrEmailTaken):
		response.Error[any](c, http.StatusBadRequest, "email already registered", nil)
	case errors.Is(err, app.ErrInvalidOrExpiredToken):
		response.Error[any](c, http.StatusBadRequest, "invalid or expired token", nil)
	case errors.Is(err, app.ErrUpstreamUnavailable):
		response.Error[any](c, http.StatusBadGateway, "upstream unavailable, try again later", nil)
	default:
		if logger != nil {
			logger.WithError(err).WithField("path", c.FullPath()).Error("unhandled service error")
		}
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
	}
}
