package utils

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-api/apperrors"
)

// debug is set once at startup, before the server accepts traffic.
var debug bool

// SetDebug controls whether internal error details reach responses.
func SetDebug(d bool) {
	debug = d
}

// ErrorResponse is the wire envelope for every failure.
type ErrorResponse struct {
	Detail     string `json:"detail"`
	Type       string `json:"type"`
	StatusCode int    `json:"status_code"`
}

// Error normalizes err through the apperrors taxonomy and writes the
// envelope. Internal causes are logged and only exposed in debug mode.
func Error(c *gin.Context, logger *zap.Logger, err error) {
	appErr := apperrors.FromError(err)

	detail := appErr.Detail
	if appErr.Err != nil {
		logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(appErr.Err),
		)
		if debug {
			detail = appErr.Err.Error()
		}
	}

	c.JSON(appErr.Status, ErrorResponse{
		Detail:     detail,
		Type:       appErr.Type,
		StatusCode: appErr.Status,
	})
}

// AbortError behaves like Error but also stops the middleware chain.
func AbortError(c *gin.Context, logger *zap.Logger, err error) {
	Error(c, logger, err)
	c.Abort()
}
