package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/dangquyenbui-dotcom/production-portal-github/internal/core/apperror"
	"github.com/dangquyenbui-dotcom/production-portal-github/pkg/logger"
)

// ErrorHandler middleware transforms errors into consistent JSON responses.
// Hides internal errors from clients while logging full details.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		// If response already written by handler, do not override it.
		if c.Writer.Written() {
			return
		}

		requestID := c.GetString("request_id")

		if appErr, ok := apperror.AsAppError(err); ok {
			appErr = appErr.WithCorrelationID(requestID)
			if appErr.Err != nil {
				logger.Error(c.Request.Context(), "request error",
					"code", appErr.Code,
					"cause", appErr.Err,
				)
			}

			c.JSON(appErr.HTTPStatus, gin.H{
				"code":           appErr.Code,
				"message":        appErr.Message,
				"details":        appErr.Details,
				"correlation_id": appErr.CorrelationID,
			})
			return
		}

		logger.Error(c.Request.Context(), "unhandled error",
			"error", err,
		)

		c.JSON(500, gin.H{
			"code":           apperror.CodeInternal,
			"message":        "Internal server error",
			"correlation_id": requestID,
		})
	}
}
