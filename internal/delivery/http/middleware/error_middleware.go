package middleware

import (
	"errors"
	"net/http"

	"resume-review-backend/internal/delivery/http/response"
	"resume-review-backend/pkg/apperror"
	"resume-review-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

const genericFailureMessage = "An unexpected error occurred. Please try again later."

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			// SECURITY: Never expose internal error details to clients.
			logger.Log.Error("Unhandled error", "path", c.FullPath(), "error", err)
			response.Error(c, http.StatusInternalServerError, genericFailureMessage, nil)
			return
		}

		if appErr.Code >= http.StatusInternalServerError {
			logger.Log.Error("Request failed", "path", c.FullPath(), "status", appErr.Code, "error", appErr.Err)
		}
		if appErr.Code == http.StatusInternalServerError {
			response.Error(c, appErr.Code, genericFailureMessage, nil)
			return
		}
		if len(appErr.Fields) > 0 {
			response.Error(c, appErr.Code, appErr.Message, appErr.Fields)
			return
		}
		response.Error(c, appErr.Code, appErr.Message, nil)
	}
}
