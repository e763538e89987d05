package middleware

import (
	"errors"
	"net/http"

	"medxmentor-backend/internal/delivery/http/response"
	"medxmentor-backend/internal/domain"
	"medxmentor-backend/pkg/apperror"
	"medxmentor-backend/pkg/logger"
	"medxmentor-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		ctx := c.Request.Context()

		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			err = apperror.Internal(err)
			errors.As(err, &appErr)
		}

		switch {
		case appErr.Code >= http.StatusInternalServerError:
			// Never expose internal error details; the cause stays in the server log
			logger.FromContext(ctx).Error("request failed",
				"status", appErr.Code,
				"path", c.FullPath(),
				"error", err,
			)
		case appErr.Code == http.StatusUnauthorized || appErr.Code == http.StatusForbidden:
			security.DefaultLogger().LogUnauthorizedAccess(ctx,
				c.GetString(string(domain.KeyUserID)),
				c.ClientIP(),
				c.FullPath(),
				appErr.Code,
			)
		case appErr.Code == http.StatusBadRequest:
			security.DefaultLogger().LogValidationFailed(ctx, c.ClientIP(), c.FullPath(), appErr.Message)
		}

		message := appErr.Message
		if appErr.Code == http.StatusInternalServerError {
			message = "An unexpected error occurred. Please try again later."
		}
		response.Error(c, appErr.Code, message, nil)
	}
}
