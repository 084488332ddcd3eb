package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/TrekLedger/trek-ledger-backend/errors"
	"github.com/TrekLedger/trek-ledger-backend/logger"
)

// ErrorHandler converts errors attached to the gin context into JSON
// responses. AppErrors keep their status, meta payload and warning flag;
// anything else becomes a sanitized 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		log := logger.GetLogger()

		if appError, ok := err.(*apperrors.AppError); ok {
			statusCode := appError.GetHTTPStatus()

			log.Infow("Request failed",
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
				"type", appError.Type,
				"status", statusCode,
				"message", appError.Message,
			)

			response := gin.H{
				"type":    string(appError.Type),
				"message": appError.Message,
				"code":    strconv.Itoa(statusCode),
			}
			if appError.Detail != "" {
				response["details"] = appError.Detail
			}
			if len(appError.Meta) > 0 {
				response["meta"] = appError.Meta
			}
			// Soft warnings tell the client the same request will succeed with
			// the override flag set.
			if appError.Warning {
				response["warning"] = true
			}

			c.JSON(statusCode, response)
			return
		}

		if c.Errors.Last().Type == gin.ErrorTypeBind {
			log.Infow("Request binding failed", "path", c.Request.URL.Path, "error", err)
			c.JSON(http.StatusBadRequest, gin.H{
				"type":    string(apperrors.ValidationError),
				"message": "Failed to bind request",
				"code":    strconv.Itoa(http.StatusBadRequest),
			})
			return
		}

		log.Errorw("Unhandled error",
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"type":    string(apperrors.ServerError),
			"message": "Internal server error",
			"code":    strconv.Itoa(http.StatusInternalServerError),
		})
	}
}
