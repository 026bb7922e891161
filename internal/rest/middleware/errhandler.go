package middleware

import (
	"net/http"

	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/flexprice/invoicer/internal/logger"
	"github.com/flexprice/invoicer/internal/types"
	"github.com/gin-gonic/gin"
)

// ErrorResponse represents the standard error response structure
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Display string         `json:"message"`
	Detail  string         `json:"detail,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorHandler middleware handles error responses
func ErrorHandler(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status := ierr.HTTPStatusFromErr(err)

		display := ierr.DisplayMessage(err)
		if display == "" {
			display = "An unexpected error occurred"
		}

		response := ErrorResponse{
			Success: false,
			Error: ErrorDetail{
				Display: display,
				Details: ierr.ReportableDetails(err),
			},
		}

		if status >= http.StatusInternalServerError {
			response.Error.Detail = failureDetail(err)
			log.Errorw("request failed",
				"method", c.Request.Method,
				"path", c.FullPath(),
				"status", status,
				"error", err,
				"request_id", types.GetRequestID(c.Request.Context()),
			)
		}

		c.JSON(status, response)
	}
}

// failureDetail names the failing subsystem without leaking the cause
func failureDetail(err error) string {
	switch {
	case ierr.IsDatabase(err):
		return "storage failure"
	case ierr.IsHTTPClient(err):
		return "upstream request failed"
	default:
		return "internal error"
	}
}
