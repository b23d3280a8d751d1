// Package handlers implements the gin handlers of the substructure API.
package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/KeyIP-Substructure/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Substructure/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/KeyIP-Substructure/internal/interfaces/http/middleware"
	"github.com/turtacn/KeyIP-Substructure/pkg/errors"
)

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// bindJSON decodes the request body into v.  Oversized bodies map to 413.
func bindJSON(c *gin.Context, v interface{}) error {
	if err := c.ShouldBindJSON(v); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return errors.New(errors.ErrCodeRequestTooLarge, "request body too large").
				WithDetailf("limit=%d", tooLarge.Limit)
		}
		return errors.InvalidParam("invalid request body").WithCause(err)
	}
	return nil
}

// writeAppError maps application-level errors to HTTP status codes.  Server
// errors are logged and masked.
func writeAppError(c *gin.Context, logger logging.Logger, metrics *prometheus.AppMetrics, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)
	if metrics != nil {
		prometheus.RecordError(metrics, "http", code.String())
	}

	resp := ErrorResponse{
		Code:      code.String(),
		Message:   errors.DefaultMessageForCode(code),
		RequestID: middleware.GetRequestID(c),
	}
	var ae *errors.AppError
	if stderrors.As(err, &ae) && status < http.StatusInternalServerError {
		resp.Message = ae.Message
		resp.Detail = ae.Detail
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			logging.String("path", c.FullPath()),
			logging.String("request_id", resp.RequestID),
			logging.Err(err),
		)
	}
	c.AbortWithStatusJSON(status, resp)
}
