package middleware

import (
	stderrors "errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/KeyIP-Substructure/internal/infrastructure/auth"
	"github.com/turtacn/KeyIP-Substructure/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Substructure/pkg/errors"
)

const (
	// APIKeyHeader is the alternative to an Authorization bearer token.
	APIKeyHeader = "X-API-Key"

	apiKeyIDKey = "api_key_id"
)

// APIKeyAuth admits requests carrying a key accepted by validator, either as
// "Authorization: Bearer <key>" or in X-API-Key.  Others get 401.
func APIKeyAuth(validator auth.APIKeyValidator, logger logging.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return func(c *gin.Context) {
		key := auth.BearerToken(c.GetHeader("Authorization"))
		if key == "" {
			key = strings.TrimSpace(c.GetHeader(APIKeyHeader))
		}

		info, err := validator.ValidateAPIKey(key)
		if err != nil {
			logger.Warn("API key rejected",
				logging.String("path", c.Request.URL.Path),
				logging.String("client_ip", c.ClientIP()),
				logging.Bool("key_present", key != ""),
				logging.String("request_id", GetRequestID(c)),
			)
			c.Header("WWW-Authenticate", `Bearer realm="keyip"`)
			message := errors.DefaultMessageForCode(errors.ErrCodeUnauthorized)
			var ae *errors.AppError
			if stderrors.As(err, &ae) {
				message = ae.Message
			}
			abortWithCode(c, errors.ErrCodeUnauthorized, message)
			return
		}
		c.Set(apiKeyIDKey, info.KeyID)
		c.Next()
	}
}

// GetAPIKeyID returns the fingerprint of the key APIKeyAuth accepted, or "".
func GetAPIKeyID(c *gin.Context) string {
	return c.GetString(apiKeyIDKey)
}
