package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminKeyMiddleware gates the moderation endpoints on the shared
// admin secret carried in X-API-Key. This is a separate trust channel
// from user tokens: a static out-of-band secret, rotated
// independently of JWT_SECRET. The compare is constant-time so the
// key cannot be probed byte by byte.
func AdminKeyMiddleware(adminAPIKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader("X-API-Key")

		if subtle.ConstantTimeCompare([]byte(provided), []byte(adminAPIKey)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "invalid admin API key",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
