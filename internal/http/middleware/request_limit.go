package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequestBodyLimit rejects bodies that declare more than maxBytes up front and
// caps the rest, so handlers see a MaxBytesError when a streamed body overruns.
func RequestBodyLimit(maxBytes int64) gin.HandlerFunc {
	if maxBytes <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			status := http.StatusRequestEntityTooLarge
			c.AbortWithStatusJSON(status, gin.H{
				"status":  status,
				"message": "Request body too large",
				"error":   "request_too_large",
			})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
