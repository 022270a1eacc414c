package resolver

import (
	"fmt"
	"net/http"

	"github.com/semtetteh/semsterapp/internal/logger"

	"github.com/gin-gonic/gin"
)

// CORS stamps permissive cross-origin headers on every response,
// preflight and error responses included, so the service is callable
// directly from a browser context.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Client-Info")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")
		c.Next()
	}
}

// Recovery converts panics into the generic server-error response.
// It runs inside CORS so even a panic response carries the headers.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("resolver panic", map[string]any{
					"panic": fmt.Sprint(r),
				})
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": fmt.Sprint(r),
				})
			}
		}()
		c.Next()
	}
}
