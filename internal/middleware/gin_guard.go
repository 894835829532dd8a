package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GinGuard adapts the net/http route guard to gin. Auth decisions stay
// token-based and provider-agnostic.
func GinGuard(guard *RouteGuard) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Bridge handler to allow net/http middleware execution
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Request = r
			c.Next()
		})

		handler := guard.Handler(next)
		handler.ServeHTTP(c.Writer, c.Request)

		// If the guard already wrote the redirect, stop the gin chain
		if c.Writer.Written() {
			c.Abort()
			return
		}
	}
}
