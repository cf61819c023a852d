package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/renatodap/brandkit-generator-sub000/internal/completion"
)

// CircuitBreakerMiddleware rejects generation requests while the completion
// service breaker is open, before any quota or pipeline work starts.
func CircuitBreakerMiddleware(cb *completion.Breaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cb != nil && cb.State() == completion.BreakerOpen && !cb.Allow() {
			RespondErrorWithRetry(c, http.StatusServiceUnavailable, ErrCodeCircuitOpen,
				"Logo generation is temporarily unavailable due to repeated upstream failures",
				int(cb.Timeout.Milliseconds()))
			c.Abort()
			return
		}
		c.Next()
	}
}
