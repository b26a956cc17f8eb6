package middleware

import (
	"github.com/gin-gonic/gin"
)

// RequestObserver is implemented by the metrics registry.
type RequestObserver interface {
	StartRequest() func(method, route string, status int)
}

// Metrics records request counts and latency labelled by the matched route template.
func Metrics(m RequestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		done := m.StartRequest()
		c.Next()
		done(c.Request.Method, c.FullPath(), c.Writer.Status())
	}
}
