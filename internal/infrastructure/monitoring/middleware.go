package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware for metrics collection
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		// Route templates keep label cardinality bounded.
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

// Timer measures a remote API call.
type Timer struct {
	start    time.Time
	metrics  *Metrics
	endpoint string
	method   string
}

// NewTimer creates a new timer
func NewTimer(metrics *Metrics, endpoint, method string) *Timer {
	return &Timer{
		start:    time.Now(),
		metrics:  metrics,
		endpoint: endpoint,
		method:   method,
	}
}

// Stop records the call with the given outcome.
func (t *Timer) Stop(outcome string) {
	t.metrics.RecordAPIRequest(t.endpoint, t.method, outcome, time.Since(t.start))
}
