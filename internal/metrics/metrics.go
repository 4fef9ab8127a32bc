package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snapfeed_http_requests_total",
		Help: "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "snapfeed_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	PostsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapfeed_posts_created_total",
		Help: "Posts inserted after a successful upload.",
	})

	UploadFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapfeed_upload_failures_total",
		Help: "Object store uploads that failed.",
	})

	InsertFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapfeed_insert_failures_total",
		Help: "Post inserts that failed after the object was uploaded.",
	})

	RejectedSubmissions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapfeed_rejected_submissions_total",
		Help: "Submissions dropped by validation.",
	})
)

// Middleware records request count and latency keyed by the matched route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		httpRequests.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
