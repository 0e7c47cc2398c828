package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/library/pkg/metrics"
)

// Metrics HTTP请求指标中间件
// 采集：请求总数、请求耗时分布、在途请求数
// 学习要点：
// 1. path label使用路由模板(c.FullPath())而非实际URL，
//    避免/api/v1/books/123这类高基数label撑爆Prometheus
// 2. /metrics自身不统计
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" || path == "/metrics" {
			// 未注册的路由(404)和指标端点本身不统计
			c.Next()
			return
		}

		start := time.Now()
		metrics.HTTPRequestsInProgress.Inc()

		c.Next()

		metrics.HTTPRequestsInProgress.Dec()
		status := strconv.Itoa(c.Writer.Status())
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
