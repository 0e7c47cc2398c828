// Package metrics 提供基于Prometheus的指标收集
//
// 可观测性三支柱之一（Tracing、Metrics、Logging）：
// - **Tracing（追踪）**: 回答"为什么慢？"（见pkg/tracing）
// - **Metrics（指标）**: 回答"有多少？多快？"（本模块）
// - **Logging（日志）**: 回答"发生了什么？"
//
// 指标类型选择：
// 1. **Counter（计数器）**：只增不减（借阅总数、HTTP请求总数）
// 2. **Gauge（仪表盘）**：可增可减的瞬时值（在借图书数、处理中请求数）
// 3. **Histogram（直方图）**：观测值分布（借阅事务耗时的P50/P90/P99）
//
// 使用示例：
//
//	// 1. 初始化Metrics
//	metrics.InitMetrics()
//
//	// 2. 在HTTP服务中暴露/metrics端点（gin路由内注册promhttp.Handler）
//
//	// 3. 在业务代码中记录指标
//	start := time.Now()
//	if err := borrowBook(ctx); err != nil {
//	    metrics.BorrowsFailedTotal.Inc()
//	    return err
//	}
//	metrics.BorrowsTotal.Inc()
//	metrics.BorrowDuration.Observe(time.Since(start).Seconds())
//
// 命名规范：Counter以_total结尾，Histogram以单位结尾（_seconds），
// Gauge使用现在时态；避免高基数标签（不要用user_id做标签）。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// initialized 标记是否已初始化（防止重复注册）
	initialized bool

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数（Counter）
	// 标签：method（GET/POST）、path（/api/v1/books）、status（200/404）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时（Histogram）
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数（Gauge）
	HTTPRequestsInProgress prometheus.Gauge

	// 借阅业务指标

	// BorrowsTotal 借阅成功总数（Counter）
	BorrowsTotal prometheus.Counter

	// BorrowsFailedTotal 借阅失败总数（Counter）
	// 标签：reason（already_borrowed/quota_exceeded/not_found/conflict/other）
	BorrowsFailedTotal *prometheus.CounterVec

	// ReturnsTotal 归还成功总数（Counter）
	ReturnsTotal prometheus.Counter

	// BorrowTxRetriesTotal 借阅/归还事务因写冲突重试的次数（Counter）
	BorrowTxRetriesTotal prometheus.Counter

	// BorrowDuration 借阅事务耗时（Histogram）
	BorrowDuration prometheus.Histogram

	// ActiveLoans 当前在借图书数（Gauge）
	// 说明：借阅成功+1，归还成功-1；进程重启后从0开始，仅作趋势参考
	ActiveLoans prometheus.Gauge

	// 熔断器指标

	// CircuitBreakerState 熔断器状态（Gauge）
	// 0=CLOSED, 1=OPEN, 2=HALF_OPEN
	CircuitBreakerState *prometheus.GaugeVec

	// CircuitBreakerRequests 熔断器请求总数（Counter）
	// 标签：name（熔断器名称）、result（success/failure/rejected）
	CircuitBreakerRequests *prometheus.CounterVec

	// 消息队列指标

	// MessagesPublishedTotal 消息发布总数（Counter）
	// 标签：exchange（交换机）、routing_key（路由键）
	MessagesPublishedTotal *prometheus.CounterVec
)

// InitMetrics 初始化所有Prometheus指标
//
// 必须在程序启动时调用一次，用于注册所有指标到全局Registry
//
// 设计要点：
// 1. 使用promauto.New*自动注册到默认Registry
// 2. Counter使用*Vec支持标签（多维度统计）
// 3. Histogram的Buckets根据业务场景定制
func InitMetrics() {
	// 防止重复初始化
	if initialized {
		return
	}
	initialized = true

	// HTTP请求指标
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "HTTP请求耗时（秒）",
			// 桶设置：1ms、10ms、100ms、500ms、1s、5s、10s
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	// 借阅业务指标
	BorrowsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "borrows_total",
			Help: "借阅成功总数",
		},
	)

	BorrowsFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "borrows_failed_total",
			Help: "借阅失败总数",
		},
		[]string{"reason"},
	)

	ReturnsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "returns_total",
			Help: "归还成功总数",
		},
	)

	BorrowTxRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "borrow_tx_retries_total",
			Help: "借阅/归还事务写冲突重试次数",
		},
	)

	BorrowDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "borrow_duration_seconds",
			Help: "借阅事务耗时（秒）",
			// 借阅事务包含行锁等待，桶范围放宽到10s
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
	)

	ActiveLoans = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_loans",
			Help: "当前在借图书数",
		},
	)

	// 熔断器指标
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "熔断器请求总数",
		},
		[]string{"name", "result"},
	)

	// 消息队列指标
	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "消息发布总数",
		},
		[]string{"exchange", "routing_key"},
	)
}
