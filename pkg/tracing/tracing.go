// Package tracing 提供基于OpenTelemetry的分布式追踪初始化
//
// 用途：回答"请求为什么慢？"——借阅事务包含行锁等待、Redis查询、
// 消息发布多个环节，通过Span可以看到每个环节的耗时分布。
//
// 数据流向：应用 → OTLP gRPC Exporter → Collector（Jaeger）→ UI
package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// InitTracer 初始化全局TracerProvider
//
// 参数：
//
//	serviceName: 服务名（在Jaeger UI中标识服务）
//	endpoint: OTLP gRPC端点（如 localhost:4317）
//
// 返回关闭函数，程序退出前必须调用以刷新剩余Span。
func InitTracer(serviceName, endpoint string) (func(context.Context) error, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 1. 创建OTLP gRPC Exporter（gRPC连接是惰性建立的，Collector不在线也不会报错）
	exporter, err := otlptracegrpc.New(
		ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(), // 禁用TLS（生产环境应启用）
	)
	if err != nil {
		return nil, fmt.Errorf("创建OTLP exporter失败: %w", err)
	}

	// 2. 创建Resource（描述产生遥测数据的服务，附加到所有Span）
	res, err := resource.New(
		ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("创建资源属性失败: %w", err)
	}

	// 3. 创建Tracer Provider
	tp := sdktrace.NewTracerProvider(
		// AlwaysSample表示100%采样；生产环境建议TraceIDRatioBased(0.01)
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		// BatchSpanProcessor批量发送（性能优于SimpleSpanProcessor）
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	// 4. 设置全局TracerProvider（业务代码直接otel.Tracer()获取）
	otel.SetTracerProvider(tp)

	// 5. 设置上下文传播器（跨服务传递TraceID/SpanID）
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{}, // W3C Trace Context
			propagation.Baggage{},
		),
	)

	// 6. 返回关闭函数（确保所有Span被发送到Collector）
	shutdown := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return tp.Shutdown(ctx)
	}

	return shutdown, nil
}

// StartSpan 创建Span
//
// - 如果ctx包含父Span，新Span自动成为子Span
// - 如果ctx不包含父Span，新Span成为根Span
func StartSpan(ctx context.Context, tracerName, spanName string) (context.Context, trace.Span) {
	tracer := otel.Tracer(tracerName)
	return tracer.Start(ctx, spanName)
}

// ExtractTraceID 提取当前TraceID（用于在日志中关联请求）
func ExtractTraceID(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.HasTraceID() {
		return ""
	}
	return spanCtx.TraceID().String()
}
