// Package metrics 定义了前端服务暴露的 Prometheus 指标。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pdfchat"

var (
	// Uploads 按结果统计上传次数：ready、error、stale。
	Uploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_total",
		Help:      "Number of PDF uploads handed to the backend, by outcome.",
	}, []string{"outcome"})

	// Questions 按结果统计提问次数：answered、error、stale。
	Questions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "questions_total",
		Help:      "Number of questions sent to the backend, by outcome.",
	}, []string{"outcome"})

	// ActiveSessions 当前存活的浏览器会话数。
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Number of live browser sessions.",
	})

	// HTTPRequestDuration 记录前端服务自身的请求耗时。
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Latency of front-end HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
