// Package metrics 提供助手服务的业务指标收集。
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every assistant collector.
const Namespace = "naughty_assistant"

// Scan verdict labels.
const (
	ScanClean    = "clean"
	ScanInfected = "infected"
	ScanSkipped  = "skipped"
)

// Search cache labels.
const (
	CacheHit      = "hit"
	CacheMiss     = "miss"
	CacheDisabled = "disabled"
)

// Metrics 助手服务业务指标。所有方法对 nil 接收者安全。
type Metrics struct {
	// 生成指标
	generations        *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec

	// 路由指标
	intents *prometheus.CounterVec

	// 上传指标
	uploads      *prometheus.CounterVec
	scanVerdicts *prometheus.CounterVec

	// 检索指标
	searches *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "model",
			Name:      "generations_total",
			Help:      "Text generation calls by feature and result.",
		}, []string{"feature", "result"}),
		generationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "model",
			Name:      "generation_duration_seconds",
			Help:      "Text generation latency.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 60, 120},
		}, []string{"feature"}),
		intents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "chat",
			Name:      "intents_total",
			Help:      "Chat messages by routed intent.",
		}, []string{"intent"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "intake",
			Name:      "uploads_total",
			Help:      "Uploads by file kind and outcome.",
		}, []string{"kind", "status"}),
		scanVerdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "intake",
			Name:      "scan_verdicts_total",
			Help:      "Virus scan outcomes.",
		}, []string{"verdict"}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "knowledge",
			Name:      "searches_total",
			Help:      "Knowledge searches by cache outcome.",
		}, []string{"cache"}),
	}
	reg.MustRegister(m.generations, m.generationDuration, m.intents, m.uploads, m.scanVerdicts, m.searches)
	return m
}

// RecordGeneration 记录一次生成调用。
func (m *Metrics) RecordGeneration(feature string, d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.generations.WithLabelValues(feature, result).Inc()
	m.generationDuration.WithLabelValues(feature).Observe(d.Seconds())
}

// RecordIntent 记录路由结果。
func (m *Metrics) RecordIntent(intent string) {
	if m == nil {
		return
	}
	m.intents.WithLabelValues(intent).Inc()
}

// RecordUpload 记录上传结果。
func (m *Metrics) RecordUpload(kind, status string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(kind, status).Inc()
}

// RecordScan 记录扫描结果。
func (m *Metrics) RecordScan(verdict string) {
	if m == nil {
		return
	}
	m.scanVerdicts.WithLabelValues(verdict).Inc()
}

// RecordSearch 记录检索缓存命中情况。
func (m *Metrics) RecordSearch(cache string) {
	if m == nil {
		return
	}
	m.searches.WithLabelValues(cache).Inc()
}
