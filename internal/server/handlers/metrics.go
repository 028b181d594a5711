package handlers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/weather-search-app/internal/server/middlewares"
	"go.uber.org/zap"
)

// HTTPMetricsProvider exposes request metrics collected by the HTTP middleware.
type HTTPMetricsProvider interface {
	Snapshot() middlewares.HTTPSnapshot
}

// AppMetrics holds pipeline and upstream counters.
type AppMetrics struct {
	mutex          sync.RWMutex
	runs           map[string]int64
	upstreamCalls  map[string]int64
	upstreamErrors map[string]int64
}

// MetricsHandler serves Prometheus text and records pipeline metrics.
type MetricsHandler struct {
	logger     *zap.Logger
	http       HTTPMetricsProvider
	appMetrics *AppMetrics
}

func NewMetricsHandler(logger *zap.Logger, http HTTPMetricsProvider) *MetricsHandler {
	return &MetricsHandler{
		logger: logger,
		http:   http,
		appMetrics: &AppMetrics{
			runs:           make(map[string]int64),
			upstreamCalls:  make(map[string]int64),
			upstreamErrors: make(map[string]int64),
		},
	}
}

// RecordRun counts a finished pipeline run by outcome.
func (h *MetricsHandler) RecordRun(ctx context.Context, outcome string) {
	h.appMetrics.mutex.Lock()
	h.appMetrics.runs[outcome]++
	h.appMetrics.mutex.Unlock()
}

// RecordUpstreamCall counts a geocoding or forecast request.
func (h *MetricsHandler) RecordUpstreamCall(ctx context.Context, service string, success bool) {
	h.appMetrics.mutex.Lock()
	h.appMetrics.upstreamCalls[service]++
	if !success {
		h.appMetrics.upstreamErrors[service]++
	}
	h.appMetrics.mutex.Unlock()
}

func (h *MetricsHandler) ServeMetrics(c *gin.Context) {
	var b strings.Builder

	if h.http != nil {
		snap := h.http.Snapshot()

		writeHeader(&b, "http_requests_total", "Total number of HTTP requests", "counter")
		for _, key := range sortedKeys(snap.RequestsTotal) {
			fmt.Fprintf(&b, "http_requests_total{route_status=%q} %d\n", key, snap.RequestsTotal[key])
		}

		writeHeader(&b, "http_request_duration_seconds_avg", "Average duration of HTTP requests", "gauge")
		fmt.Fprintf(&b, "http_request_duration_seconds_avg %.6f\n", snap.AvgDurationSeconds)

		writeHeader(&b, "http_active_requests", "Number of active HTTP requests", "gauge")
		fmt.Fprintf(&b, "http_active_requests %d\n", snap.ActiveRequests)
	}

	h.appMetrics.mutex.RLock()
	defer h.appMetrics.mutex.RUnlock()

	writeHeader(&b, "pipeline_runs_total", "Finished weather searches by outcome", "counter")
	for _, outcome := range sortedKeys(h.appMetrics.runs) {
		fmt.Fprintf(&b, "pipeline_runs_total{outcome=%q} %d\n", outcome, h.appMetrics.runs[outcome])
	}

	writeHeader(&b, "upstream_calls_total", "Total upstream API calls", "counter")
	for _, service := range sortedKeys(h.appMetrics.upstreamCalls) {
		fmt.Fprintf(&b, "upstream_calls_total{service=%q} %d\n", service, h.appMetrics.upstreamCalls[service])
	}

	writeHeader(&b, "upstream_errors_total", "Total failed upstream API calls", "counter")
	for _, service := range sortedKeys(h.appMetrics.upstreamErrors) {
		fmt.Fprintf(&b, "upstream_errors_total{service=%q} %d\n", service, h.appMetrics.upstreamErrors[service])
	}

	c.Header("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	c.String(200, b.String())
}

func writeHeader(b *strings.Builder, name, help, kind string) {
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	fmt.Fprintf(b, "# HELP %s %s\n# TYPE %s %s\n", name, help, name, kind)
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
