// Package metrics exposes Prometheus collectors for rendering and the preview
// server. Metrics implements the enhancer's Recorder.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gfmrender"

// Result label values.
const (
	resultOK    = "ok"
	resultError = "error"
)

type Metrics struct {
	reg     *prometheus.Registry
	handler http.Handler

	highlighted    prometheus.Counter
	mathTotal      *prometheus.CounterVec
	diagramsTotal  *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	cacheTotal     *prometheus.CounterVec
	watcherEvents  prometheus.Counter
	buildInfo      *prometheus.GaugeVec

	inflight prometheus.Gauge
	reqTotal *prometheus.CounterVec
	reqDur   *prometheus.HistogramVec
}

// New returns a fresh registry with the standard Go and process collectors
// plus the rendering and HTTP metrics. HTTP labels are method, route, and
// status only, to keep cardinality bounded.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		highlighted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "highlighted_blocks_total",
			Help:      "Total code blocks given the theme class",
		}),
		mathTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "math_renders_total",
			Help:      "Total math renders by result",
		}, []string{"result"}),
		diagramsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diagram_renders_total",
			Help:      "Total diagram renders by result",
		}, []string{"result"}),
		renderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "page_render_duration_seconds",
			Help:      "Time to convert and enhance one page, by result",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"result"}),
		cacheTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_cache_lookups_total",
			Help:      "Preview page cache lookups by outcome",
		}, []string{"outcome"}),
		watcherEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "watcher_events_total",
			Help:      "Total debounced file change batches",
		}),
		buildInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_info",
			Help:      "Build metadata (value is always 1)",
		}, []string{"version", "go_version"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Current number of in-flight HTTP requests",
		}),
		reqTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, route, and status",
		}, []string{"method", "route", "status"}),
		reqDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request latency by method and route",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		m.highlighted,
		m.mathTotal,
		m.diagramsTotal,
		m.renderDuration,
		m.cacheTotal,
		m.watcherEvents,
		m.buildInfo,
		m.inflight,
		m.reqTotal,
		m.reqDur,
	)

	m.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
	m.reg = reg
	return m
}

func (m *Metrics) Handler() http.Handler {
	return m.handler
}

// ObserveHighlight counts code blocks styled by one pass.
func (m *Metrics) ObserveHighlight(n int) {
	m.highlighted.Add(float64(n))
}

func (m *Metrics) ObserveMath(ok bool) {
	m.mathTotal.WithLabelValues(result(ok)).Inc()
}

func (m *Metrics) ObserveDiagram(ok bool) {
	m.diagramsTotal.WithLabelValues(result(ok)).Inc()
}

// ObservePageRender records the wall time of one page render.
func (m *Metrics) ObservePageRender(d time.Duration, ok bool) {
	m.renderDuration.WithLabelValues(result(ok)).Observe(d.Seconds())
}

func (m *Metrics) IncCacheHit() {
	m.cacheTotal.WithLabelValues("hit").Inc()
}

func (m *Metrics) IncCacheMiss() {
	m.cacheTotal.WithLabelValues("miss").Inc()
}

func (m *Metrics) IncWatcherEvents() {
	m.watcherEvents.Inc()
}

// set once at startup.
func (m *Metrics) SetBuildInfo(version, goVersion string) {
	m.buildInfo.WithLabelValues(version, goVersion).Set(1)
}

func result(ok bool) string {
	if ok {
		return resultOK
	}
	return resultError
}
