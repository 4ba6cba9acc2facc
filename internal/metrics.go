package monitop

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// Metrics instruments the dashboard itself. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry    *prometheus.Registry
	refreshes   *prometheus.CounterVec
	durations   *prometheus.HistogramVec
	liveHandles *prometheus.GaugeVec
	fetchErrors *prometheus.CounterVec
}

// NewMetrics builds a registry with the dashboard collectors registered
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "monitop",
			Name:      "refresh_total",
			Help:      "Refresh cycles by slot and result.",
		}, []string{"slot", "result"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "monitop",
			Name:      "refresh_duration_seconds",
			Help:      "Wall time of a refresh cycle including fetches.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"slot"}),
		liveHandles: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "monitop",
			Name:      "chart_live_handles",
			Help:      "Chart handles currently bound to a slot.",
		}, []string{"slot"}),
		fetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "monitop",
			Name:      "fetch_errors_total",
			Help:      "Failed backend requests by endpoint and kind.",
		}, []string{"endpoint", "kind"}),
	}
	m.registry.MustRegister(m.refreshes, m.durations, m.liveHandles, m.fetchErrors)
	return m
}

// ObserveRefresh records the outcome of one refresh cycle
func (m *Metrics) ObserveRefresh(slot string, started time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.refreshes.WithLabelValues(slot, result).Inc()
	m.durations.WithLabelValues(slot).Observe(time.Since(started).Seconds())
}

// SetLive records whether slot currently holds a handle
func (m *Metrics) SetLive(slot Slot, live bool) {
	if m == nil {
		return
	}
	v := 0.0
	if live {
		v = 1
	}
	m.liveHandles.WithLabelValues(string(slot)).Set(v)
}

// FetchError counts a failed request against endpoint
func (m *Metrics) FetchError(endpoint, kind string) {
	if m == nil {
		return
	}
	m.fetchErrors.WithLabelValues(endpoint, kind).Inc()
}

// Handler exposes the registry over HTTP
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// WriteTextfile dumps the registry to path in the text exposition format
func (m *Metrics) WriteTextfile(path string) error {
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".monitop-metrics-*")
	if err != nil {
		return fmt.Errorf("failed to create metrics file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	for _, mf := range populated(families) {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to encode %s: %w", mf.GetName(), err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close metrics file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// populated drops families whose vectors have no children yet
func populated(families []*dto.MetricFamily) []*dto.MetricFamily {
	out := families[:0]
	for _, mf := range families {
		if len(mf.GetMetric()) > 0 {
			out = append(out, mf)
		}
	}
	return out
}
