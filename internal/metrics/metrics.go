// Package metrics exposes acquisition counters through Prometheus.
// A nil *Metrics is valid and records nothing, so components can take one optionally.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "clipstock"

type Metrics struct {
	Searches      *prometheus.CounterVec
	CacheLookups  *prometheus.CounterVec
	Downloads     *prometheus.CounterVec
	DownloadBytes prometheus.Counter
	ClipsAccepted *prometheus.CounterVec
	AcquireTime   prometheus.Histogram
}

// New creates the collectors and registers them with reg (nil = do not register).
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Catalog search requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Clip cache lookups by result (hit or miss).",
		}, []string{"result"}),
		Downloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "downloads_total",
			Help:      "Clip downloads by outcome.",
		}, []string{"outcome"}),
		DownloadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "download_bytes_total",
			Help:      "Bytes written to the clip cache.",
		}),
		ClipsAccepted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clips_accepted_total",
			Help:      "Clips handed to the caller, by source (local or remote).",
		}, []string{"source"}),
		AcquireTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "acquire_duration_seconds",
			Help:      "Wall time of one acquisition run.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Searches, m.CacheLookups, m.Downloads, m.DownloadBytes, m.ClipsAccepted, m.AcquireTime)
	}
	return m
}

func (m *Metrics) Search(provider, outcome string) {
	if m == nil {
		return
	}
	m.Searches.WithLabelValues(provider, outcome).Inc()
}

func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues("hit").Inc()
}

func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues("miss").Inc()
}

// Download records a finished download attempt; n is only counted on success.
func (m *Metrics) Download(outcome string, n int64) {
	if m == nil {
		return
	}
	m.Downloads.WithLabelValues(outcome).Inc()
	if n > 0 {
		m.DownloadBytes.Add(float64(n))
	}
}

func (m *Metrics) Accepted(source string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ClipsAccepted.WithLabelValues(source).Add(float64(n))
}

func (m *Metrics) ObserveAcquire(seconds float64) {
	if m == nil {
		return
	}
	m.AcquireTime.Observe(seconds)
}

// WriteTextfile dumps everything gathered by g in the node_exporter textfile format.
// Useful for one-shot CLI runs that are gone before any scrape happens.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
