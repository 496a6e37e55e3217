// Package metrics counts crawl activity with prometheus collectors. A
// crawl is a short-lived process, so the collectors are written out in
// the node_exporter textfile format when the run ends rather than served.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors for one crawl
type Metrics struct {
	registry *prometheus.Registry

	PagesTotal       prometheus.Counter
	ImagesTotal      *prometheus.CounterVec
	BytesTotal       prometheus.Counter
	PageRetriesTotal prometheus.Counter
	DownloadDuration prometheus.Histogram
	LastRunSuccess   prometheus.Gauge
	LastRunTimestamp prometheus.Gauge
}

// New registers a fresh set of collectors labelled with community
func New(community string) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	labels := prometheus.Labels{"community": community}

	return &Metrics{
		registry: reg,
		PagesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name:        "imgurr_pages_total",
			Help:        "Feed pages fully processed.",
			ConstLabels: labels,
		}),
		ImagesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "imgurr_images_total",
			Help:        "Images handled, by outcome.",
			ConstLabels: labels,
		}, []string{"status"}),
		BytesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name:        "imgurr_downloaded_bytes_total",
			Help:        "Bytes of image data written to disk.",
			ConstLabels: labels,
		}),
		PageRetriesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name:        "imgurr_page_retries_total",
			Help:        "Pages restarted after a transport failure.",
			ConstLabels: labels,
		}),
		DownloadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:        "imgurr_image_download_duration_seconds",
			Help:        "Time spent fetching and saving one image.",
			ConstLabels: labels,
			Buckets:     []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		LastRunSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "imgurr_last_run_success",
			Help:        "1 if the last crawl reached the end of the feed, 0 otherwise.",
			ConstLabels: labels,
		}),
		LastRunTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "imgurr_last_run_timestamp_seconds",
			Help:        "Unix time the last crawl finished.",
			ConstLabels: labels,
		}),
	}
}

// ObserveImage records one image outcome: "saved", "skipped" or "missing"
func (m *Metrics) ObserveImage(status string, size int, elapsed time.Duration) {
	m.ImagesTotal.WithLabelValues(status).Inc()
	if status == "saved" {
		m.BytesTotal.Add(float64(size))
		m.DownloadDuration.Observe(elapsed.Seconds())
	}
}

// Finish stamps the outcome of the run
func (m *Metrics) Finish(success bool) {
	if success {
		m.LastRunSuccess.Set(1)
	} else {
		m.LastRunSuccess.Set(0)
	}
	m.LastRunTimestamp.SetToCurrentTime()
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes all collectors to path in the text exposition format
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
