package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusObserver exports listing metrics to Prometheus.
type PrometheusObserver struct {
	duration *prometheus.HistogramVec
	images   prometheus.Gauge
	failures prometheus.Counter
}

// NewPrometheusObserver registers the listing metrics on reg, or on the
// default registerer when reg is nil.
func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = "gallery"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	o := &PrometheusObserver{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "listing_duration_seconds",
			Help:      "Latency of assets directory scans.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"result"}),
		images: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "listed_images",
			Help:      "Number of images returned by the last successful scan.",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listing_failures_total",
			Help:      "Count of scans that could not read the assets directory.",
		}),
	}

	for _, col := range []prometheus.Collector{o.duration, o.images, o.failures} {
		if err := reg.Register(col); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return nil, fmt.Errorf("register listing metric: %w", err)
		}
	}
	return o, nil
}

// RecordListing tracks scan latency, result size and failures.
func (o *PrometheusObserver) RecordListing(duration time.Duration, images int, err error) {
	if o == nil {
		return
	}
	if err != nil {
		o.duration.WithLabelValues("error").Observe(duration.Seconds())
		o.failures.Inc()
		return
	}
	o.duration.WithLabelValues("ok").Observe(duration.Seconds())
	o.images.Set(float64(images))
}

// Observers fans one recording out to several observers.
type Observers []Observer

// RecordListing forwards to every non-nil observer.
func (obs Observers) RecordListing(duration time.Duration, images int, err error) {
	for _, o := range obs {
		if o != nil {
			o.RecordListing(duration, images, err)
		}
	}
}
