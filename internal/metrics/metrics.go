// Package metrics records run outcomes as Prometheus metrics and writes them
// in the node_exporter textfile format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fivexl/terraform-aws-ssl-checker/internal/domain/finding"
)

const namespace = "sslcheck"

// Recorder collects the metrics of one process. Interval mode reuses it
// across runs; gauges are overwritten, counters accumulate.
type Recorder struct {
	registry *prometheus.Registry

	hostUp              *prometheus.GaugeVec
	expiryDays          *prometheus.GaugeVec
	findings            *prometheus.CounterVec
	notificationsFailed prometheus.Counter
	runDuration         prometheus.Gauge
	lastRun             prometheus.Gauge
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		hostUp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "host_up",
			Help:      "1 if the host:port passed DNS, connectivity and health checks in the last run.",
		}, []string{"host"}),
		expiryDays: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "certificate_expiry_days",
			Help:      "Whole days until the earliest certificate served on host:port expires.",
		}, []string{"host"}),
		findings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "findings_total",
			Help:      "Findings raised, by category and severity.",
		}, []string{"category", "severity"}),
		notificationsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_failed_total",
			Help:      "Alerts that could not be delivered.",
		}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of the last run.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}

	r.registry.MustRegister(r.hostUp, r.expiryDays, r.findings, r.notificationsFailed, r.runDuration, r.lastRun)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) ObserveHost(host string, up bool) {
	v := 0.0
	if up {
		v = 1
	}
	r.hostUp.WithLabelValues(host).Set(v)
}

func (r *Recorder) ObserveExpiry(host string, days int) {
	r.expiryDays.WithLabelValues(host).Set(float64(days))
}

func (r *Recorder) ObserveFinding(f finding.Finding) {
	r.findings.WithLabelValues(string(f.Category()), string(f.Severity())).Inc()
}

func (r *Recorder) NotificationFailed() {
	r.notificationsFailed.Inc()
}

func (r *Recorder) ObserveRun(finished time.Time, duration time.Duration) {
	r.runDuration.Set(duration.Seconds())
	r.lastRun.Set(float64(finished.Unix()))
}

// WriteTextfile atomically writes every metric to path.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
