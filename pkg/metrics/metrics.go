package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const Subsystem = "billing"

// HistogramBuckets are in milliseconds.
var HistogramBuckets = []float64{
	5, 10, 25, 50, 75, 100, 150, 200, 300, 400, 500,
	750, 1000, 1500, 2000, 3000, 5000, 10000, 15000, 30000,
}

// Metric is a definition for the name, description, type, ID, and
// prometheus.Collector type (i.e. CounterVec, Summary, etc) of each metric
type Metric struct {
	MetricCollector prometheus.Collector
	ID              string
	Name            string
	Description     string
	Type            string
	Args            []string
}

// NewMetric associates prometheus.Collector based on Metric.Type
func NewMetric(m *Metric, subsystem string) prometheus.Collector {
	var metric prometheus.Collector
	switch m.Type {
	case "counter_vec":
		metric = prometheus.NewCounterVec(
			prometheus.CounterOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description},
			m.Args,
		)
	case "counter":
		metric = prometheus.NewCounter(
			prometheus.CounterOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description},
		)
	case "gauge_vec":
		metric = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description},
			m.Args,
		)
	case "histogram_vec":
		metric = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description, Buckets: HistogramBuckets},
			m.Args,
		)
	case "summary_vec":
		metric = prometheus.NewSummaryVec(
			prometheus.SummaryOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description},
			m.Args,
		)
	}
	return metric
}

// Register registers m with the default registry. A collector that is already
// registered under the same descriptor is reused.
func Register(m *Metric, subsystem string) error {
	c := NewMetric(m, subsystem)
	if c == nil {
		return errors.New("unsupported metric type: " + m.Type)
	}
	if err := prometheus.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return err
		}
		c = are.ExistingCollector
	}
	m.MetricCollector = c
	return nil
}

var MetricsBusinessProcess = &Metric{
	ID:          "bpDur",
	Name:        "bp_dur",
	Description: "process latency in milliseconds",
	Type:        "histogram_vec",
	Args:        []string{"type", "subtype"},
}

var PaymentVerification = &Metric{
	ID:          "payVerify",
	Name:        "payment_verification_total",
	Description: "Payment verification attempts partitioned by source and outcome.",
	Type:        "counter_vec",
	Args:        []string{"source", "outcome"},
}

var InvoicesIssued = &Metric{
	ID:          "invIssued",
	Name:        "invoices_issued_total",
	Description: "Invoices issued partitioned by currency.",
	Type:        "counter_vec",
	Args:        []string{"currency"},
}

var InvoiceRender = &Metric{
	ID:          "invRender",
	Name:        "invoice_render_total",
	Description: "Invoice document render attempts partitioned by result.",
	Type:        "counter_vec",
	Args:        []string{"result"},
}

var BusinessMetrics = []*Metric{
	MetricsBusinessProcess,
	PaymentVerification,
	InvoicesIssued,
	InvoiceRender,
}

// RegisterBusinessMetrics registers every business metric. Safe to call more
// than once.
func RegisterBusinessMetrics() error {
	for _, m := range BusinessMetrics {
		if err := Register(m, Subsystem); err != nil {
			return err
		}
	}
	return nil
}

// Inc increments a counter_vec metric. It is a no-op until the metric is registered.
func Inc(m *Metric, labels ...string) {
	if cv, ok := m.MetricCollector.(*prometheus.CounterVec); ok {
		cv.WithLabelValues(labels...).Inc()
	}
}

// ObserveSince records the elapsed milliseconds on a histogram_vec metric.
func ObserveSince(m *Metric, start time.Time, labels ...string) {
	if hv, ok := m.MetricCollector.(*prometheus.HistogramVec); ok {
		hv.WithLabelValues(labels...).Observe(MillisecondsSince(start))
	}
}

func MillisecondsSince(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}

const (
	RefererKey = "X-Referer"
)
