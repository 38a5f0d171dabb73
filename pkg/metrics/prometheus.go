package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var reqCnt = &Metric{
	ID:          "reqCnt",
	Name:        "req_total",
	Description: "How many HTTP requests processed, partitioned by status code and HTTP method.",
	Type:        "counter_vec",
	Args:        []string{"code", "method", "url", "ref"},
}

var reqDur = &Metric{
	ID:          "reqDur",
	Name:        "req_dur_ms",
	Description: "The HTTP request latencies in milliseconds.",
	Type:        "histogram_vec",
	Args:        []string{"code", "method", "url", "ref"},
}

var resSz = &Metric{
	ID:          "resSz",
	Name:        "resp_sz_bytes",
	Description: "The HTTP response sizes in bytes.",
	Type:        "summary_vec",
	Args:        []string{"code", "method", "url", "ref"},
}

var standardMetrics = []*Metric{reqCnt, reqDur, resSz}

const defaultMetricPath = "/metrics"

// Prometheus is a gin middleware recording request metrics. The scrape
// endpoint is served on a separate listener when ListenAddress is set so it
// stays out of the public access log.
type Prometheus struct {
	reqCnt *prometheus.CounterVec
	reqDur *prometheus.HistogramVec
	resSz  *prometheus.SummaryVec

	MetricsPath   string
	ListenAddress string

	// URLLabel maps a request to its "url" label. Defaults to the route
	// template so path parameters do not explode cardinality.
	URLLabel func(c *gin.Context) string

	log    *zap.SugaredLogger
	server *http.Server
}

func NewPrometheus(log *zap.SugaredLogger, listenAddress string) *Prometheus {
	p := &Prometheus{
		MetricsPath:   defaultMetricPath,
		ListenAddress: listenAddress,
		URLLabel: func(c *gin.Context) string {
			if fp := c.FullPath(); fp != "" {
				return fp
			}
			return "unmatched"
		},
		log: log,
	}
	for _, m := range standardMetrics {
		if err := Register(m, Subsystem); err != nil {
			log.Errorw("metric_register_failed", "metric", m.Name, "err", err)
			continue
		}
		switch m {
		case reqCnt:
			p.reqCnt = m.MetricCollector.(*prometheus.CounterVec)
		case reqDur:
			p.reqDur = m.MetricCollector.(*prometheus.HistogramVec)
		case resSz:
			p.resSz = m.MetricCollector.(*prometheus.SummaryVec)
		}
	}
	if err := RegisterBusinessMetrics(); err != nil {
		log.Errorw("metric_register_failed", "err", err)
	}
	return p
}

// Use adds the middleware to e and exposes the scrape endpoint, either on e
// itself or on the dedicated listener.
func (p *Prometheus) Use(e *gin.Engine) {
	e.Use(p.HandlerFunc())
	if p.ListenAddress == "" {
		e.GET(p.MetricsPath, gin.WrapH(promhttp.Handler()))
		return
	}
	mux := http.NewServeMux()
	mux.Handle(p.MetricsPath, promhttp.Handler())
	p.server = &http.Server{Addr: p.ListenAddress, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := p.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			p.log.Errorw("metrics_server_error", "addr", p.ListenAddress, "err", err)
		}
	}()
}

// Server returns the dedicated metrics server, or nil when metrics share the
// main engine.
func (p *Prometheus) Server() *http.Server {
	return p.server
}

func (p *Prometheus) HandlerFunc() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == p.MetricsPath {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		url := p.URLLabel(c)
		ref := c.Request.Header.Get(RefererKey)

		if p.reqDur != nil {
			p.reqDur.WithLabelValues(status, c.Request.Method, url, ref).Observe(MillisecondsSince(start))
		}
		if p.reqCnt != nil {
			p.reqCnt.WithLabelValues(status, c.Request.Method, url, ref).Inc()
		}
		if p.resSz != nil {
			p.resSz.WithLabelValues(status, c.Request.Method, url, ref).Observe(float64(c.Writer.Size()))
		}
	}
}
