package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRegister_Idempotent(t *testing.T) {
	m := &Metric{Name: "test_register_total", Description: "test", Type: "counter_vec", Args: []string{"k"}}
	require.NoError(t, Register(m, Subsystem))
	first := m.MetricCollector

	require.NoError(t, Register(m, Subsystem))
	require.Same(t, first, m.MetricCollector)

	Inc(m, "v")
	require.Equal(t, float64(1), testutil.ToFloat64(m.MetricCollector.(*prometheus.CounterVec).WithLabelValues("v")))
}

func TestHelpers_NoopWhenUnregistered(t *testing.T) {
	m := &Metric{Name: "never_registered", Type: "counter_vec", Args: []string{"k"}}
	require.NotPanics(t, func() {
		Inc(m, "v")
		ObserveSince(m, time.Now(), "v")
	})
}

func TestPrometheusMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	p := NewPrometheus(zap.NewNop().Sugar(), "")
	p.Use(r)
	r.GET("/ping/:id", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping/42", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `billing_req_total{code="200",method="GET",ref="",url="/ping/:id"}`)
}
