package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fatflowers/cardbilling/pkg/logctx"
)

func newRouter(base *zap.SugaredLogger, secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TraceMiddleware(), RequestLoggerMiddleware(base), AccessLogMiddleware(), BusinessAuth(secret))
	r.GET("/whoami", func(c *gin.Context) {
		logctx.FromGin(c, base).Infow("whoami")
		c.String(http.StatusOK, logctx.BusinessID(c.Request.Context()))
	})
	return r
}

func token(t *testing.T, secret string, claims BusinessClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestBusinessAuth(t *testing.T) {
	const secret = "jwt-secret"
	valid := BusinessClaims{BusinessID: "biz-1", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}}
	expired := BusinessClaims{BusinessID: "biz-1", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))}}

	tests := []struct {
		name     string
		secret   string
		header   map[string]string
		wantCode int
		wantBody string
	}{
		{name: "header identity", header: map[string]string{HeaderBusinessID: "biz-9"}, wantCode: http.StatusOK, wantBody: "biz-9"},
		{name: "missing header", wantCode: http.StatusUnauthorized},
		{name: "bearer token", secret: secret, header: map[string]string{"Authorization": "Bearer " + token(t, secret, valid)}, wantCode: http.StatusOK, wantBody: "biz-1"},
		{name: "header ignored when token required", secret: secret, header: map[string]string{HeaderBusinessID: "biz-9"}, wantCode: http.StatusUnauthorized},
		{name: "wrong secret", secret: secret, header: map[string]string{"Authorization": "Bearer " + token(t, "other", valid)}, wantCode: http.StatusUnauthorized},
		{name: "expired token", secret: secret, header: map[string]string{"Authorization": "Bearer " + token(t, secret, expired)}, wantCode: http.StatusUnauthorized},
		{name: "token without business", secret: secret, header: map[string]string{"Authorization": "Bearer " + token(t, secret, BusinessClaims{})}, wantCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(zap.NewNop().Sugar(), tt.secret)
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, tt.wantCode, w.Code)
			if tt.wantBody != "" {
				require.Equal(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestRequestLogging(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := newRouter(zap.New(core).Sugar(), "")

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(HeaderRequestID, "trace-1")
	req.Header.Set(HeaderBusinessID, "biz-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, "trace-1", w.Header().Get(HeaderRequestID))
	entries := logs.All()
	require.Len(t, entries, 2)
	for _, e := range entries {
		fields := e.ContextMap()
		require.Equal(t, "trace-1", fields["trace_id"])
		require.Equal(t, "biz-1", fields["business_id"])
	}
	require.Equal(t, "whoami", entries[0].Message)
	require.Equal(t, "http_access", entries[1].Message)
}

func TestAdminAuth(t *testing.T) {
	const secret = "jwt-secret"
	hour := jwt.RegisteredClaims{Subject: "ops-1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	admin := BusinessClaims{Role: RoleAdmin, RegisteredClaims: hour}
	business := BusinessClaims{BusinessID: "biz-1", RegisteredClaims: hour}

	tests := []struct {
		name     string
		secret   string
		header   map[string]string
		wantCode int
	}{
		{name: "admin token", secret: secret, header: map[string]string{"Authorization": "Bearer " + token(t, secret, admin)}, wantCode: http.StatusOK},
		{name: "no credentials", secret: secret, wantCode: http.StatusUnauthorized},
		{name: "business header", secret: secret, header: map[string]string{HeaderBusinessID: "biz-1"}, wantCode: http.StatusUnauthorized},
		{name: "business token", secret: secret, header: map[string]string{"Authorization": "Bearer " + token(t, secret, business)}, wantCode: http.StatusUnauthorized},
		{name: "admin token signed elsewhere", secret: secret, header: map[string]string{"Authorization": "Bearer " + token(t, "other", admin)}, wantCode: http.StatusUnauthorized},
		{name: "no secret configured", header: map[string]string{"Authorization": "Bearer " + token(t, secret, admin)}, wantCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			r := gin.New()
			r.Use(AdminAuth(tt.secret))
			r.POST("/admin/list_invoices", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodPost, "/admin/list_invoices", nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			require.Equal(t, tt.wantCode, w.Code)
		})
	}
}
