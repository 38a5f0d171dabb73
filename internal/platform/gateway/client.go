// Package gateway talks to a Razorpay-compatible payment gateway.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/cardbilling/pkg/billingerr"
	cfgpkg "github.com/fatflowers/cardbilling/pkg/config"
	"github.com/fatflowers/cardbilling/pkg/logctx"
	"github.com/fatflowers/cardbilling/pkg/metrics"
)

const defaultTimeout = 10 * time.Second

type OrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// Order is the gateway-side order opened for a checkout.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type errorBody struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// Client opens orders on the gateway. Every failure, including timeouts and
// non-2xx answers, is reported as billingerr.ErrGatewayUnavailable.
type Client struct {
	baseURL   string
	keyID     string
	keySecret string
	timeout   time.Duration
	http      *http.Client
	log       *zap.SugaredLogger
}

func NewClient(cfg *cfgpkg.Config, log *zap.SugaredLogger) *Client {
	timeout := cfg.Gateway.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.Gateway.BaseURL, "/"),
		keyID:     cfg.Gateway.KeyID,
		keySecret: cfg.Gateway.KeySecret,
		timeout:   timeout,
		http:      &http.Client{Timeout: timeout},
		log:       log,
	}
}

// KeyID is the public key identifier clients use to initialize checkout.
func (c *Client) KeyID() string {
	return c.keyID
}

func (c *Client) OpenOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	start := time.Now()
	order, err := c.openOrder(ctx, req)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.ObserveSince(metrics.MetricsBusinessProcess, start, "gateway", "open_order_"+outcome)
	if err != nil {
		logctx.FromCtx(ctx, c.log).Errorw("gateway_open_order_failed", "receipt", req.Receipt, "amount", req.Amount, "currency", req.Currency, "err", err)
		return nil, fmt.Errorf("%w: %v", billingerr.ErrGatewayUnavailable, err)
	}
	return order, nil
}

func (c *Client) openOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode order request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build order request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("post order: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read order response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil && eb.Error.Code != "" {
			return nil, fmt.Errorf("gateway status %d: %s: %s", resp.StatusCode, eb.Error.Code, eb.Error.Description)
		}
		return nil, fmt.Errorf("gateway status %d", resp.StatusCode)
	}

	var order Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, fmt.Errorf("decode order response: %w", err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("gateway returned an order without id")
	}
	return &order, nil
}

var Module = fx.Options(
	fx.Provide(NewClient, NewSigner),
)
