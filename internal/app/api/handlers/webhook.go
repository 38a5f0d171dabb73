package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/cardbilling/internal/app/service/webhook"
	"github.com/fatflowers/cardbilling/pkg/billingerr"
	"github.com/fatflowers/cardbilling/pkg/logctx"
	"github.com/fatflowers/cardbilling/pkg/response"
)

const (
	HeaderGatewaySignature = "X-Gateway-Signature"
	maxWebhookBody         = 1 << 20
)

type WebhookProcessor interface {
	Handle(ctx context.Context, body []byte, signature string) (*webhook.Outcome, error)
}

// @Summary      Gateway Webhook
// @Description  Receives signed gateway events. Captured payments activate the matching pending order.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Param        X-Gateway-Signature  header  string  true  "hex HMAC-SHA256 of the raw body"
// @Param        payload              body    string  true  "Gateway event"
// @Success      200  {object}  handlers.RespWebhook
// @Router       /api/v1/webhooks/gateway [post]
func ApiGatewayWebhook(svc WebhookProcessor, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody+1))
		if err != nil {
			badRequest(c, err)
			return
		}
		if len(body) > maxWebhookBody {
			writeError(c, log, fmt.Errorf("%w: webhook body too large", billingerr.ErrInvalidInput))
			return
		}

		out, err := svc.Handle(c.Request.Context(), body, c.GetHeader(HeaderGatewaySignature))
		if err != nil {
			logctx.FromGin(c, log).Warnw("webhook_gateway_handle_error", "err", err)
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(out))
	}
}

func RegisterWebhookRoutes(r gin.IRouter, svc WebhookProcessor, log *zap.SugaredLogger) {
	r.POST("/gateway", ApiGatewayWebhook(svc, log))
}
