package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/fatflowers/cardbilling/internal/app/service/order"
	"github.com/fatflowers/cardbilling/internal/app/service/payment"
	"github.com/fatflowers/cardbilling/internal/app/service/query"
	"github.com/fatflowers/cardbilling/internal/models"
	"github.com/fatflowers/cardbilling/internal/platform/pdf"
	"github.com/fatflowers/cardbilling/pkg/billingerr"
	"github.com/fatflowers/cardbilling/pkg/money"
	"github.com/fatflowers/cardbilling/pkg/response"
	"github.com/fatflowers/cardbilling/pkg/types"
)

type PlanLister interface {
	ListPlans() []types.Plan
}

type OrderCreator interface {
	CreateOrder(ctx context.Context, businessID, planType string) (*order.CreateOrderResult, error)
}

type PaymentVerifier interface {
	Verify(ctx context.Context, req *payment.VerifyRequest) (*payment.VerificationResult, error)
}

type SubscriptionCanceller interface {
	Cancel(ctx context.Context, businessID, subscriptionID string) (*models.Subscription, error)
}

type BillingQuery interface {
	GetCurrentSubscription(ctx context.Context, businessID string) (*query.SubscriptionView, error)
	ListInvoices(ctx context.Context, businessID string) ([]*models.Invoice, error)
	DownloadInvoice(ctx context.Context, businessID, invoiceID string) ([]byte, *models.Invoice, error)
}

// BillingServices are the dependencies of the business-facing billing API.
type BillingServices struct {
	Plans         PlanLister
	Orders        OrderCreator
	Payments      PaymentVerifier
	Subscriptions SubscriptionCanceller
	Query         BillingQuery
	Log           *zap.SugaredLogger
}

type PlanItem struct {
	types.Plan
	AmountDisplay string `json:"amount_display"`
}

type InvoiceItem struct {
	ID             string    `json:"id"`
	InvoiceNumber  int64     `json:"invoice_number"`
	DisplayNumber  string    `json:"display_number"`
	SubscriptionID string    `json:"subscription_id"`
	BusinessID     string    `json:"business_id"`
	PlanType       string    `json:"plan_type"`
	Amount         int64     `json:"amount"`
	Currency       string    `json:"currency"`
	AmountDisplay  string    `json:"amount_display"`
	PeriodStart    time.Time `json:"period_start"`
	PeriodEnd      time.Time `json:"period_end"`
	IssuedAt       time.Time `json:"issued_at"`
}

func toInvoiceItem(inv *models.Invoice, _ int) *InvoiceItem {
	return &InvoiceItem{
		ID:             inv.ID,
		InvoiceNumber:  inv.InvoiceNumber,
		DisplayNumber:  inv.DisplayNumber(),
		SubscriptionID: inv.SubscriptionID,
		BusinessID:     inv.BusinessID,
		PlanType:       inv.PlanType,
		Amount:         inv.Amount,
		Currency:       inv.Currency,
		AmountDisplay:  money.Format(inv.Amount, inv.Currency),
		PeriodStart:    inv.PeriodStart,
		PeriodEnd:      inv.PeriodEnd,
		IssuedAt:       inv.IssuedAt,
	}
}

// @Summary      List Plans
// @Description  Returns the purchasable plans in catalog order.
// @Tags         Billing
// @Produce      json
// @Success      200  {object}  handlers.RespPlans
// @Router       /api/v1/billing/plans [get]
func ApiListPlans(plans PlanLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		items := lo.Map(plans.ListPlans(), func(p types.Plan, _ int) *PlanItem {
			return &PlanItem{Plan: p, AmountDisplay: money.Format(p.Amount, p.Currency)}
		})
		c.JSON(http.StatusOK, response.OKT(items))
	}
}

type CreateOrderRequest struct {
	PlanType string `json:"plan_type" binding:"required"`
}

// @Summary      Create Order
// @Description  Opens a gateway order for a plan and records a pending subscription.
// @Tags         Billing
// @Accept       json
// @Produce      json
// @Param        request body handlers.CreateOrderRequest true "Plan to purchase"
// @Success      200  {object}  handlers.RespCreateOrder
// @Router       /api/v1/billing/orders [post]
func ApiCreateOrder(svc OrderCreator, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		res, err := svc.CreateOrder(c.Request.Context(), businessID(c), req.PlanType)
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Verify Payment
// @Description  Verifies the gateway payment proof and activates the subscription. Repeated proofs replay the first result.
// @Tags         Billing
// @Accept       json
// @Produce      json
// @Param        request body payment.VerifyRequest true "Gateway payment proof"
// @Success      200  {object}  handlers.RespVerifyPayment
// @Router       /api/v1/billing/payments/verify [post]
func ApiVerifyPayment(svc PaymentVerifier, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req payment.VerifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		req.BusinessID = businessID(c)
		res, err := svc.Verify(c.Request.Context(), &req)
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Current Subscription
// @Description  Returns the subscription representing the business now, or null data when there is none.
// @Tags         Billing
// @Produce      json
// @Success      200  {object}  handlers.RespSubscription
// @Router       /api/v1/billing/subscription/current [get]
func ApiCurrentSubscription(svc BillingQuery, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := svc.GetCurrentSubscription(c.Request.Context(), businessID(c))
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(view))
	}
}

type CancelSubscriptionRequest struct {
	// SubscriptionID defaults to the current subscription.
	SubscriptionID string `json:"subscription_id"`
}

// @Summary      Cancel Subscription
// @Description  Stops renewal. Access continues until the end date.
// @Tags         Billing
// @Accept       json
// @Produce      json
// @Param        request body handlers.CancelSubscriptionRequest false "Subscription to cancel"
// @Success      200  {object}  handlers.RespCancelSubscription
// @Router       /api/v1/billing/subscription/cancel [post]
func ApiCancelSubscription(svc SubscriptionCanceller, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CancelSubscriptionRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				badRequest(c, err)
				return
			}
		}
		sub, err := svc.Cancel(c.Request.Context(), businessID(c), req.SubscriptionID)
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(sub))
	}
}

// @Summary      List Invoices
// @Description  Returns the invoices of the business, most recent first.
// @Tags         Billing
// @Produce      json
// @Success      200  {object}  handlers.RespInvoices
// @Router       /api/v1/billing/invoices [get]
func ApiListInvoices(svc BillingQuery, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		invoices, err := svc.ListInvoices(c.Request.Context(), businessID(c))
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(lo.Map(invoices, toInvoiceItem)))
	}
}

// @Summary      Download Invoice
// @Description  Returns the invoice PDF. Answers 202 while the document is still being rendered.
// @Tags         Billing
// @Produce      application/pdf
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {file}    binary
// @Success      202  {object}  handlers.RespOK
// @Router       /api/v1/billing/invoices/{id}/download [get]
func ApiDownloadInvoice(svc BillingQuery, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, inv, err := svc.DownloadInvoice(c.Request.Context(), businessID(c), c.Param("id"))
		if errors.Is(err, billingerr.ErrRenderPending) {
			c.Header("Retry-After", "5")
			c.JSON(http.StatusAccepted, response.ErrorT[any](response.APIResponseCodeRenderPending, gin.H{"invoice_id": inv.ID}))
			return
		}
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, inv.DisplayNumber()))
		c.Data(http.StatusOK, pdf.ContentType, body)
	}
}

func RegisterBillingRoutes(r gin.IRouter, s *BillingServices) {
	r.GET("/plans", ApiListPlans(s.Plans))
	r.POST("/orders", ApiCreateOrder(s.Orders, s.Log))
	r.POST("/payments/verify", ApiVerifyPayment(s.Payments, s.Log))
	r.GET("/subscription/current", ApiCurrentSubscription(s.Query, s.Log))
	r.POST("/subscription/cancel", ApiCancelSubscription(s.Subscriptions, s.Log))
	r.GET("/invoices", ApiListInvoices(s.Query, s.Log))
	r.GET("/invoices/:id/download", ApiDownloadInvoice(s.Query, s.Log))
}
