package handlers

import (
	"github.com/fatflowers/cardbilling/internal/app/service/order"
	"github.com/fatflowers/cardbilling/internal/app/service/payment"
	"github.com/fatflowers/cardbilling/internal/app/service/query"
	"github.com/fatflowers/cardbilling/internal/app/service/statistics"
	"github.com/fatflowers/cardbilling/internal/app/service/webhook"
	"github.com/fatflowers/cardbilling/internal/models"
	"github.com/fatflowers/cardbilling/pkg/response"
)

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

type RespPlans struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []PlanItem               `json:"data"`
}

type RespCreateOrder struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    order.CreateOrderResult  `json:"data"`
}

type RespVerifyPayment struct {
	Code    response.APIResponseCode   `json:"code"`
	Message string                     `json:"message"`
	Data    payment.VerificationResult `json:"data"`
}

type RespSubscription struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    *query.SubscriptionView  `json:"data"`
}

type RespCancelSubscription struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    models.Subscription      `json:"data"`
}

type RespInvoices struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []InvoiceItem            `json:"data"`
}

type RespListInvoices struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    ListInvoicesResponse     `json:"data"`
}

type RespBillingStatistic struct {
	Code    response.APIResponseCode     `json:"code"`
	Message string                       `json:"message"`
	Data    statistics.StatisticResponse `json:"data"`
}

type RespWebhook struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    webhook.Outcome          `json:"data"`
}
