package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/fatflowers/cardbilling/internal/app/service/invoice"
	"github.com/fatflowers/cardbilling/internal/app/service/statistics"
	"github.com/fatflowers/cardbilling/pkg/response"
)

type InvoiceScanner interface {
	Scan(ctx context.Context, req *invoice.ScanRequest) (*invoice.ScanResponse, error)
}

type StatisticsProvider interface {
	GetBillingStatistic(ctx context.Context, req *statistics.StatisticRequest) (*statistics.StatisticResponse, error)
}

type ListInvoicesResponse struct {
	Items []*InvoiceItem `json:"items"`
	Total int64          `json:"total"`
}

// @Summary      List Invoices (Admin)
// @Description  Retrieves a paginated and filterable list of all invoices.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body invoice.ScanRequest true "List invoice request with filters, pagination, and sorting"
// @Success      200  {object}  handlers.RespListInvoices
// @Router       /api/v1/admin/list_invoices [post]
func ApiAdminListInvoices(svc InvoiceScanner, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req invoice.ScanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		res, err := svc.Scan(c.Request.Context(), &req)
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(&ListInvoicesResponse{Items: lo.Map(res.Items, toInvoiceItem), Total: res.Total}))
	}
}

// @Summary      Get Billing Statistics (Admin)
// @Description  Retrieves invoice, revenue and subscription statistics.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body statistics.StatisticRequest true "Statistic request parameters"
// @Success      200  {object}  handlers.RespBillingStatistic
// @Router       /api/v1/admin/get_billing_statistic [post]
func ApiGetBillingStatistic(svc StatisticsProvider, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statistics.StatisticRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		res, err := svc.GetBillingStatistic(c.Request.Context(), &req)
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterAdminRoutes(r gin.IRouter, invoices InvoiceScanner, stats StatisticsProvider, log *zap.SugaredLogger) {
	r.POST("/list_invoices", ApiAdminListInvoices(invoices, log))
	r.POST("/get_billing_statistic", ApiGetBillingStatistic(stats, log))
}
