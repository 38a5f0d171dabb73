// Package pdf renders invoices as PDF documents.
package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"go.uber.org/fx"

	"github.com/fatflowers/cardbilling/internal/models"
	cfgpkg "github.com/fatflowers/cardbilling/pkg/config"
	"github.com/fatflowers/cardbilling/pkg/money"
)

const ContentType = "application/pdf"

type Renderer struct {
	sellerName string
}

func NewRenderer(cfg *cfgpkg.Config) *Renderer {
	return &Renderer{sellerName: cfg.Invoice.SellerName}
}

// Render produces a single-page A4 invoice.
func (r *Renderer) Render(inv *models.Invoice) ([]byte, error) {
	if inv == nil {
		return nil, fmt.Errorf("nil invoice")
	}
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle("Invoice "+inv.DisplayNumber(), false)
	doc.SetAuthor(r.sellerName, false)
	doc.SetCreationDate(inv.IssuedAt)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 18)
	doc.Cell(0, 10, r.sellerName)
	doc.Ln(12)

	doc.SetFont("Helvetica", "", 11)
	rows := [][2]string{
		{"Invoice", inv.DisplayNumber()},
		{"Issued", inv.IssuedAt.UTC().Format(time.DateOnly)},
		{"Business", inv.BusinessID},
		{"Subscription", inv.SubscriptionID},
		{"Payment", inv.GatewayPaymentID},
	}
	for _, row := range rows {
		doc.CellFormat(40, 7, row[0], "", 0, "L", false, 0, "")
		doc.CellFormat(0, 7, row[1], "", 1, "L", false, 0, "")
	}
	doc.Ln(6)

	doc.SetFont("Helvetica", "B", 11)
	doc.SetFillColor(235, 235, 235)
	doc.CellFormat(80, 8, "Plan", "1", 0, "L", true, 0, "")
	doc.CellFormat(60, 8, "Period", "1", 0, "L", true, 0, "")
	doc.CellFormat(0, 8, "Amount", "1", 1, "R", true, 0, "")

	doc.SetFont("Helvetica", "", 11)
	period := inv.PeriodStart.UTC().Format(time.DateOnly) + " - " + inv.PeriodEnd.UTC().Format(time.DateOnly)
	amount := money.Format(inv.Amount, inv.Currency)
	doc.CellFormat(80, 8, inv.PlanType, "1", 0, "L", false, 0, "")
	doc.CellFormat(60, 8, period, "1", 0, "L", false, 0, "")
	doc.CellFormat(0, 8, amount, "1", 1, "R", false, 0, "")

	doc.SetFont("Helvetica", "B", 11)
	doc.CellFormat(140, 8, "Total paid", "1", 0, "R", false, 0, "")
	doc.CellFormat(0, 8, amount, "1", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice %s: %w", inv.ID, err)
	}
	return buf.Bytes(), nil
}

var Module = fx.Options(
	fx.Provide(NewRenderer),
)
