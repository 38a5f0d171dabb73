package payment

import (
	"gorm.io/datatypes"

	"github.com/fatflowers/cardbilling/internal/app/service/attemptlog"
)

// attemptData keeps the proof for review without the signature itself.
func attemptData(v any) datatypes.JSON {
	if req, ok := v.(*VerifyRequest); ok {
		return attemptlog.JSON(map[string]any{
			"gateway_order_id":   req.GatewayOrderID,
			"gateway_payment_id": req.GatewayPaymentID,
			"business_id":        req.BusinessID,
			"signature_len":      len(req.Signature),
		})
	}
	return attemptlog.JSON(v)
}
