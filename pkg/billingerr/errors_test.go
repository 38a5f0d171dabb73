package billingerr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/fatflowers/cardbilling/pkg/response"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   response.APIResponseCode
	}{
		{"invalid plan", fmt.Errorf("resolve plan: %w", ErrInvalidPlan), http.StatusBadRequest, response.APIResponseCodeInvalidPlan},
		{"signature", ErrSignatureInvalid, http.StatusBadRequest, response.APIResponseCodeSignatureInvalid},
		{"subscription not found", fmt.Errorf("settle: %w", ErrSubscriptionNotFound), http.StatusNotFound, response.APIResponseCodeSubscriptionNotFound},
		{"transition", ErrInvalidTransition, http.StatusConflict, response.APIResponseCodeInvalidTransition},
		{"render pending", ErrRenderPending, http.StatusAccepted, response.APIResponseCodeRenderPending},
		{"gateway", fmt.Errorf("open order: %w", ErrGatewayUnavailable), http.StatusServiceUnavailable, response.APIResponseCodeGatewayUnavailable},
		{"internal", errors.New("connection reset"), http.StatusInternalServerError, response.APIResponseCodeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := Classify(tt.err)
			require.Equal(t, tt.wantStatus, status)
			require.Equal(t, tt.wantCode, code)
		})
	}
	require.True(t, IsInternal(errors.New("boom")))
	require.False(t, IsInternal(ErrNotFound))
}
