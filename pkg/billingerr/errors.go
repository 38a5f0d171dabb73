// Package billingerr holds the error kinds surfaced by the billing engine and
// their mapping to HTTP statuses and envelope codes.
package billingerr

import (
	"errors"
	"net/http"

	"github.com/fatflowers/cardbilling/pkg/response"
)

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrInvalidPlan          = errors.New("invalid plan")
	ErrGatewayUnavailable   = errors.New("payment gateway unavailable")
	ErrSignatureInvalid     = errors.New("payment signature invalid")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrInvalidTransition    = errors.New("invalid subscription transition")
	ErrRenderPending        = errors.New("invoice render pending")
	ErrNotFound             = errors.New("not found")
	ErrUnauthorized         = errors.New("unauthorized")
)

type kind struct {
	err    error
	status int
	code   response.APIResponseCode
}

// Order matters: the first sentinel matched by errors.Is wins.
var kinds = []kind{
	{ErrInvalidInput, http.StatusBadRequest, response.APIResponseCodeBadRequest},
	{ErrInvalidPlan, http.StatusBadRequest, response.APIResponseCodeInvalidPlan},
	{ErrSignatureInvalid, http.StatusBadRequest, response.APIResponseCodeSignatureInvalid},
	{ErrUnauthorized, http.StatusUnauthorized, response.APIResponseCodeUnauthorized},
	{ErrSubscriptionNotFound, http.StatusNotFound, response.APIResponseCodeSubscriptionNotFound},
	{ErrNotFound, http.StatusNotFound, response.APIResponseCodeNotFound},
	{ErrInvalidTransition, http.StatusConflict, response.APIResponseCodeInvalidTransition},
	{ErrRenderPending, http.StatusAccepted, response.APIResponseCodeRenderPending},
	{ErrGatewayUnavailable, http.StatusServiceUnavailable, response.APIResponseCodeGatewayUnavailable},
}

// Classify maps err to an HTTP status and envelope code. Unknown errors are internal.
func Classify(err error) (int, response.APIResponseCode) {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.status, k.code
		}
	}
	return http.StatusInternalServerError, response.APIResponseCodeError
}

// IsInternal reports whether err does not match any known kind.
func IsInternal(err error) bool {
	_, code := Classify(err)
	return code == response.APIResponseCodeError
}
