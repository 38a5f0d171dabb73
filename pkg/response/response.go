package response

type APIResponseCode int

const (
	APIResponseCodeOK                   APIResponseCode = 0
	APIResponseCodeRenderPending        APIResponseCode = 20200
	APIResponseCodeBadRequest           APIResponseCode = 40000
	APIResponseCodeInvalidPlan          APIResponseCode = 40001
	APIResponseCodeSignatureInvalid     APIResponseCode = 40002
	APIResponseCodeUnauthorized         APIResponseCode = 40100
	APIResponseCodeNotFound             APIResponseCode = 40400
	APIResponseCodeSubscriptionNotFound APIResponseCode = 40401
	APIResponseCodeInvalidTransition    APIResponseCode = 40900
	APIResponseCodeError                APIResponseCode = 50000
	APIResponseCodeGatewayUnavailable   APIResponseCode = 50300
)

var codeToMsg = map[APIResponseCode]string{
	APIResponseCodeOK:                   "ok",
	APIResponseCodeRenderPending:        "invoice is being generated, retry later",
	APIResponseCodeBadRequest:           "bad request",
	APIResponseCodeInvalidPlan:          "invalid plan",
	APIResponseCodeSignatureInvalid:     "payment signature invalid",
	APIResponseCodeUnauthorized:         "unauthorized",
	APIResponseCodeNotFound:             "not found",
	APIResponseCodeSubscriptionNotFound: "subscription not found",
	APIResponseCodeInvalidTransition:    "invalid subscription transition",
	APIResponseCodeError:                "unexpected error",
	APIResponseCodeGatewayUnavailable:   "payment gateway unavailable",
}

// Message returns the default message for code.
func Message(code APIResponseCode) string {
	if msg, ok := codeToMsg[code]; ok {
		return msg
	}
	return codeToMsg[APIResponseCodeError]
}

// APIResponse is the generic response envelope used by HTTP APIs.
// Use OKT / ErrorT helpers to construct instances.
type APIResponse[T any] struct {
	Code    APIResponseCode `json:"code"`
	Message string          `json:"message"`
	Data    T               `json:"data"`
}

// OKT returns a successful response with data.
func OKT[T any](data T) *APIResponse[T] {
	return &APIResponse[T]{Code: APIResponseCodeOK, Message: Message(APIResponseCodeOK), Data: data}
}

// ErrorT returns an error response with message and optional data.
func ErrorT[T any](code APIResponseCode, data T) *APIResponse[T] {
	return &APIResponse[T]{Code: code, Message: Message(code), Data: data}
}
