package errors

const (
	HttpInternalError           = "internal_error"
	HttpInvalidRequestError     = "invalid_request"
	HttpInvalidItemKindError    = "invalid_item_kind"
	HttpInvalidPriceError       = "invalid_price"
	HttpIndexOutOfRangeError    = "index_out_of_range"
	HttpUnknownSlotError        = "unknown_slot"
	HttpInsufficientFundsError  = "insufficient_funds"
	HttpGatewayUnavailableError = "gateway_unavailable"
)

// ErrorResponse is the error response body for all API errors.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}
