package handler

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the envelope every non-2xx API response uses:
// {"error":{"code":"...","message":"..."}}. Codes mirror the service
// sentinels (invalid_state, not_found, transaction_conflict,
// storage_unavailable) so clients can branch without parsing messages.
type ErrorResponse struct {
	Error errorPayload `json:"error"`
}

func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: errorPayload{
			Code:    code,
			Message: message,
		},
	}
}
