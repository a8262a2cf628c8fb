package models

// APIStatus is the status field of an API response envelope.
type APIStatus string

const (
	APIStatusOK    APIStatus = "ok"
	APIStatusError APIStatus = "error"
)

// APIResponse is the envelope every API endpoint serves: a status, an
// optional human-readable message, and an optional result payload.
type APIResponse struct {
	Status  APIStatus   `json:"status"`
	Message string      `json:"message,omitempty"`
	Result  interface{} `json:"result,omitempty"`
}

// Success wraps a result payload in an ok envelope.
func Success(result interface{}) APIResponse {
	return APIResponse{Status: APIStatusOK, Result: result}
}

// SuccessWithMessage wraps a message and optional result in an ok envelope.
func SuccessWithMessage(message string, result interface{}) APIResponse {
	return APIResponse{Status: APIStatusOK, Message: message, Result: result}
}

// Error builds an error envelope carrying a user-facing message.
func Error(message string) APIResponse {
	return APIResponse{Status: APIStatusError, Message: message}
}
