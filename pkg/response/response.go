package response

import (
	"net/http"
)

// Response represents the standard API response structure
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Notice  string      `json:"notice,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorInfo represents error details in the response
type ErrorInfo struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// Meta describes a list response
type Meta struct {
	Total int `json:"total"`
	Live  int `json:"live"`
}

// --- Error Code Constants ---

const (
	// Client errors (4xx)
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeTooManyRequests  = "TOO_MANY_REQUESTS"
	ErrCodeValidationFailed = "VALIDATION_FAILED"

	// Server errors (5xx)
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"

	// Slot rules
	ErrCodeSlotFull       = "SLOT_FULL"
	ErrCodeExtendLimit    = "EXTEND_LIMIT"
	ErrCodeExtendTooEarly = "EXTEND_TOO_EARLY"
)

// Notices shown for soft slot errors
const (
	NoticeSlotFull       = "This slot is already full."
	NoticeExtendLimit    = "Limit — already fully extended."
	NoticeExtendTooEarly = "Too early — extend only near the end."
)

// ErrorCodeToHTTPStatus maps error codes to HTTP status codes
var ErrorCodeToHTTPStatus = map[string]int{
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeValidationFailed:   http.StatusBadRequest,
	ErrCodeInternalError:      http.StatusInternalServerError,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeSlotFull:           http.StatusConflict,
	ErrCodeExtendLimit:        http.StatusConflict,
	ErrCodeExtendTooEarly:     http.StatusConflict,
}

// GetHTTPStatus returns the HTTP status code for an error code
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeToHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// --- Response Builders ---

// Success creates a success response with data
func Success(data interface{}) *Response {
	return &Response{
		Success: true,
		Data:    data,
	}
}

// SuccessWithNotice creates a success response carrying a user-facing notice
func SuccessWithNotice(data interface{}, notice string) *Response {
	return &Response{
		Success: true,
		Data:    data,
		Notice:  notice,
	}
}

// List creates a list response; notice is shown when the list is empty
func List(data interface{}, total, live int, notice string) *Response {
	resp := &Response{
		Success: true,
		Data:    data,
		Meta:    &Meta{Total: total, Live: live},
	}
	if total == 0 {
		resp.Notice = notice
	}
	return resp
}

// Error creates an error response
func Error(code string, message string) *Response {
	return &Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// ErrorWithDetails creates an error response with additional details
func ErrorWithDetails(code string, message string, details map[string]string) *Response {
	return &Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// --- Common Error Responses ---

// BadRequest creates a bad request error response
func BadRequest(message string) *Response {
	return Error(ErrCodeBadRequest, message)
}

// NotFound creates a not found error response
func NotFound(message string) *Response {
	if message == "" {
		message = "Resource not found"
	}
	return Error(ErrCodeNotFound, message)
}

// InternalError creates an internal server error response
func InternalError(message string) *Response {
	if message == "" {
		message = "An internal error occurred"
	}
	return Error(ErrCodeInternalError, message)
}

// ValidationFailed creates a validation error response with field details
func ValidationFailed(details map[string]string) *Response {
	return ErrorWithDetails(ErrCodeValidationFailed, "Validation failed", details)
}

// TooManyRequests creates a rate limit error response
func TooManyRequests(message string) *Response {
	if message == "" {
		message = "Too many requests, please try again later"
	}
	return Error(ErrCodeTooManyRequests, message)
}

// ServiceUnavailable creates a service unavailable error response
func ServiceUnavailable(message string) *Response {
	if message == "" {
		message = "Service temporarily unavailable"
	}
	return Error(ErrCodeServiceUnavailable, message)
}

// SlotFull is returned when joining a slot at capacity
func SlotFull() *Response {
	return Error(ErrCodeSlotFull, NoticeSlotFull)
}

// ExtendLimit is returned when a slot has used all its extensions
func ExtendLimit() *Response {
	return Error(ErrCodeExtendLimit, NoticeExtendLimit)
}

// ExtendTooEarly is returned when extending outside the final window
func ExtendTooEarly() *Response {
	return Error(ErrCodeExtendTooEarly, NoticeExtendTooEarly)
}
