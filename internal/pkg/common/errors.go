package common

import (
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code    string `json:"code"`              // 錯誤代碼
	Message string `json:"message"`           // 錯誤信息
	Details string `json:"details,omitempty"` // 詳細信息（僅在開發模式顯示）
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap 回傳原始錯誤
func (e *CustomError) Unwrap() error {
	return e.Err
}

// Is 以錯誤代碼比對，讓 errors.Is 可以對包裝過的錯誤生效
func (e *CustomError) Is(target error) bool {
	t, ok := target.(*CustomError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithErr 產生帶有原始錯誤的副本，不修改預定義錯誤
func (e *CustomError) WithErr(err error) *CustomError {
	return &CustomError{
		Code:    e.Code,
		Message: e.Message,
		Status:  e.Status,
		Err:     err,
	}
}

// Response 轉換為 API 錯誤響應
func (e *CustomError) Response(debug bool) ErrorResponse {
	resp := ErrorResponse{Code: e.Code, Message: e.Message}
	if debug && e.Err != nil {
		resp.Details = e.Err.Error()
	}
	return resp
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// 預定義錯誤代碼
const (
	ErrCodeInvalidRequest  = "INVALID_REQUEST"   // 400
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS" // 429
	ErrCodeInternalError   = "INTERNAL_ERROR"    // 500
	ErrCodeGatewayTimeout  = "GATEWAY_TIMEOUT"   // 504
	ErrCodePayloadTooLarge = "PAYLOAD_TOO_LARGE" // 413

	// 匯入流程
	ErrCodeNoTextDetected            = "NO_TEXT_DETECTED"
	ErrCodeEmptyContent              = "EMPTY_CONTENT"
	ErrCodeClassificationUnavailable = "CLASSIFICATION_UNAVAILABLE"
	ErrCodeInvalidURL                = "INVALID_URL"
	ErrCodeNetworkError              = "NETWORK_ERROR"
	ErrCodeParsingFailed             = "PARSING_FAILED"
	ErrCodeNoRecipeFound             = "NO_RECIPE_FOUND"
	ErrCodePipelineBusy              = "PIPELINE_BUSY"
	ErrCodeQueueFull                 = "QUEUE_FULL"
	ErrCodeInvalidImage              = "INVALID_IMAGE"
)

// 預定義錯誤
var (
	ErrInvalidRequest  = NewError(ErrCodeInvalidRequest, "invalid request", http.StatusBadRequest, nil)
	ErrTooManyRequests = NewError(ErrCodeTooManyRequests, "too many requests", http.StatusTooManyRequests, nil)
	ErrInternalError   = NewError(ErrCodeInternalError, "internal server error", http.StatusInternalServerError, nil)
	ErrGatewayTimeout  = NewError(ErrCodeGatewayTimeout, "request timed out", http.StatusGatewayTimeout, nil)

	ErrNoTextDetected            = NewError(ErrCodeNoTextDetected, "no text detected in source", http.StatusUnprocessableEntity, nil)
	ErrEmptyContent              = NewError(ErrCodeEmptyContent, "all lines were filtered as artifacts", http.StatusUnprocessableEntity, nil)
	ErrClassificationUnavailable = NewError(ErrCodeClassificationUnavailable, "line classifier unavailable", http.StatusServiceUnavailable, nil)
	ErrInvalidURL                = NewError(ErrCodeInvalidURL, "invalid recipe url", http.StatusBadRequest, nil)
	ErrNetwork                   = NewError(ErrCodeNetworkError, "failed to fetch recipe page", http.StatusBadGateway, nil)
	ErrParsingFailed             = NewError(ErrCodeParsingFailed, "failed to parse recipe page", http.StatusUnprocessableEntity, nil)
	ErrNoRecipeFound             = NewError(ErrCodeNoRecipeFound, "no recipe found on page", http.StatusNotFound, nil)
	ErrPipelineBusy              = NewError(ErrCodePipelineBusy, "pipeline run already in progress", http.StatusConflict, nil)
	ErrQueueFull                 = NewError(ErrCodeQueueFull, "import queue is full", http.StatusServiceUnavailable, nil)
	ErrInvalidImage              = NewError(ErrCodeInvalidImage, "invalid image payload", http.StatusBadRequest, nil)
)
