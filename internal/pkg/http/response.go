package http

// ErrorResponse 错误响应（所有API共用）
type ErrorResponse struct {
	Code    int    `json:"code"`             // 业务错误码（非0表示错误）
	Kind    string `json:"kind,omitempty"`   // 机器可读的错误类别
	Message string `json:"message"`          // 错误消息
	Detail  string `json:"detail,omitempty"` // 错误详情（可选）
}

// SuccessResponse 成功响应（所有API共用）
type SuccessResponse struct {
	Code    int         `json:"code"`           // 状态码（0表示成功）
	Message string      `json:"message"`        // 响应消息
	Data    interface{} `json:"data,omitempty"` // 响应数据（可选）
}

// 通用错误类别（apperr 之外的请求层错误）
const (
	KindInvalidRequest = "invalid_request"
	KindUnauthorized   = "unauthorized"
	KindNotFound       = "not_found"
	KindInternal       = "internal_error"
)

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(message string, data interface{}) *SuccessResponse {
	return &SuccessResponse{
		Code:    0,
		Message: message,
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, kind, message string, detail ...string) *ErrorResponse {
	resp := &ErrorResponse{
		Code:    code,
		Kind:    kind,
		Message: message,
	}
	if len(detail) > 0 && detail[0] != "" {
		resp.Detail = detail[0]
	}
	return resp
}
