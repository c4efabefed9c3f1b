package response

import (
	"net/http"

	"usercenter/internal/domain"
)

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "rid"

// 错误类型 -> HTTP 状态码
var kindStatus = map[domain.Kind]int{
	domain.KindInvalidInput: http.StatusBadRequest,
	domain.KindUnauthorized: http.StatusUnauthorized,
	domain.KindForbidden:    http.StatusForbidden,
	domain.KindNotFound:     http.StatusNotFound,
	domain.KindDuplicate:    http.StatusConflict,
	domain.KindInternal:     http.StatusInternalServerError,
}

// StatusOf maps an error kind to its HTTP status. Unknown kinds are 500.
func StatusOf(k domain.Kind) int {
	if s, ok := kindStatus[k]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// 默认文案，错误本身没有 message 时使用
var statusMsg = map[int]string{
	http.StatusBadRequest:          "Bad request",
	http.StatusUnauthorized:        "Unauthorized",
	http.StatusForbidden:           "Forbidden",
	http.StatusNotFound:            "Not found",
	http.StatusConflict:            "Resource already exists",
	http.StatusInternalServerError: "Internal server error",
}

func defaultMsg(status int) string {
	if m, ok := statusMsg[status]; ok {
		return m
	}
	return http.StatusText(status)
}
