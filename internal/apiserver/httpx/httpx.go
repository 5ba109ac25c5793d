// Package httpx HTTP 响应与错误映射
//
// 领域错误到状态码的映射集中在这里，各领域 handler 不直接选择错误状态码。
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"restaurant-reviews/internal/shared/storage"
	"restaurant-reviews/pkg/logging"
)

// ErrBadRequest 请求体或路径参数无法解析
var ErrBadRequest = errors.New("bad request")

// MaxBodyBytes 请求体上限
const MaxBodyBytes = 1 << 20

// WriteJSON 将数据以 JSON 格式写入 HTTP 响应
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// WriteError 将错误信息以 {"error": message} 写入 HTTP 响应
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// Message 成功删除等操作的响应体
func Message(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusOK, map[string]string{"message": message})
}

// StatusFor 领域错误 → HTTP 状态码
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, storage.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, storage.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// BadRequest 构造一个可映射为 400 的错误
func BadRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBadRequest, fmt.Sprintf(format, args...))
}

// DecodeJSON 解析请求体，失败时返回 ErrBadRequest
func DecodeJSON(r *http.Request, v any) error {
	body := io.LimitReader(r.Body, MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return BadRequest("request body is empty")
		}
		return BadRequest("invalid request body: %v", err)
	}
	return nil
}

// PathID 解析路径参数中的正整数标识符
func PathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, BadRequest("%s must be a positive integer, got %q", name, raw)
	}
	return id, nil
}

// Responder 错误响应器
//
// Legacy 为 true 时所有失败都返回 404。
type Responder struct {
	Legacy bool
	Logger *logging.Logger
}

// NewResponder 创建错误响应器，logger 可为 nil
func NewResponder(legacy bool, logger *logging.Logger) *Responder {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Responder{Legacy: legacy, Logger: logger}
}

// Error 写入 err 对应的错误响应
func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		rs.Logger.WithContext(r.Context()).WithError(err).Error("Request failed",
			"method", r.Method, "path", r.URL.Path)
		if !errors.Is(err, storage.ErrPersistence) {
			message = "internal server error"
		}
	}
	if rs.Legacy {
		status = http.StatusNotFound
	}
	WriteError(w, status, message)
}
