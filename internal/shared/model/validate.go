// Package model 领域模型：用户、餐厅、评论
//
// 所有存储后端共用同一套字段校验，校验失败返回 *ValidationError，
// 可通过 errors.Is(err, ErrInvalid) 判断。
package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ErrInvalid 字段校验失败
var ErrInvalid = errors.New("validation failed")

// ValidationError 单个字段的校验错误
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

// EmailPattern 邮箱格式
const EmailPattern = `^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`

var emailRe = regexp.MustCompile(EmailPattern)

// NormalizeEmail 去除首尾空白并转小写
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return &ValidationError{Field: "email", Message: "is required"}
	}
	if !emailRe.MatchString(email) {
		return &ValidationError{Field: "email", Message: fmt.Sprintf("%q is not a valid email address", email)}
	}
	return nil
}

func requireString(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Message: "is required"}
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// TimeLayout ISO-8601 UTC 毫秒精度
const TimeLayout = "2006-01-02T15:04:05.000Z"

// Now 当前时间的 ISO-8601 字符串
func Now() string {
	return FormatTime(time.Now())
}

// FormatTime 将 t 格式化为 TimeLayout
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}
