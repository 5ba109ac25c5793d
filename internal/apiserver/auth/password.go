// Package auth 密码哈希
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"restaurant-reviews/internal/shared/model"
)

// DefaultCost bcrypt 默认代价
const DefaultCost = 12

// MaxPasswordBytes bcrypt 能处理的最大密码长度
const MaxPasswordBytes = 72

// Hasher 使用 bcrypt 哈希与校验密码
type Hasher struct {
	Cost int
}

// NewHasher 创建哈希器，cost 超出 bcrypt 允许范围时使用 DefaultCost
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{Cost: cost}
}

// ValidatePassword 校验密码非空且不超过 bcrypt 长度上限
func ValidatePassword(password string) error {
	if password == "" {
		return &model.ValidationError{Field: "password", Message: "is required"}
	}
	if len(password) > MaxPasswordBytes {
		return &model.ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("must be at most %d bytes", MaxPasswordBytes),
		}
	}
	return nil
}

// Hash 哈希密码，非法密码返回 *model.ValidationError
func (h *Hasher) Hash(password string) (string, error) {
	if err := ValidatePassword(password); err != nil {
		return "", err
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", &model.ValidationError{Field: "password", Message: err.Error()}
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(bytes), nil
}

// Check 验证密码
func (h *Hasher) Check(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
