// Package storage 定义存储层领域错误
//
// 这些错误用于隔离 HTTP 层与底层存储引擎的错误类型，
// 各驱动实现（filestore/mongostore/repository）负责将底层错误转换为这些领域错误，
// 并用 %w 包装以保留上下文。
package storage

import (
	"errors"

	"restaurant-reviews/internal/shared/model"
)

var (
	// ErrNotFound 实体不存在（或评论不属于指定餐厅）
	// 替代 sql.ErrNoRows / mongo.ErrNoDocuments
	ErrNotFound = errors.New("entity not found")

	// ErrValidation 字段校验失败，与 model.ErrInvalid 为同一个值
	ErrValidation = model.ErrInvalid

	// ErrDuplicate 唯一键冲突（如重复邮箱）
	ErrDuplicate = errors.New("duplicate: entity already exists")

	// ErrUnavailable 后端尚未就绪、加载失败或已关闭
	ErrUnavailable = errors.New("storage unavailable")

	// ErrPersistence 写入失败、超时或网络错误
	ErrPersistence = errors.New("storage persistence failure")
)
