// Package eventbus 事件总线类型定义
package eventbus

import (
	"time"
)

// ============================================================================
// 事件类型
// ============================================================================

// WriteOp 写操作类型
type WriteOp string

const (
	OpCreate WriteOp = "create"
	OpUpdate WriteOp = "update"
	OpDelete WriteOp = "delete"
)

// WriteEvent 数据变更事件
type WriteEvent struct {
	Collection string    `json:"collection"`
	Op         WriteOp   `json:"op"`
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
}

// ============================================================================
// Key 前缀和常量
// ============================================================================

const (
	// KeyStoreWrites 写入事件 Stream 名称
	KeyStoreWrites = "store_writes"

	// Stream 最大长度
	MaxStreamLength = 1000
)
