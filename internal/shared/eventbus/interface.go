// Package eventbus 数据变更事件总线
//
// 存储层在每次成功写入后发布 WriteEvent，订阅方包括：
//   - LogNotifier：写入日志
//   - Hub：进程内扇出，驱动 /ws/changes 实时推送
//   - redis.Store：写入 Redis Stream，供外部消费者读取
package eventbus

import (
	"context"
)

// ============================================================================
// 事件总线接口定义
// ============================================================================

// WriteNotifier 写入事件发布接口
type WriteNotifier interface {
	PublishWrite(ctx context.Context, event *WriteEvent) error
}

// WriteSubscriber 写入事件订阅接口
//
// 返回的通道在 ctx 结束后关闭。
type WriteSubscriber interface {
	SubscribeWrites(ctx context.Context) (<-chan *WriteEvent, error)
}

// ============================================================================
// 组合接口
// ============================================================================

// EventBus 事件总线组合接口
type EventBus interface {
	WriteNotifier
	Close() error
}
