// Package eventbus 事件总线 mock 实现
package eventbus

import (
	"context"
	"sync"
)

// ============================================================================
// NoOpEventBus - 空操作的 EventBus 实现（用于测试）
// ============================================================================

// NoOpEventBus 是一个不做任何操作的 EventBus 实现
type NoOpEventBus struct{}

// NewNoOpEventBus 创建 NoOpEventBus 实例
func NewNoOpEventBus() *NoOpEventBus {
	return &NoOpEventBus{}
}

// Close 关闭事件总线
func (e *NoOpEventBus) Close() error {
	return nil
}

func (e *NoOpEventBus) PublishWrite(ctx context.Context, event *WriteEvent) error {
	return nil
}

// ============================================================================
// Recorder - 记录所有事件（用于断言）
// ============================================================================

// Recorder 记录收到的全部事件
type Recorder struct {
	mu     sync.Mutex
	events []*WriteEvent
	Err    error // 非 nil 时 PublishWrite 返回该错误
}

func (r *Recorder) PublishWrite(ctx context.Context, event *WriteEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *event
	r.events = append(r.events, &cp)
	return r.Err
}

// Events 返回已记录事件的副本
func (r *Recorder) Events() []*WriteEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*WriteEvent, len(r.events))
	copy(out, r.events)
	return out
}

func (r *Recorder) Close() error {
	return nil
}

// 确保实现了 EventBus 接口
var (
	_ EventBus = (*NoOpEventBus)(nil)
	_ EventBus = (*Recorder)(nil)
)
