package eventbus

import (
	"context"
	"sync"
	"sync/atomic"
)

// Hub 进程内扇出
//
// 每个订阅者拥有独立缓冲通道；缓冲满时丢弃该订阅者的事件，
// 发布方永不阻塞。
type Hub struct {
	mu      sync.RWMutex
	subs    map[chan *WriteEvent]struct{}
	buffer  int
	dropped atomic.Int64
	closed  bool
}

// NewHub 创建 Hub，buffer 为每个订阅者的通道容量
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 64
	}
	return &Hub{
		subs:   make(map[chan *WriteEvent]struct{}),
		buffer: buffer,
	}
}

// PublishWrite 将事件投递给所有订阅者
func (h *Hub) PublishWrite(ctx context.Context, event *WriteEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- event:
		default:
			h.dropped.Add(1)
		}
	}
	return nil
}

// SubscribeWrites 订阅写入事件，ctx 结束时自动退订
func (h *Hub) SubscribeWrites(ctx context.Context) (<-chan *WriteEvent, error) {
	ch := make(chan *WriteEvent, h.buffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, nil
	}
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.unsubscribe(ch)
	}()
	return ch, nil
}

func (h *Hub) unsubscribe(ch chan *WriteEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
}

// Subscribers 当前订阅者数量
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Dropped 因订阅者缓冲已满而丢弃的事件数
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

// Close 关闭所有订阅通道
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
	h.closed = true
	return nil
}

var (
	_ EventBus        = (*Hub)(nil)
	_ WriteSubscriber = (*Hub)(nil)
)
