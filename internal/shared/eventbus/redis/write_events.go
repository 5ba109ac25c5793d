// Package redis 写入事件操作
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"restaurant-reviews/internal/shared/eventbus"
)

// PublishWrite 发布写入事件（XADD，近似裁剪到 MaxStreamLength）
func (s *Store) PublishWrite(ctx context.Context, event *eventbus.WriteEvent) error {
	args := &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: eventbus.MaxStreamLength,
		Approx: true,
		Values: map[string]interface{}{
			"collection": event.Collection,
			"op":         string(event.Op),
			"id":         event.ID,
			"timestamp":  event.Timestamp.Format(time.RFC3339Nano),
		},
	}

	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to publish write event: %w", err)
	}
	return nil
}

// GetWrites 读取 fromID 之后的写入事件，count <= 0 表示不限
func (s *Store) GetWrites(ctx context.Context, fromID string, count int64) ([]*eventbus.WriteEvent, error) {
	if fromID == "" {
		fromID = "-"
	}

	var (
		msgs []redis.XMessage
		err  error
	)
	if count > 0 {
		msgs, err = s.client.XRangeN(ctx, s.stream, fromID, "+", count).Result()
	} else {
		msgs, err = s.client.XRange(ctx, s.stream, fromID, "+").Result()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get write events: %w", err)
	}

	events := make([]*eventbus.WriteEvent, 0, len(msgs))
	for _, msg := range msgs {
		events = append(events, decodeWrite(msg))
	}
	return events, nil
}

// GetWriteCount 获取 Stream 长度
func (s *Store) GetWriteCount(ctx context.Context) (int64, error) {
	return s.client.XLen(ctx, s.stream).Result()
}

func decodeWrite(msg redis.XMessage) *eventbus.WriteEvent {
	event := &eventbus.WriteEvent{}
	if v, ok := msg.Values["collection"].(string); ok {
		event.Collection = v
	}
	if v, ok := msg.Values["op"].(string); ok {
		event.Op = eventbus.WriteOp(v)
	}
	if v, ok := msg.Values["id"].(string); ok {
		event.ID = v
	}
	if ts, ok := msg.Values["timestamp"].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			event.Timestamp = t
		}
	}
	return event
}
