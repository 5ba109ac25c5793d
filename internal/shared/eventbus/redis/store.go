// Package redis 基于 Redis Streams 的写入事件总线
package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"restaurant-reviews/internal/shared/eventbus"
)

// Store Redis 事件总线
type Store struct {
	client *redis.Client
	stream string
}

// NewStoreFromURL 从 URL 创建，如 "redis://localhost:6379/0"
func NewStoreFromURL(redisURL, stream string) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Printf("[Redis/EventBus] Connected to %s", opts.Addr)
	return NewStoreFromClient(client, stream), nil
}

// NewStoreFromClient 复用已有客户端
func NewStoreFromClient(client *redis.Client, stream string) *Store {
	if stream == "" {
		stream = eventbus.KeyStoreWrites
	}
	return &Store{client: client, stream: stream}
}

// Client 返回底层 Redis 客户端
func (s *Store) Client() *redis.Client {
	return s.client
}

// Close 关闭 Redis 连接
func (s *Store) Close() error {
	return s.client.Close()
}

var _ eventbus.EventBus = (*Store)(nil)
