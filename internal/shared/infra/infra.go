// Package infra 基础设施聚合层
//
// 按配置统一初始化并注入：
//   - Provider：持久化存储（json / mongodb / sqlite / postgres），已包装日志、指标与写入通知
//   - Hub：进程内写入事件扇出（/ws/changes）
//   - Events：Redis Stream 写入事件（可选）
package infra

import (
	"errors"

	"restaurant-reviews/internal/shared/eventbus"
	eventbusredis "restaurant-reviews/internal/shared/eventbus/redis"
	"restaurant-reviews/internal/shared/storage"
)

// Infrastructure 基础设施聚合结构
type Infrastructure struct {
	// Provider 已装饰的数据提供者
	Provider storage.DataProvider

	// Hub 进程内写入事件扇出
	Hub *eventbus.Hub

	// Events Redis 写入事件流，未配置 REDIS_URL 时为 nil
	Events *eventbusredis.Store

	// Notifier 存储装饰器使用的组合通知器
	Notifier eventbus.WriteNotifier
}

// Close 关闭所有基础设施连接
//
// 先关闭存储，再关闭事件通道，保证关闭过程中的最后一次写入仍能通知。
func (i *Infrastructure) Close() error {
	var errs []error

	if i.Provider != nil {
		if err := i.Provider.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if i.Hub != nil {
		if err := i.Hub.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if i.Events != nil {
		if err := i.Events.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// NewNoOpInfrastructure 创建只含 Hub 的基础设施（用于测试）
func NewNoOpInfrastructure(p storage.DataProvider) *Infrastructure {
	hub := eventbus.NewHub(0)
	return &Infrastructure{
		Provider: storage.Instrument(p, storage.Hooks{Notifier: hub}),
		Hub:      hub,
		Notifier: hub,
	}
}
