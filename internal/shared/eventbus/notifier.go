package eventbus

import (
	"context"
	"errors"

	"restaurant-reviews/pkg/logging"
)

// LogNotifier 将写入事件写入日志
type LogNotifier struct {
	logger *logging.Logger
}

// NewLogNotifier 创建日志通知器
func NewLogNotifier(logger *logging.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) PublishWrite(ctx context.Context, event *WriteEvent) error {
	n.logger.WithContext(ctx).WriteLog(event.Collection, string(event.Op), event.ID, event.Timestamp)
	return nil
}

func (n *LogNotifier) Close() error {
	return nil
}

// Multi 依次发布到多个通知器，汇总所有错误
type Multi []WriteNotifier

// NewMulti 组合多个通知器，忽略 nil
func NewMulti(notifiers ...WriteNotifier) Multi {
	m := make(Multi, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			m = append(m, n)
		}
	}
	return m
}

func (m Multi) PublishWrite(ctx context.Context, event *WriteEvent) error {
	var errs []error
	for _, n := range m {
		if err := n.PublishWrite(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var (
	_ EventBus      = (*LogNotifier)(nil)
	_ WriteNotifier = Multi(nil)
)
