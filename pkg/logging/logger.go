// Package logging 结构化日志
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// ContextKey 上下文键类型
type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
)

// Logger 结构化日志器
type Logger struct {
	*slog.Logger
	base      *slog.Logger // 不含 component 属性，供 Component 派生
	component string
	closer    io.Closer
}

// Config 日志配置
type Config struct {
	Level     string `json:"level"`
	Format    string `json:"format"` // json or text
	Output    string `json:"output"` // stdout, stderr, or file path
	Component string `json:"component"`
}

// New 创建新的日志器
//
// Output 为文件路径时以追加方式打开；打开失败回退到 stdout。
func New(cfg Config) *Logger {
	var output io.Writer
	var closer io.Closer
	switch cfg.Output {
	case "stdout", "":
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			output = os.Stdout
		} else {
			output = f
			closer = f
		}
	}

	l := NewWithWriter(output, cfg)
	l.closer = closer
	return l
}

// NewWithWriter 创建写入 w 的日志器（测试中用于捕获输出）
func NewWithWriter(w io.Writer, cfg Config) *Logger {
	level := ParseLevel(cfg.Level)
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	base := slog.New(handler)
	logger := base
	if cfg.Component != "" {
		logger = base.With(slog.String("component", cfg.Component))
	}
	return &Logger{
		Logger:    logger,
		base:      base,
		component: cfg.Component,
	}
}

// ParseLevel 解析日志级别，未知值按 info 处理
func ParseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Default 创建默认日志器
func Default(component string) *Logger {
	return New(Config{
		Level:     os.Getenv("LOG_LEVEL"),
		Format:    os.Getenv("LOG_FORMAT"),
		Output:    "stdout",
		Component: component,
	})
}

// Discard 丢弃所有输出的日志器
func Discard() *Logger {
	return NewWithWriter(io.Discard, Config{Level: "error"})
}

// Close 关闭日志文件（输出到 stdout/stderr 时为空操作）
func (l *Logger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

// Component 派生一个新组件名的日志器，共享同一输出
func (l *Logger) Component(name string) *Logger {
	return &Logger{
		Logger:    l.base.With(slog.String("component", name)),
		base:      l.base,
		component: name,
	}
}

// WithContext 从上下文提取请求 ID
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if reqID, ok := ctx.Value(RequestIDKey).(string); ok && reqID != "" {
		return l.WithRequestID(reqID)
	}
	return l
}

// WithRequestID 添加请求 ID
func (l *Logger) WithRequestID(id string) *Logger {
	return &Logger{
		Logger:    l.Logger.With(slog.String("request_id", id)),
		base:      l.base,
		component: l.component,
	}
}

// WithError 添加错误信息
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return &Logger{
		Logger:    l.Logger.With(slog.String("error", err.Error())),
		base:      l.base,
		component: l.component,
	}
}

// WithDuration 添加持续时间
func (l *Logger) WithDuration(d time.Duration) *Logger {
	return &Logger{
		Logger:    l.Logger.With(slog.Float64("duration_ms", float64(d.Microseconds())/1000)),
		base:      l.base,
		component: l.component,
	}
}

// HTTPRequestLog HTTP 请求日志
func (l *Logger) HTTPRequestLog(method, path string, status int, duration time.Duration, clientIP string) {
	attrs := []any{
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("duration_ms", float64(duration.Microseconds())/1000),
		slog.String("client_ip", clientIP),
	}
	switch {
	case status >= 500:
		l.Logger.Error("HTTP request", attrs...)
	case status >= 400:
		l.Logger.Warn("HTTP request", attrs...)
	default:
		l.Logger.Info("HTTP request", attrs...)
	}
}

// StoreOpLog 存储操作日志
func (l *Logger) StoreOpLog(operation, collection string, duration time.Duration, err error) {
	attrs := []any{
		slog.String("operation", operation),
		slog.String("collection", collection),
		slog.Float64("duration_ms", float64(duration.Microseconds())/1000),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		l.Logger.Warn("Store operation failed", attrs...)
	} else {
		l.Logger.Debug("Store operation", attrs...)
	}
}

// WriteLog 数据变更日志
func (l *Logger) WriteLog(collection, op, id string, at time.Time) {
	l.Logger.Info("Store write",
		slog.String("collection", collection),
		slog.String("op", op),
		slog.String("id", id),
		slog.Time("at", at),
	)
}
