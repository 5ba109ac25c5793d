// Package server 路由配置与核心基础设施
//
// 本文件定义 HTTP API 路由，将请求分发到各领域独立包：
//   - user: 用户
//   - restaurant: 餐厅
//   - review: 评论
//
// 仍保留在本包的模块：
//   - changes_ws.go: 数据变更 WebSocket 推送
//   - metrics.go: Prometheus 指标
//   - middleware.go: panic 恢复、请求日志、CORS
package server

import (
	"net/http"

	"restaurant-reviews/internal/apiserver/auth"
	"restaurant-reviews/internal/apiserver/httpx"
	"restaurant-reviews/internal/apiserver/restaurant"
	"restaurant-reviews/internal/apiserver/review"
	"restaurant-reviews/internal/apiserver/user"
	"restaurant-reviews/internal/shared/eventbus"
	"restaurant-reviews/internal/shared/storage"
	"restaurant-reviews/pkg/logging"
)

// Options Handler 依赖
type Options struct {
	Provider storage.DataProvider     // 必填
	Changes  eventbus.WriteSubscriber // 为 nil 时 /ws/changes 返回 503
	Metrics  *Metrics                 // 为 nil 时创建新实例
	Logger   *logging.Logger          // 为 nil 时丢弃日志
	Hasher   user.PasswordHasher      // 为 nil 时使用 bcrypt 默认代价

	APIPrefix         string
	LegacyErrorStatus bool
	AllowedOrigins    []string
}

// Handler API 处理器
type Handler struct {
	provider storage.DataProvider
	changes  eventbus.WriteSubscriber
	metrics  *Metrics
	logger   *logging.Logger
	hasher   user.PasswordHasher

	prefix  string
	legacy  bool
	origins []string
}

// NewHandler 创建 Handler 实例
func NewHandler(opts Options) *Handler {
	h := &Handler{
		provider: opts.Provider,
		changes:  opts.Changes,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		hasher:   opts.Hasher,
		prefix:   opts.APIPrefix,
		legacy:   opts.LegacyErrorStatus,
		origins:  opts.AllowedOrigins,
	}
	if h.metrics == nil {
		h.metrics = NewMetrics("reviews")
	}
	if h.logger == nil {
		h.logger = logging.Discard()
	}
	if h.hasher == nil {
		h.hasher = auth.NewHasher(auth.DefaultCost)
	}
	if len(h.origins) == 0 {
		h.origins = []string{"*"}
	}
	return h
}

// GetMetrics 返回指标实例
func (h *Handler) GetMetrics() *Metrics {
	return h.metrics
}

// Router 返回配置好的 HTTP 路由
//
// 路由规则（{prefix} 默认为 /api）：
//
// 运维:
//   - GET /health  - 存活检查
//   - GET /ready   - 就绪检查（后端加载完成前返回 503）
//   - GET /metrics - Prometheus 指标
//
// 用户 (User):
//   - GET    {prefix}/users
//   - POST   {prefix}/users
//   - GET    {prefix}/users/{id}
//   - PUT    {prefix}/users/{id}
//   - DELETE {prefix}/users/{id}
//
// 餐厅 (Restaurant):
//   - GET    {prefix}/restaurants
//   - POST   {prefix}/restaurants
//   - GET    {prefix}/restaurants/{id}
//   - PUT    {prefix}/restaurants/{id}
//   - DELETE {prefix}/restaurants/{id}
//
// 评论 (Review):
//   - GET    {prefix}/reviews
//   - POST   {prefix}/reviews
//   - GET    {prefix}/reviews/{restaurant}
//   - GET    {prefix}/reviews/{restaurant}/{id}
//   - PUT    {prefix}/reviews/{id}
//   - DELETE {prefix}/reviews/{id}
//
// WebSocket:
//   - GET /ws/changes - 数据变更实时推送
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ready", h.Ready)
	mux.Handle("GET /metrics", h.metrics.MetricsHandler())

	resp := httpx.NewResponder(h.legacy, h.logger.Component("http"))
	user.NewHandler(h.provider, h.hasher, resp).RegisterRoutes(mux, h.prefix)
	restaurant.NewHandler(h.provider, resp).RegisterRoutes(mux, h.prefix)
	review.NewHandler(h.provider, resp).RegisterRoutes(mux, h.prefix)

	// 中间件顺序（外 → 内）：panic 恢复 → 请求日志 → 指标 → CORS
	api := jsonFallback(mux)
	api = corsMiddleware(h.origins)(api)
	api = h.metrics.MetricsMiddleware(api)
	api = loggingMiddleware(h.logger.Component("http"))(api)
	api = recoverMiddleware(h.logger)(api)

	// 创建顶层路由，WebSocket 绕过包装 ResponseWriter 的中间件（避免 http.Hijacker 问题）
	topMux := http.NewServeMux()
	topMux.Handle("GET /ws/changes", recoverMiddleware(h.logger)(http.HandlerFunc(h.ServeChanges)))
	topMux.Handle("/", api)
	return topMux
}

// Health 存活检查
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready 就绪检查
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	state := storage.StateOf(h.provider)
	status := http.StatusOK
	if state != storage.StateReady {
		status = http.StatusServiceUnavailable
	}
	httpx.WriteJSON(w, status, map[string]string{"status": state.String()})
}
