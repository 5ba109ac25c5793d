package storage

import (
	"context"
	"strconv"
	"time"

	"restaurant-reviews/internal/shared/eventbus"
	"restaurant-reviews/internal/shared/model"
	"restaurant-reviews/pkg/logging"
)

// Observer 存储操作观测回调（用于 Prometheus 指标）
type Observer func(operation, collection string, duration time.Duration, err error)

// Hooks 装饰器依赖
type Hooks struct {
	Notifier eventbus.WriteNotifier // 成功写入后发布事件，可为 nil
	Logger   *logging.Logger        // 记录操作耗时与通知失败，可为 nil
	Observe  Observer               // 可为 nil
}

// instrumented 为任意 DataProvider 添加日志、指标与写入通知
//
// 通知失败只记录日志，不影响操作结果。
type instrumented struct {
	next  DataProvider
	hooks Hooks
}

// Instrument 包装 p
func Instrument(p DataProvider, hooks Hooks) DataProvider {
	if hooks.Logger == nil {
		hooks.Logger = logging.Discard()
	}
	if hooks.Notifier == nil {
		hooks.Notifier = eventbus.NewNoOpEventBus()
	}
	return &instrumented{next: p, hooks: hooks}
}

// State 透传底层后端的就绪状态
func (s *instrumented) State() State {
	return StateOf(s.next)
}

func (s *instrumented) Close() error {
	return s.next.Close()
}

func (s *instrumented) observe(ctx context.Context, op, collection string, start time.Time, err error) {
	d := time.Since(start)
	s.hooks.Logger.WithContext(ctx).StoreOpLog(op, collection, d, err)
	if s.hooks.Observe != nil {
		s.hooks.Observe(op, collection, d, err)
	}
}

func (s *instrumented) notify(ctx context.Context, collection string, op eventbus.WriteOp, id string) {
	event := &eventbus.WriteEvent{
		Collection: collection,
		Op:         op,
		ID:         id,
		Timestamp:  time.Now().UTC(),
	}
	// 请求结束后 ctx 可能已取消，通知使用独立的超时
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := s.hooks.Notifier.PublishWrite(nctx, event); err != nil {
		s.hooks.Logger.WithContext(ctx).WithError(err).Warn("Write notification failed",
			"collection", collection, "op", string(op), "id", id)
	}
}

// ============================================================================
// UserStore
// ============================================================================

func (s *instrumented) ListUsers(ctx context.Context) ([]*model.User, error) {
	start := time.Now()
	users, err := s.next.ListUsers(ctx)
	s.observe(ctx, "ListUsers", CollectionUsers, start, err)
	return users, err
}

func (s *instrumented) GetUser(ctx context.Context, id string) (*model.User, error) {
	start := time.Now()
	u, err := s.next.GetUser(ctx, id)
	s.observe(ctx, "GetUser", CollectionUsers, start, err)
	return u, err
}

func (s *instrumented) CreateUser(ctx context.Context, user *model.User) error {
	start := time.Now()
	err := s.next.CreateUser(ctx, user)
	s.observe(ctx, "CreateUser", CollectionUsers, start, err)
	if err == nil {
		s.notify(ctx, CollectionUsers, eventbus.OpCreate, user.ID)
	}
	return err
}

func (s *instrumented) UpdateUser(ctx context.Context, id string, patch *model.UserPatch) (*model.User, error) {
	start := time.Now()
	u, err := s.next.UpdateUser(ctx, id, patch)
	s.observe(ctx, "UpdateUser", CollectionUsers, start, err)
	if err == nil {
		s.notify(ctx, CollectionUsers, eventbus.OpUpdate, id)
	}
	return u, err
}

func (s *instrumented) DeleteUser(ctx context.Context, id string) error {
	start := time.Now()
	err := s.next.DeleteUser(ctx, id)
	s.observe(ctx, "DeleteUser", CollectionUsers, start, err)
	if err == nil {
		s.notify(ctx, CollectionUsers, eventbus.OpDelete, id)
	}
	return err
}

// ============================================================================
// RestaurantStore
// ============================================================================

func (s *instrumented) ListRestaurants(ctx context.Context) ([]*model.Restaurant, error) {
	start := time.Now()
	rs, err := s.next.ListRestaurants(ctx)
	s.observe(ctx, "ListRestaurants", CollectionRestaurants, start, err)
	return rs, err
}

func (s *instrumented) GetRestaurant(ctx context.Context, id int64) (*model.Restaurant, error) {
	start := time.Now()
	r, err := s.next.GetRestaurant(ctx, id)
	s.observe(ctx, "GetRestaurant", CollectionRestaurants, start, err)
	return r, err
}

func (s *instrumented) CreateRestaurant(ctx context.Context, restaurant *model.Restaurant) error {
	start := time.Now()
	err := s.next.CreateRestaurant(ctx, restaurant)
	s.observe(ctx, "CreateRestaurant", CollectionRestaurants, start, err)
	if err == nil {
		s.notify(ctx, CollectionRestaurants, eventbus.OpCreate, strconv.FormatInt(restaurant.ID, 10))
	}
	return err
}

func (s *instrumented) UpdateRestaurant(ctx context.Context, id int64, patch *model.RestaurantPatch) (*model.Restaurant, error) {
	start := time.Now()
	r, err := s.next.UpdateRestaurant(ctx, id, patch)
	s.observe(ctx, "UpdateRestaurant", CollectionRestaurants, start, err)
	if err == nil {
		s.notify(ctx, CollectionRestaurants, eventbus.OpUpdate, strconv.FormatInt(id, 10))
	}
	return r, err
}

func (s *instrumented) DeleteRestaurant(ctx context.Context, id int64) error {
	start := time.Now()
	err := s.next.DeleteRestaurant(ctx, id)
	s.observe(ctx, "DeleteRestaurant", CollectionRestaurants, start, err)
	if err == nil {
		s.notify(ctx, CollectionRestaurants, eventbus.OpDelete, strconv.FormatInt(id, 10))
	}
	return err
}

// ============================================================================
// ReviewStore
// ============================================================================

func (s *instrumented) ListReviews(ctx context.Context) ([]*model.Review, error) {
	start := time.Now()
	rs, err := s.next.ListReviews(ctx)
	s.observe(ctx, "ListReviews", CollectionReviews, start, err)
	return rs, err
}

func (s *instrumented) ListReviewsByRestaurant(ctx context.Context, restaurantID int64) ([]*model.Review, error) {
	start := time.Now()
	rs, err := s.next.ListReviewsByRestaurant(ctx, restaurantID)
	s.observe(ctx, "ListReviewsByRestaurant", CollectionReviews, start, err)
	return rs, err
}

func (s *instrumented) GetReview(ctx context.Context, restaurantID int64, id string) (*model.Review, error) {
	start := time.Now()
	r, err := s.next.GetReview(ctx, restaurantID, id)
	s.observe(ctx, "GetReview", CollectionReviews, start, err)
	return r, err
}

func (s *instrumented) CreateReview(ctx context.Context, review *model.Review) error {
	start := time.Now()
	err := s.next.CreateReview(ctx, review)
	s.observe(ctx, "CreateReview", CollectionReviews, start, err)
	if err == nil {
		s.notify(ctx, CollectionReviews, eventbus.OpCreate, review.ID)
	}
	return err
}

func (s *instrumented) UpdateReview(ctx context.Context, id string, patch *model.ReviewPatch) (*model.Review, error) {
	start := time.Now()
	r, err := s.next.UpdateReview(ctx, id, patch)
	s.observe(ctx, "UpdateReview", CollectionReviews, start, err)
	if err == nil {
		s.notify(ctx, CollectionReviews, eventbus.OpUpdate, id)
	}
	return r, err
}

func (s *instrumented) DeleteReview(ctx context.Context, id string) error {
	start := time.Now()
	err := s.next.DeleteReview(ctx, id)
	s.observe(ctx, "DeleteReview", CollectionReviews, start, err)
	if err == nil {
		s.notify(ctx, CollectionReviews, eventbus.OpDelete, id)
	}
	return err
}

var (
	_ DataProvider      = (*instrumented)(nil)
	_ ReadinessReporter = (*instrumented)(nil)
)
