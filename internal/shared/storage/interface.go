// Package storage 定义持久化存储层抽象接口
//
// 设计原则：依赖倒置 (DIP)
//   - HTTP 层只依赖接口，不知道具体实现
//   - 具体实现在子包中：filestore/, mongostore/, repository/
//   - 初始化时由 infra 包按配置选择后端并注入
//
// 所有后端遵循相同约定：
//   - Get/Update/Delete 找不到记录时返回 ErrNotFound
//   - Create 就地填充标识符与时间戳
//   - Update 只修改补丁中提供的字段，返回更新后的记录
//   - List 在集合为空时返回非 nil 的空切片
package storage

import (
	"context"

	"restaurant-reviews/internal/shared/model"
)

// 集合名称，同时用作文件名、表名与事件中的 Collection 字段
const (
	CollectionUsers       = "users"
	CollectionRestaurants = "restaurants"
	CollectionReviews     = "reviews"
)

// ============================================================================
// 领域存储接口
// ============================================================================

// UserStore 用户存储接口
//
// 读取路径上返回的 User 不含密码哈希。
type UserStore interface {
	ListUsers(ctx context.Context) ([]*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	CreateUser(ctx context.Context, user *model.User) error
	UpdateUser(ctx context.Context, id string, patch *model.UserPatch) (*model.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// RestaurantStore 餐厅存储接口
type RestaurantStore interface {
	ListRestaurants(ctx context.Context) ([]*model.Restaurant, error)
	GetRestaurant(ctx context.Context, id int64) (*model.Restaurant, error)
	CreateRestaurant(ctx context.Context, restaurant *model.Restaurant) error
	UpdateRestaurant(ctx context.Context, id int64, patch *model.RestaurantPatch) (*model.Restaurant, error)
	DeleteRestaurant(ctx context.Context, id int64) error
}

// ReviewStore 评论存储接口
type ReviewStore interface {
	ListReviews(ctx context.Context) ([]*model.Review, error)
	ListReviewsByRestaurant(ctx context.Context, restaurantID int64) ([]*model.Review, error)
	GetReview(ctx context.Context, restaurantID int64, id string) (*model.Review, error)
	CreateReview(ctx context.Context, review *model.Review) error
	UpdateReview(ctx context.Context, id string, patch *model.ReviewPatch) (*model.Review, error)
	DeleteReview(ctx context.Context, id string) error
}

// ============================================================================
// 组合接口
// ============================================================================

// DataProvider 数据提供者：三个领域存储 + 生命周期
type DataProvider interface {
	UserStore
	RestaurantStore
	ReviewStore
	Close() error
}
