// Package mongostore 实现基于 MongoDB 的 DataProvider
//
// 使用 mongo-go-driver v2，通过 bson tag 实现 model 结构体的序列化/反序列化。
// 集合的 $jsonSchema 校验器与索引在 ensureSchema 中统一管理。
package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"restaurant-reviews/internal/shared/storage"
	"restaurant-reviews/pkg/logging"
)

// Collection 名称常量
const (
	ColUsers       = storage.CollectionUsers
	ColRestaurants = storage.CollectionRestaurants
	ColReviews     = storage.CollectionReviews
	ColCounters    = "counters"
)

// DefaultOpTimeout 单次操作默认超时
const DefaultOpTimeout = 5 * time.Second

// Store 实现 storage.DataProvider 接口的 MongoDB 驱动
type Store struct {
	client    *mongo.Client
	db        *mongo.Database
	opTimeout time.Duration
	logger    *logging.Logger
}

// NewStore 创建 MongoDB 存储实例
//
// uri: MongoDB 连接 URI，如 "mongodb://localhost:27017"
// dbName: 数据库名称，如 "restaurant_reviews"
// opTimeout: 单次操作超时，<= 0 时使用 DefaultOpTimeout
func NewStore(ctx context.Context, uri, dbName string, opTimeout time.Duration, logger *logging.Logger) (*Store, error) {
	if opTimeout <= 0 {
		opTimeout = DefaultOpTimeout
	}
	if logger == nil {
		logger = logging.Discard()
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongostore: connect failed: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongostore: ping failed: %w", err)
	}

	s := &Store{
		client:    client,
		db:        client.Database(dbName),
		opTimeout: opTimeout,
		logger:    logger,
	}

	if err := s.ensureSchema(pingCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongostore: ensure schema failed: %w", err)
	}
	logger.Info("MongoDB store ready", "database", dbName)
	return s, nil
}

// Close 关闭 MongoDB 连接
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// col 获取指定 Collection
func (s *Store) col(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// op 为单次操作附加超时
func (s *Store) op(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opTimeout)
}

// nextRestaurantID 通过 counters 集合分配递增 ID
func (s *Store) nextRestaurantID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	err := s.col(ColCounters).FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: ColRestaurants}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "seq", Value: int64(1)}}}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, wrapError(err)
	}
	return counter.Seq, nil
}

var _ storage.DataProvider = (*Store)(nil)
