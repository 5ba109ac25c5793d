package infra

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"restaurant-reviews/internal/config"
	"restaurant-reviews/internal/shared/eventbus"
	eventbusredis "restaurant-reviews/internal/shared/eventbus/redis"
	"restaurant-reviews/internal/shared/storage"
	"restaurant-reviews/internal/shared/storage/dbutil"
	pgdriver "restaurant-reviews/internal/shared/storage/driver/postgres"
	sqlitedriver "restaurant-reviews/internal/shared/storage/driver/sqlite"
	"restaurant-reviews/internal/shared/storage/filestore"
	"restaurant-reviews/internal/shared/storage/mongostore"
	"restaurant-reviews/internal/shared/storage/repository"
	"restaurant-reviews/pkg/logging"
)

// Open 按配置创建基础设施
//
// json 模式下存储在后台加载，Open 立即返回；其余模式在返回前完成连接与建表。
// observe 可为 nil。
func Open(ctx context.Context, cfg *config.Config, logger *logging.Logger, observe storage.Observer) (*Infrastructure, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	start := time.Now()

	backend, err := OpenBackend(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, err
	}

	hub := eventbus.NewHub(0)
	notifiers := []eventbus.WriteNotifier{
		eventbus.NewLogNotifier(logger.Component("writes")),
		hub,
	}

	infra := &Infrastructure{Hub: hub}
	if cfg.Redis.URL != "" {
		events, err := eventbusredis.NewStoreFromURL(cfg.Redis.URL, cfg.Redis.Stream)
		if err != nil {
			backend.Close()
			return nil, err
		}
		infra.Events = events
		notifiers = append(notifiers, events)
	}

	infra.Notifier = eventbus.NewMulti(notifiers...)
	infra.Provider = storage.Instrument(backend, storage.Hooks{
		Notifier: infra.Notifier,
		Logger:   logger.Component("storage"),
		Observe:  observe,
	})

	logger.WithDuration(time.Since(start)).Info("Storage backend opened", "mode", cfg.Storage.Mode, "redis", infra.Events != nil)
	return infra, nil
}

// OpenBackend 按存储模式创建未装饰的后端
func OpenBackend(ctx context.Context, sc config.StorageConfig, logger *logging.Logger) (storage.DataProvider, error) {
	switch sc.Mode {
	case config.ModeJSON, "":
		return filestore.New(sc.DataDir, logger.Component("filestore")), nil

	case config.ModeMongoDB:
		return mongostore.NewStore(ctx, sc.MongoURL, sc.MongoDB, sc.OpTimeout, logger.Component("mongostore"))

	case config.ModeSQLite:
		if err := ensureSQLiteDir(sc.SQLDSN); err != nil {
			return nil, err
		}
		db, err := sqlitedriver.Open(sc.SQLDSN)
		if err != nil {
			return nil, err
		}
		return migrate(ctx, db, sqlitedriver.NewDialect())

	case config.ModePostgres:
		db, err := pgdriver.Open(sc.SQLDSN)
		if err != nil {
			return nil, err
		}
		return migrate(ctx, db, pgdriver.NewDialect())

	default:
		return nil, fmt.Errorf("unknown storage mode %q", sc.Mode)
	}
}

// migrate 建表并创建 SQL 存储，失败时关闭连接
func migrate(ctx context.Context, db *sql.DB, dialect dbutil.Dialect) (storage.DataProvider, error) {
	if err := dialect.AutoMigrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: migrate schema: %w", dialect.DriverType(), err)
	}
	return repository.NewStore(db, dialect), nil
}

// ensureSQLiteDir 为文件型 DSN 创建父目录
func ensureSQLiteDir(dsn string) error {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" || strings.HasPrefix(dsn, ":memory:") {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create sqlite dir: %w", err)
	}
	return nil
}
