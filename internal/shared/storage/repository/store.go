// Package repository 数据库无关的 SQL 存储层
//
// 通过 dbutil.Dialect 接口屏蔽不同数据库的 SQL 差异，
// 所有 SQL 以 PostgreSQL 风格编写，运行时由 Dialect.Rebind() 转换。
// 每个写操作在单个事务内完成"读取 → 应用补丁 → 校验 → 写回"。
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"restaurant-reviews/internal/shared/storage"
	"restaurant-reviews/internal/shared/storage/dbutil"
)

// Store 通用 SQL 存储实现
// 实现了 storage.DataProvider 接口
type Store struct {
	db      *sql.DB
	dialect dbutil.Dialect
}

// NewStore 创建通用存储
func NewStore(db *sql.DB, dialect dbutil.Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// Close 关闭数据库连接
func (s *Store) Close() error {
	return s.db.Close()
}

// DB 返回底层数据库连接（仅用于测试）
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect 返回当前方言
func (s *Store) Dialect() dbutil.Dialect {
	return s.dialect
}

// rebind 快捷方法：将 PG 风格 SQL 转换为当前方言
func (s *Store) rebind(query string) string {
	return s.dialect.Rebind(query)
}

// forUpdate 为事务内读取追加行锁子句
func (s *Store) forUpdate(query string) string {
	return s.rebind(query + s.dialect.LockClause())
}

// wrapError 将驱动错误转换为领域错误
func (s *Store) wrapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return storage.ErrNotFound
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrValidation):
		return err
	case s.dialect.IsUniqueViolation(err):
		return storage.ErrDuplicate
	case s.dialect.IsCheckViolation(err):
		return fmt.Errorf("%w: %v", storage.ErrValidation, err)
	default:
		return fmt.Errorf("%w: %v", storage.ErrPersistence, err)
	}
}

// withTx 在事务中执行 fn，fn 返回错误时回滚
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.wrapError(err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return s.wrapError(err)
	}
	if err := tx.Commit(); err != nil {
		return s.wrapError(err)
	}
	return nil
}

// execAffected 执行写语句，影响行数为 0 时返回 ErrNotFound
func execAffected(ctx context.Context, tx *sql.Tx, query string, args ...any) error {
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// scanner 兼容 *sql.Row 与 *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

// queryList 执行查询并逐行扫描，结果为空时返回非 nil 空切片
func queryList[T any](ctx context.Context, s *Store, scan func(scanner) (*T, error), query string, args ...any) ([]*T, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, s.wrapError(err)
	}
	defer rows.Close()

	out := []*T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, s.wrapError(err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrapError(err)
	}
	return out, nil
}

var _ storage.DataProvider = (*Store)(nil)
