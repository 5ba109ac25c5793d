// Package filestore 实现基于 JSON 文件的 DataProvider
//
// 数据布局：
//
//	data_dir/
//	  users.json          # 用户集合（含密码哈希）
//	  restaurants.json    # 餐厅集合
//	  reviews.json        # 评论集合
//	  _sequences.json     # 餐厅 ID 序列
//
// 启动时异步加载三个集合，加载完成前所有操作等待就绪（受调用方 ctx 约束）。
// 每次写操作在集合写锁内完成"修改副本 → 整体落盘 → 替换内存"，
// 落盘失败时内存保持原状。
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"restaurant-reviews/internal/shared/model"
	"restaurant-reviews/internal/shared/storage"
	"restaurant-reviews/pkg/logging"
)

const sequencesFile = "_sequences.json"

// userRecord 落盘的用户记录，比 model.User 多出密码哈希
type userRecord struct {
	model.User
	Password string `json:"password,omitempty"`
}

func (r *userRecord) toModel() *model.User {
	u := r.User
	u.PasswordHash = r.Password
	return &u
}

func newUserRecord(u *model.User) *userRecord {
	rec := &userRecord{User: *u, Password: u.PasswordHash}
	rec.User.PasswordHash = ""
	return rec
}

// sequences 自增序列
type sequences struct {
	Restaurants int64 `json:"restaurants"`
}

// Store 实现 storage.DataProvider 接口的 JSON 文件驱动
type Store struct {
	dir    string
	logger *logging.Logger

	ready   chan struct{}
	state   atomic.Int32
	loadErr error

	users       collection[userRecord]
	restaurants collection[model.Restaurant]
	reviews     collection[model.Review]

	// seq 受 restaurants.mu 保护
	seq sequences
}

// New 创建 Store 并在后台开始加载
func New(dir string, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Store{
		dir:         dir,
		logger:      logger,
		ready:       make(chan struct{}),
		users:       collection[userRecord]{path: filepath.Join(dir, storage.CollectionUsers+".json")},
		restaurants: collection[model.Restaurant]{path: filepath.Join(dir, storage.CollectionRestaurants+".json")},
		reviews:     collection[model.Review]{path: filepath.Join(dir, storage.CollectionReviews+".json")},
	}
	s.state.Store(int32(storage.StateLoading))
	go s.load()
	return s
}

// Open 创建 Store 并等待加载完成
func Open(ctx context.Context, dir string, logger *logging.Logger) (*Store, error) {
	s := New(dir, logger)
	if err := s.WaitReady(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() {
	defer close(s.ready)

	err := func() error {
		if err := os.MkdirAll(s.dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
		if err := s.users.load(); err != nil {
			return err
		}
		if err := s.restaurants.load(); err != nil {
			return err
		}
		if err := s.reviews.load(); err != nil {
			return err
		}
		if err := s.fillMissingIDs(); err != nil {
			return err
		}
		return s.loadSequences()
	}()

	if err != nil {
		s.loadErr = err
		s.state.Store(int32(storage.StateFailed))
		s.logger.WithError(err).Error("File store load failed", "dir", s.dir)
		return
	}
	s.state.Store(int32(storage.StateReady))
	s.logger.Info("File store ready", "dir", s.dir,
		"users", len(s.users.items), "restaurants", len(s.restaurants.items), "reviews", len(s.reviews.items))
}

// fillMissingIDs 旧数据文件中的用户与评论可能没有 id，加载时补齐并落盘
func (s *Store) fillMissingIDs() error {
	users, err := s.users.fillIDs(func(r *userRecord) *string { return &r.ID })
	if err != nil {
		return err
	}
	reviews, err := s.reviews.fillIDs(func(r *model.Review) *string { return &r.ID })
	if err != nil {
		return err
	}
	if users > 0 || reviews > 0 {
		s.logger.Warn("Assigned ids to records without one", "users", users, "reviews", reviews)
	}
	return nil
}

// loadSequences 读取序列文件；序列不小于现有最大 ID
func (s *Store) loadSequences() error {
	data, err := os.ReadFile(filepath.Join(s.dir, sequencesFile))
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return fmt.Errorf("read %s: %w", sequencesFile, err)
	default:
		if err := json.Unmarshal(data, &s.seq); err != nil {
			return fmt.Errorf("parse %s: %w", sequencesFile, err)
		}
	}
	for _, r := range s.restaurants.items {
		if r.ID > s.seq.Restaurants {
			s.seq.Restaurants = r.ID
		}
	}
	return nil
}

func (s *Store) saveSequences(seq sequences) error {
	data, err := json.MarshalIndent(seq, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(s.dir, sequencesFile), data)
}

// State 当前就绪状态
func (s *Store) State() storage.State {
	return storage.State(s.state.Load())
}

// WaitReady 等待加载结束
func (s *Store) WaitReady(ctx context.Context) error {
	select {
	case <-s.ready:
	case <-ctx.Done():
		return fmt.Errorf("%w: still loading: %v", storage.ErrUnavailable, ctx.Err())
	}
	switch s.State() {
	case storage.StateFailed:
		return fmt.Errorf("%w: load failed: %v", storage.ErrUnavailable, s.loadErr)
	case storage.StateClosed:
		return fmt.Errorf("%w: store closed", storage.ErrUnavailable)
	}
	return nil
}

// Close 关闭存储，之后的操作返回 ErrUnavailable
func (s *Store) Close() error {
	<-s.ready
	s.state.Store(int32(storage.StateClosed))
	return nil
}

var (
	_ storage.DataProvider      = (*Store)(nil)
	_ storage.ReadinessReporter = (*Store)(nil)
)
