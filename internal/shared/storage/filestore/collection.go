package filestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"restaurant-reviews/internal/shared/idgen"
	"restaurant-reviews/internal/shared/storage"
)

// collection 单个集合：内存切片 + 对应 JSON 文件
//
// 切片保持插入顺序。写操作在 mu 写锁内构造新切片并落盘，成功后才替换 items。
type collection[T any] struct {
	mu    sync.RWMutex
	path  string
	items []*T
}

// load 读取文件；文件不存在视为空集合，JSON 格式错误返回错误
func (c *collection[T]) load() error {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		c.items = []*T{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(c.path), err)
	}

	var items []*T
	if len(data) > 0 {
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("parse %s: %w", filepath.Base(c.path), err)
		}
	}
	if items == nil {
		items = []*T{}
	}
	c.items = items
	return nil
}

// fillIDs 为缺少 ID 的记录分配 UUID，有分配时回写文件，返回分配数量
func (c *collection[T]) fillIDs(id func(*T) *string) (int, error) {
	n := 0
	for _, item := range c.items {
		if p := id(item); *p == "" {
			*p = idgen.New()
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	if err := c.persist(c.items); err != nil {
		return 0, err
	}
	return n, nil
}

// persist 将 items 整体写入文件，调用方须持有写锁
func (c *collection[T]) persist(items []*T) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", storage.ErrPersistence, filepath.Base(c.path), err)
	}
	if err := writeFileAtomic(c.path, data); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrPersistence, err)
	}
	return nil
}

// find 返回第一个满足 match 的下标，未找到返回 -1，调用方须持有锁
func (c *collection[T]) find(match func(*T) bool) int {
	for i, item := range c.items {
		if match(item) {
			return i
		}
	}
	return -1
}

// withAppended 返回追加 item 后的新切片
func (c *collection[T]) withAppended(item *T) []*T {
	out := make([]*T, len(c.items), len(c.items)+1)
	copy(out, c.items)
	return append(out, item)
}

// withReplaced 返回替换下标 i 后的新切片
func (c *collection[T]) withReplaced(i int, item *T) []*T {
	out := make([]*T, len(c.items))
	copy(out, c.items)
	out[i] = item
	return out
}

// withRemoved 返回移除下标 i 后的新切片
func (c *collection[T]) withRemoved(i int) []*T {
	out := make([]*T, 0, len(c.items)-1)
	out = append(out, c.items[:i]...)
	return append(out, c.items[i+1:]...)
}

// writeFileAtomic 写临时文件 → fsync → rename，失败时删除临时文件
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	cleanup := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(fmt.Errorf("write %s: %w", filepath.Base(path), err))
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(fmt.Errorf("sync %s: %w", filepath.Base(path), err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
