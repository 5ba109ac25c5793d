package filestore

import (
	"context"
	"fmt"

	"restaurant-reviews/internal/shared/model"
	"restaurant-reviews/internal/shared/storage"
)

// ============================================================================
// RestaurantStore
// ============================================================================

func (s *Store) ListRestaurants(ctx context.Context) ([]*model.Restaurant, error) {
	if err := s.WaitReady(ctx); err != nil {
		return nil, err
	}
	s.restaurants.mu.RLock()
	defer s.restaurants.mu.RUnlock()

	out := make([]*model.Restaurant, 0, len(s.restaurants.items))
	for _, r := range s.restaurants.items {
		out = append(out, r.Clone())
	}
	return out, nil
}

func (s *Store) GetRestaurant(ctx context.Context, id int64) (*model.Restaurant, error) {
	if err := s.WaitReady(ctx); err != nil {
		return nil, err
	}
	s.restaurants.mu.RLock()
	defer s.restaurants.mu.RUnlock()

	i := s.restaurants.find(func(r *model.Restaurant) bool { return r.ID == id })
	if i < 0 {
		return nil, storage.ErrNotFound
	}
	return s.restaurants.items[i].Clone(), nil
}

// CreateRestaurant 分配新 ID：先落盘序列，再落盘集合，
// 集合写入失败时序列已前进，ID 不会被复用
func (s *Store) CreateRestaurant(ctx context.Context, restaurant *model.Restaurant) error {
	if err := s.WaitReady(ctx); err != nil {
		return err
	}
	if err := restaurant.Validate(); err != nil {
		return err
	}

	s.restaurants.mu.Lock()
	defer s.restaurants.mu.Unlock()

	next := s.seq
	next.Restaurants++
	if err := s.saveSequences(next); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrPersistence, err)
	}
	s.seq = next

	rec := restaurant.Clone()
	rec.ID = next.Restaurants
	items := s.restaurants.withAppended(rec)
	if err := s.restaurants.persist(items); err != nil {
		return err
	}
	s.restaurants.items = items

	restaurant.ID = rec.ID
	return nil
}

func (s *Store) UpdateRestaurant(ctx context.Context, id int64, patch *model.RestaurantPatch) (*model.Restaurant, error) {
	if err := s.WaitReady(ctx); err != nil {
		return nil, err
	}
	s.restaurants.mu.Lock()
	defer s.restaurants.mu.Unlock()

	i := s.restaurants.find(func(r *model.Restaurant) bool { return r.ID == id })
	if i < 0 {
		return nil, storage.ErrNotFound
	}

	updated := s.restaurants.items[i].Clone()
	patch.Apply(updated)
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	items := s.restaurants.withReplaced(i, updated)
	if err := s.restaurants.persist(items); err != nil {
		return nil, err
	}
	s.restaurants.items = items
	return updated.Clone(), nil
}

func (s *Store) DeleteRestaurant(ctx context.Context, id int64) error {
	if err := s.WaitReady(ctx); err != nil {
		return err
	}
	s.restaurants.mu.Lock()
	defer s.restaurants.mu.Unlock()

	i := s.restaurants.find(func(r *model.Restaurant) bool { return r.ID == id })
	if i < 0 {
		return storage.ErrNotFound
	}
	items := s.restaurants.withRemoved(i)
	if err := s.restaurants.persist(items); err != nil {
		return err
	}
	s.restaurants.items = items
	return nil
}
