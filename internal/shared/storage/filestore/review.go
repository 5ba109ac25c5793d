package filestore

import (
	"context"

	"restaurant-reviews/internal/shared/idgen"
	"restaurant-reviews/internal/shared/model"
	"restaurant-reviews/internal/shared/storage"
)

// ============================================================================
// ReviewStore
// ============================================================================

func (s *Store) ListReviews(ctx context.Context) ([]*model.Review, error) {
	return s.listReviews(ctx, func(*model.Review) bool { return true })
}

func (s *Store) ListReviewsByRestaurant(ctx context.Context, restaurantID int64) ([]*model.Review, error) {
	return s.listReviews(ctx, func(r *model.Review) bool { return r.RestaurantID == restaurantID })
}

func (s *Store) listReviews(ctx context.Context, match func(*model.Review) bool) ([]*model.Review, error) {
	if err := s.WaitReady(ctx); err != nil {
		return nil, err
	}
	s.reviews.mu.RLock()
	defer s.reviews.mu.RUnlock()

	out := make([]*model.Review, 0)
	for _, r := range s.reviews.items {
		if match(r) {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *Store) GetReview(ctx context.Context, restaurantID int64, id string) (*model.Review, error) {
	if err := s.WaitReady(ctx); err != nil {
		return nil, err
	}
	s.reviews.mu.RLock()
	defer s.reviews.mu.RUnlock()

	i := s.reviews.find(func(r *model.Review) bool { return r.ID == id && r.RestaurantID == restaurantID })
	if i < 0 {
		return nil, storage.ErrNotFound
	}
	cp := *s.reviews.items[i]
	return &cp, nil
}

func (s *Store) CreateReview(ctx context.Context, review *model.Review) error {
	if err := s.WaitReady(ctx); err != nil {
		return err
	}
	if err := review.Validate(); err != nil {
		return err
	}

	s.reviews.mu.Lock()
	defer s.reviews.mu.Unlock()

	rec := *review
	rec.ID = idgen.New()
	rec.Date = model.Now()
	items := s.reviews.withAppended(&rec)
	if err := s.reviews.persist(items); err != nil {
		return err
	}
	s.reviews.items = items

	review.ID = rec.ID
	review.Date = rec.Date
	return nil
}

func (s *Store) UpdateReview(ctx context.Context, id string, patch *model.ReviewPatch) (*model.Review, error) {
	if err := s.WaitReady(ctx); err != nil {
		return nil, err
	}
	s.reviews.mu.Lock()
	defer s.reviews.mu.Unlock()

	i := s.reviews.find(func(r *model.Review) bool { return r.ID == id })
	if i < 0 {
		return nil, storage.ErrNotFound
	}

	updated := *s.reviews.items[i]
	patch.Apply(&updated)
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	items := s.reviews.withReplaced(i, &updated)
	if err := s.reviews.persist(items); err != nil {
		return nil, err
	}
	s.reviews.items = items
	out := updated
	return &out, nil
}

func (s *Store) DeleteReview(ctx context.Context, id string) error {
	if err := s.WaitReady(ctx); err != nil {
		return err
	}
	s.reviews.mu.Lock()
	defer s.reviews.mu.Unlock()

	i := s.reviews.find(func(r *model.Review) bool { return r.ID == id })
	if i < 0 {
		return storage.ErrNotFound
	}
	items := s.reviews.withRemoved(i)
	if err := s.reviews.persist(items); err != nil {
		return err
	}
	s.reviews.items = items
	return nil
}
