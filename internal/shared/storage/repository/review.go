package repository

import (
	"context"
	"database/sql"

	"restaurant-reviews/internal/shared/idgen"
	"restaurant-reviews/internal/shared/model"
)

const reviewColumns = `id, restaurant_id, user_id, rating, comments, created_at`

func scanReview(row scanner) (*model.Review, error) {
	r := &model.Review{}
	if err := row.Scan(&r.ID, &r.RestaurantID, &r.UserID, &r.Rating, &r.Comments, &r.Date); err != nil {
		return nil, err
	}
	return r, nil
}

// ListReviews 按创建顺序列出全部评论
func (s *Store) ListReviews(ctx context.Context) ([]*model.Review, error) {
	return queryList(ctx, s, scanReview, `SELECT `+reviewColumns+` FROM reviews ORDER BY seq`)
}

// ListReviewsByRestaurant 列出某餐厅的评论
func (s *Store) ListReviewsByRestaurant(ctx context.Context, restaurantID int64) ([]*model.Review, error) {
	return queryList(ctx, s, scanReview,
		`SELECT `+reviewColumns+` FROM reviews WHERE restaurant_id = $1 ORDER BY seq`, restaurantID)
}

// GetReview 查找属于指定餐厅的评论
func (s *Store) GetReview(ctx context.Context, restaurantID int64, id string) (*model.Review, error) {
	r, err := scanReview(s.db.QueryRowContext(ctx, s.rebind(
		`SELECT `+reviewColumns+` FROM reviews WHERE id = $1 AND restaurant_id = $2`), id, restaurantID))
	if err != nil {
		return nil, s.wrapError(err)
	}
	return r, nil
}

// CreateReview 创建评论
func (s *Store) CreateReview(ctx context.Context, review *model.Review) error {
	if err := review.Validate(); err != nil {
		return err
	}
	id := idgen.New()
	date := model.Now()

	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO reviews (id, restaurant_id, user_id, rating, comments, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`),
		id, review.RestaurantID, review.UserID, review.Rating, review.Comments, date,
	)
	if err != nil {
		return s.wrapError(err)
	}
	review.ID = id
	review.Date = date
	return nil
}

// UpdateReview 在事务内读取、应用补丁、校验并写回
func (s *Store) UpdateReview(ctx context.Context, id string, patch *model.ReviewPatch) (*model.Review, error) {
	var updated *model.Review
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		r, err := scanReview(tx.QueryRowContext(ctx,
			s.forUpdate(`SELECT `+reviewColumns+` FROM reviews WHERE id = $1`), id))
		if err != nil {
			return err
		}

		patch.Apply(r)
		if err := r.Validate(); err != nil {
			return err
		}

		if err := execAffected(ctx, tx, s.rebind(
			`UPDATE reviews SET restaurant_id = $1, user_id = $2, rating = $3, comments = $4 WHERE id = $5`),
			r.RestaurantID, r.UserID, r.Rating, r.Comments, id,
		); err != nil {
			return err
		}
		updated = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteReview 删除评论
func (s *Store) DeleteReview(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return execAffected(ctx, tx, s.rebind(`DELETE FROM reviews WHERE id = $1`), id)
	})
}
