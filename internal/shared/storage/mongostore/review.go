package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"restaurant-reviews/internal/shared/idgen"
	"restaurant-reviews/internal/shared/model"
)

// ============================================================================
// ReviewStore
// ============================================================================

func (s *Store) ListReviews(ctx context.Context) ([]*model.Review, error) {
	ctx, cancel := s.op(ctx)
	defer cancel()
	return findMany[model.Review](ctx, s.col(ColReviews), bson.D{})
}

func (s *Store) ListReviewsByRestaurant(ctx context.Context, restaurantID int64) ([]*model.Review, error) {
	ctx, cancel := s.op(ctx)
	defer cancel()
	return findMany[model.Review](ctx, s.col(ColReviews), bson.D{{Key: "restaurant", Value: restaurantID}})
}

func (s *Store) GetReview(ctx context.Context, restaurantID int64, id string) (*model.Review, error) {
	ctx, cancel := s.op(ctx)
	defer cancel()
	return findOne[model.Review](ctx, s.col(ColReviews), bson.D{
		{Key: "_id", Value: id},
		{Key: "restaurant", Value: restaurantID},
	})
}

func (s *Store) CreateReview(ctx context.Context, review *model.Review) error {
	if err := review.Validate(); err != nil {
		return err
	}
	doc := *review
	doc.ID = idgen.New()
	doc.Date = model.Now()

	ctx, cancel := s.op(ctx)
	defer cancel()
	if err := insertOne(ctx, s.col(ColReviews), &doc); err != nil {
		return err
	}
	review.ID = doc.ID
	review.Date = doc.Date
	return nil
}

func (s *Store) UpdateReview(ctx context.Context, id string, patch *model.ReviewPatch) (*model.Review, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		ctx, cancel := s.op(ctx)
		defer cancel()
		return findOne[model.Review](ctx, s.col(ColReviews), bson.D{{Key: "_id", Value: id}})
	}

	var set bson.D
	set = setIf(set, "restaurant", patch.RestaurantID)
	set = setIf(set, "user", patch.UserID)
	set = setIf(set, "rating", patch.Rating)
	set = setIf(set, "comments", patch.Comments)

	ctx, cancel := s.op(ctx)
	defer cancel()
	return updateFields[model.Review](ctx, s.col(ColReviews), id, set, nil)
}

func (s *Store) DeleteReview(ctx context.Context, id string) error {
	ctx, cancel := s.op(ctx)
	defer cancel()
	return deleteByID(ctx, s.col(ColReviews), id)
}
