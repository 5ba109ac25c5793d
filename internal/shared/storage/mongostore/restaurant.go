package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"restaurant-reviews/internal/shared/model"
)

// ============================================================================
// RestaurantStore
// ============================================================================

func (s *Store) ListRestaurants(ctx context.Context) ([]*model.Restaurant, error) {
	ctx, cancel := s.op(ctx)
	defer cancel()
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	return findMany[model.Restaurant](ctx, s.col(ColRestaurants), bson.D{}, opts)
}

func (s *Store) GetRestaurant(ctx context.Context, id int64) (*model.Restaurant, error) {
	ctx, cancel := s.op(ctx)
	defer cancel()
	return findOne[model.Restaurant](ctx, s.col(ColRestaurants), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) CreateRestaurant(ctx context.Context, restaurant *model.Restaurant) error {
	if err := restaurant.Validate(); err != nil {
		return err
	}

	ctx, cancel := s.op(ctx)
	defer cancel()
	id, err := s.nextRestaurantID(ctx)
	if err != nil {
		return err
	}
	doc := restaurant.Clone()
	doc.ID = id
	if err := insertOne(ctx, s.col(ColRestaurants), doc); err != nil {
		return err
	}
	restaurant.ID = id
	return nil
}

func (s *Store) UpdateRestaurant(ctx context.Context, id int64, patch *model.RestaurantPatch) (*model.Restaurant, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return s.GetRestaurant(ctx, id)
	}

	var set bson.D
	set = setIf(set, "name", patch.Name)
	set = setIf(set, "neighborhood", patch.Neighborhood)
	set = setIf(set, "address", patch.Address)
	set = setIf(set, "latlng", patch.LatLng)
	set = setIf(set, "photograph", patch.Photograph)
	set = setIf(set, "cuisine_type", patch.CuisineType)
	if patch.OperatingHours != nil {
		set = append(set, bson.E{Key: "operating_hours", Value: patch.OperatingHours})
	}

	ctx, cancel := s.op(ctx)
	defer cancel()
	return updateFields[model.Restaurant](ctx, s.col(ColRestaurants), id, set, nil)
}

func (s *Store) DeleteRestaurant(ctx context.Context, id int64) error {
	ctx, cancel := s.op(ctx)
	defer cancel()
	return deleteByID(ctx, s.col(ColRestaurants), id)
}
