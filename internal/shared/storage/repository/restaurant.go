package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"restaurant-reviews/internal/shared/model"
)

const restaurantColumns = `id, name, neighborhood, address, lat, lng, photograph, cuisine_type, operating_hours`

func scanRestaurant(row scanner) (*model.Restaurant, error) {
	r := &model.Restaurant{}
	var lat, lng sql.NullFloat64
	var hours sql.NullString
	err := row.Scan(&r.ID, &r.Name, &r.Neighborhood, &r.Address, &lat, &lng,
		&r.Photograph, &r.CuisineType, &hours)
	if err != nil {
		return nil, err
	}
	if lat.Valid && lng.Valid {
		r.LatLng = &model.LatLng{Lat: lat.Float64, Lng: lng.Float64}
	}
	if hours.Valid && hours.String != "" {
		if err := json.Unmarshal([]byte(hours.String), &r.OperatingHours); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// restaurantArgs 返回可空列的驱动参数
func restaurantArgs(r *model.Restaurant) (lat, lng sql.NullFloat64, hours sql.NullString, err error) {
	if r.LatLng != nil {
		lat = sql.NullFloat64{Float64: r.LatLng.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: r.LatLng.Lng, Valid: true}
	}
	if r.OperatingHours != nil {
		data, mErr := json.Marshal(r.OperatingHours)
		if mErr != nil {
			return lat, lng, hours, mErr
		}
		hours = sql.NullString{String: string(data), Valid: true}
	}
	return lat, lng, hours, nil
}

// ListRestaurants 按 ID 升序列出餐厅
func (s *Store) ListRestaurants(ctx context.Context) ([]*model.Restaurant, error) {
	return queryList(ctx, s, scanRestaurant, `SELECT `+restaurantColumns+` FROM restaurants ORDER BY id`)
}

// GetRestaurant 通过 ID 查找餐厅
func (s *Store) GetRestaurant(ctx context.Context, id int64) (*model.Restaurant, error) {
	r, err := scanRestaurant(s.db.QueryRowContext(ctx,
		s.rebind(`SELECT `+restaurantColumns+` FROM restaurants WHERE id = $1`), id))
	if err != nil {
		return nil, s.wrapError(err)
	}
	return r, nil
}

// CreateRestaurant 创建餐厅，ID 由数据库自增列分配
func (s *Store) CreateRestaurant(ctx context.Context, restaurant *model.Restaurant) error {
	if err := restaurant.Validate(); err != nil {
		return err
	}
	lat, lng, hours, err := restaurantArgs(restaurant)
	if err != nil {
		return err
	}

	var id int64
	err = s.db.QueryRowContext(ctx, s.rebind(
		`INSERT INTO restaurants (name, neighborhood, address, lat, lng, photograph, cuisine_type, operating_hours)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`),
		restaurant.Name, restaurant.Neighborhood, restaurant.Address, lat, lng,
		restaurant.Photograph, restaurant.CuisineType, hours,
	).Scan(&id)
	if err != nil {
		return s.wrapError(err)
	}
	restaurant.ID = id
	return nil
}

// UpdateRestaurant 在事务内读取、应用补丁、校验并写回
func (s *Store) UpdateRestaurant(ctx context.Context, id int64, patch *model.RestaurantPatch) (*model.Restaurant, error) {
	var updated *model.Restaurant
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		r, err := scanRestaurant(tx.QueryRowContext(ctx,
			s.forUpdate(`SELECT `+restaurantColumns+` FROM restaurants WHERE id = $1`), id))
		if err != nil {
			return err
		}

		patch.Apply(r)
		if err := r.Validate(); err != nil {
			return err
		}
		lat, lng, hours, err := restaurantArgs(r)
		if err != nil {
			return err
		}

		if err := execAffected(ctx, tx, s.rebind(
			`UPDATE restaurants SET name = $1, neighborhood = $2, address = $3, lat = $4, lng = $5,
			 photograph = $6, cuisine_type = $7, operating_hours = $8
			 WHERE id = $9`),
			r.Name, r.Neighborhood, r.Address, lat, lng, r.Photograph, r.CuisineType, hours, id,
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

// DeleteRestaurant 删除餐厅
func (s *Store) DeleteRestaurant(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return execAffected(ctx, tx, s.rebind(`DELETE FROM restaurants WHERE id = $1`), id)
	})
}
