package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"restaurant-reviews/internal/shared/model"
)

var nonEmptyString = bson.M{"bsonType": "string", "minLength": 1}

var integer = bson.M{"bsonType": bson.A{"int", "long"}}

// validators 各集合的 $jsonSchema
var validators = map[string]bson.M{
	ColUsers: {"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": bson.A{"email", "firstName", "lastName", "phone", "dob", "gender", "address"},
		"properties": bson.M{
			"email":     bson.M{"bsonType": "string", "pattern": model.EmailPattern},
			"password":  bson.M{"bsonType": "string"},
			"firstName": nonEmptyString,
			"lastName":  nonEmptyString,
			"phone":     nonEmptyString,
			"dob":       nonEmptyString,
			"gender":    nonEmptyString,
			"photo":     bson.M{"bsonType": "string"},
			"regDate":   bson.M{"bsonType": "string"},
			"address": bson.M{
				"bsonType": "object",
				"required": bson.A{"city", "state", "country"},
				"properties": bson.M{
					"city":    nonEmptyString,
					"state":   nonEmptyString,
					"country": nonEmptyString,
				},
			},
		},
	}},
	ColRestaurants: {"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": bson.A{"name", "neighborhood", "cuisine_type"},
		"properties": bson.M{
			"_id":          integer,
			"name":         nonEmptyString,
			"neighborhood": nonEmptyString,
			"address":      bson.M{"bsonType": "string"},
			"photograph":   bson.M{"bsonType": "string"},
			"cuisine_type": nonEmptyString,
			"latlng": bson.M{
				"bsonType": "object",
				"required": bson.A{"lat", "lng"},
				"properties": bson.M{
					"lat": bson.M{"bsonType": "double", "minimum": -90, "maximum": 90},
					"lng": bson.M{"bsonType": "double", "minimum": -180, "maximum": 180},
				},
			},
			"operating_hours": bson.M{"bsonType": bson.A{"object", "null"}},
		},
	}},
	ColReviews: {"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": bson.A{"restaurant", "user", "rating", "comments", "date"},
		"properties": bson.M{
			"restaurant": bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1},
			"user":       nonEmptyString,
			"rating": bson.M{
				"bsonType": bson.A{"int", "long"},
				"minimum":  model.MinRating,
				"maximum":  model.MaxRating,
			},
			"comments": nonEmptyString,
			"date":     bson.M{"bsonType": "string"},
		},
	}},
}

// ensureSchema 创建集合（或用 collMod 更新校验器）并创建索引
func (s *Store) ensureSchema(ctx context.Context) error {
	existing, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(existing))
	for _, name := range existing {
		have[name] = true
	}

	for _, name := range []string{ColUsers, ColRestaurants, ColReviews} {
		validator := validators[name]
		if have[name] {
			cmd := bson.D{{Key: "collMod", Value: name}, {Key: "validator", Value: validator}}
			if err := s.db.RunCommand(ctx, cmd).Err(); err != nil {
				return fmt.Errorf("collMod %s: %w", name, err)
			}
			continue
		}
		if err := s.db.CreateCollection(ctx, name, options.CreateCollection().SetValidator(validator)); err != nil {
			return fmt.Errorf("create collection %s: %w", name, err)
		}
	}
	return s.ensureIndexes(ctx)
}

// ensureIndexes 创建所有必要的索引
func (s *Store) ensureIndexes(ctx context.Context) error {
	type idx struct {
		col    string
		keys   bson.D
		unique bool
	}

	indexes := []idx{
		// users
		{ColUsers, bson.D{{Key: "email", Value: 1}}, true},

		// reviews
		{ColReviews, bson.D{{Key: "restaurant", Value: 1}}, false},
	}

	for _, i := range indexes {
		m := mongo.IndexModel{Keys: i.keys}
		if i.unique {
			m.Options = options.Index().SetUnique(true)
		}
		if _, err := s.col(i.col).Indexes().CreateOne(ctx, m); err != nil {
			return fmt.Errorf("create index on %s: %w", i.col, err)
		}
	}
	return nil
}
