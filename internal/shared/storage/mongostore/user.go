package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"restaurant-reviews/internal/shared/idgen"
	"restaurant-reviews/internal/shared/model"
)

// ============================================================================
// UserStore
// ============================================================================

func (s *Store) ListUsers(ctx context.Context) ([]*model.User, error) {
	ctx, cancel := s.op(ctx)
	defer cancel()
	return findMany[model.User](ctx, s.col(ColUsers), bson.D{}, options.Find().SetProjection(hidePassword))
}

func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	ctx, cancel := s.op(ctx)
	defer cancel()
	return findOne[model.User](ctx, s.col(ColUsers), bson.D{{Key: "_id", Value: id}},
		options.FindOne().SetProjection(hidePassword))
}

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	user.Normalize()
	if err := user.Validate(); err != nil {
		return err
	}
	doc := *user
	doc.ID = idgen.New()
	doc.RegDate = model.Now()

	ctx, cancel := s.op(ctx)
	defer cancel()
	if err := insertOne(ctx, s.col(ColUsers), &doc); err != nil {
		return err
	}
	user.ID = doc.ID
	user.RegDate = doc.RegDate
	return nil
}

func (s *Store) UpdateUser(ctx context.Context, id string, patch *model.UserPatch) (*model.User, error) {
	patch.Normalize()
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return s.GetUser(ctx, id)
	}

	var set bson.D
	set = setIf(set, "email", patch.Email)
	set = setIf(set, "password", patch.PasswordHash)
	set = setIf(set, "firstName", patch.FirstName)
	set = setIf(set, "lastName", patch.LastName)
	set = setIf(set, "phone", patch.Phone)
	set = setIf(set, "dob", patch.DOB)
	set = setIf(set, "gender", patch.Gender)
	set = setIf(set, "photo", patch.Photo)
	set = setIf(set, "address", patch.Address)

	ctx, cancel := s.op(ctx)
	defer cancel()
	return updateFields[model.User](ctx, s.col(ColUsers), id, set, hidePassword)
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	ctx, cancel := s.op(ctx)
	defer cancel()
	return deleteByID(ctx, s.col(ColUsers), id)
}
