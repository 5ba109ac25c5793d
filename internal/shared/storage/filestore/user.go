package filestore

import (
	"context"

	"restaurant-reviews/internal/shared/idgen"
	"restaurant-reviews/internal/shared/model"
	"restaurant-reviews/internal/shared/storage"
)

// ============================================================================
// UserStore
// ============================================================================

func (s *Store) ListUsers(ctx context.Context) ([]*model.User, error) {
	if err := s.WaitReady(ctx); err != nil {
		return nil, err
	}
	s.users.mu.RLock()
	defer s.users.mu.RUnlock()

	users := make([]*model.User, 0, len(s.users.items))
	for _, rec := range s.users.items {
		users = append(users, rec.toModel().Public())
	}
	return users, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	if err := s.WaitReady(ctx); err != nil {
		return nil, err
	}
	s.users.mu.RLock()
	defer s.users.mu.RUnlock()

	i := s.users.find(func(r *userRecord) bool { return r.ID == id })
	if i < 0 {
		return nil, storage.ErrNotFound
	}
	return s.users.items[i].toModel().Public(), nil
}

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	if err := s.WaitReady(ctx); err != nil {
		return err
	}
	user.Normalize()
	if err := user.Validate(); err != nil {
		return err
	}

	s.users.mu.Lock()
	defer s.users.mu.Unlock()

	if s.emailTaken(user.Email, "") {
		return storage.ErrDuplicate
	}

	rec := newUserRecord(user)
	rec.ID = idgen.New()
	rec.RegDate = model.Now()
	items := s.users.withAppended(rec)
	if err := s.users.persist(items); err != nil {
		return err
	}
	s.users.items = items

	user.ID = rec.ID
	user.RegDate = rec.RegDate
	return nil
}

func (s *Store) UpdateUser(ctx context.Context, id string, patch *model.UserPatch) (*model.User, error) {
	if err := s.WaitReady(ctx); err != nil {
		return nil, err
	}
	patch.Normalize()

	s.users.mu.Lock()
	defer s.users.mu.Unlock()

	i := s.users.find(func(r *userRecord) bool { return r.ID == id })
	if i < 0 {
		return nil, storage.ErrNotFound
	}

	updated := s.users.items[i].toModel()
	patch.Apply(updated)
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	if patch.Email != nil && s.emailTaken(updated.Email, id) {
		return nil, storage.ErrDuplicate
	}

	items := s.users.withReplaced(i, newUserRecord(updated))
	if err := s.users.persist(items); err != nil {
		return nil, err
	}
	s.users.items = items
	return updated.Public(), nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	if err := s.WaitReady(ctx); err != nil {
		return err
	}
	s.users.mu.Lock()
	defer s.users.mu.Unlock()

	i := s.users.find(func(r *userRecord) bool { return r.ID == id })
	if i < 0 {
		return storage.ErrNotFound
	}
	items := s.users.withRemoved(i)
	if err := s.users.persist(items); err != nil {
		return err
	}
	s.users.items = items
	return nil
}

// emailTaken 调用方须持有 users 锁
func (s *Store) emailTaken(email, exceptID string) bool {
	return s.users.find(func(r *userRecord) bool {
		return r.Email == email && r.ID != exceptID
	}) >= 0
}
