package repository

import (
	"context"
	"database/sql"

	"restaurant-reviews/internal/shared/idgen"
	"restaurant-reviews/internal/shared/model"
)

const userColumns = `id, email, first_name, last_name, phone, dob, gender, photo, reg_date, city, state, country`

func scanUser(row scanner) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Phone, &u.DOB,
		&u.Gender, &u.Photo, &u.RegDate, &u.Address.City, &u.Address.State, &u.Address.Country)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// ListUsers 按注册顺序列出用户（不含密码哈希）
func (s *Store) ListUsers(ctx context.Context) ([]*model.User, error) {
	return queryList(ctx, s, scanUser, `SELECT `+userColumns+` FROM users ORDER BY seq`)
}

// GetUser 通过 ID 查找用户（不含密码哈希）
func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		s.rebind(`SELECT `+userColumns+` FROM users WHERE id = $1`), id))
	if err != nil {
		return nil, s.wrapError(err)
	}
	return u, nil
}

// CreateUser 创建用户
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	user.Normalize()
	if err := user.Validate(); err != nil {
		return err
	}
	id := idgen.New()
	regDate := model.Now()

	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO users (id, email, password, first_name, last_name, phone, dob, gender, photo, reg_date, city, state, country)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`),
		id, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.Phone, user.DOB,
		user.Gender, user.Photo, regDate, user.Address.City, user.Address.State, user.Address.Country,
	)
	if err != nil {
		return s.wrapError(err)
	}
	user.ID = id
	user.RegDate = regDate
	return nil
}

// UpdateUser 在事务内读取、应用补丁、校验并写回
func (s *Store) UpdateUser(ctx context.Context, id string, patch *model.UserPatch) (*model.User, error) {
	patch.Normalize()

	var updated *model.User
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var password string
		u := &model.User{}
		err := tx.QueryRowContext(ctx, s.forUpdate(
			`SELECT `+userColumns+`, password FROM users WHERE id = $1`), id,
		).Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Phone, &u.DOB,
			&u.Gender, &u.Photo, &u.RegDate, &u.Address.City, &u.Address.State, &u.Address.Country, &password)
		if err != nil {
			return err
		}
		u.PasswordHash = password

		patch.Apply(u)
		if err := u.Validate(); err != nil {
			return err
		}

		if err := execAffected(ctx, tx, s.rebind(
			`UPDATE users SET email = $1, password = $2, first_name = $3, last_name = $4, phone = $5,
			 dob = $6, gender = $7, photo = $8, city = $9, state = $10, country = $11
			 WHERE id = $12`),
			u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Phone,
			u.DOB, u.Gender, u.Photo, u.Address.City, u.Address.State, u.Address.Country, id,
		); err != nil {
			return err
		}
		updated = u.Public()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteUser 删除用户
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return execAffected(ctx, tx, s.rebind(`DELETE FROM users WHERE id = $1`), id)
	})
}
