package store

import (
	"context"
	"database/sql"
	"eventers-ticketing/failure"
	"eventers-ticketing/model"
	"fmt"
)

const userTable = "users"

var userCols = []string{"email", "password_hash", "role", "created_at"}

// CreateUser inserts u and returns its id. A duplicate email is reported
// as failure.ErrConflict.
func (s *Store) CreateUser(ctx context.Context, u model.User) (int64, error) {
	values := []interface{}{u.Email, u.PasswordHash, u.Role, u.CreatedDate}

	id, err := insert(ctx, s.conn(ctx), userTable, userCols, [][]interface{}{values})
	if err != nil {
		return 0, fmt.Errorf("createUser: %w", err)
	}
	return id, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	err := s.conn(ctx).QueryRowContext(ctx,
		`SELECT id, email, password_hash, role, created_at FROM users WHERE email = ?`,
		email,
	).Scan(&u.UserID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedDate)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.User{}, fmt.Errorf("userByEmail: %w", failure.ErrNotFound)
		}
		return model.User{}, fmt.Errorf("userByEmail: error fetching user: %w", classify(err))
	}
	return u, nil
}
