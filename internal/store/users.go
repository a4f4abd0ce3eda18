package store

import (
	"context"
	"fmt"
	"time"

	"mogger-go/internal/model"
)

// CreateUserParams holds the fields for a new user row.
type CreateUserParams struct {
	Email        string
	PasswordHash string
	Name         string
	GroupID      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUser inserts a user and returns the stored record.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (model.User, error) {
	var id int64
	err := q.db.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash, name, group_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 RETURNING id`,
		arg.Email, arg.PasswordHash, arg.Name, arg.GroupID, arg.CreatedAt, arg.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return model.User{}, fmt.Errorf("creating user: %w", err)
	}
	return model.User{
		ID:           id,
		Email:        arg.Email,
		PasswordHash: arg.PasswordHash,
		Name:         arg.Name,
		GroupID:      arg.GroupID,
		CreatedAt:    arg.CreatedAt,
		UpdatedAt:    arg.UpdatedAt,
	}, nil
}

const userColumns = `id, email, password_hash, name, group_id, rehash, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.GroupID, &u.Rehash, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetUserByID returns the user with the given id.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (model.User, error) {
	u, err := scanUser(q.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return model.User{}, fmt.Errorf("getting user %d: %w", id, err)
	}
	return u, nil
}

// GetUserByEmail returns the user with the given email.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	u, err := scanUser(q.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err != nil {
		return model.User{}, fmt.Errorf("getting user by email: %w", err)
	}
	return u, nil
}

// UpdateUserPassword replaces the stored hash and clears the rehash flag.
func (q *Queries) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, rehash = 0, updated_at = ? WHERE id = ?`,
		passwordHash, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("updating password for user %d: %w", id, err)
	}
	return nil
}

// MarkUserRehash flags the user's hash for re-creation on next login.
func (q *Queries) MarkUserRehash(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `UPDATE users SET rehash = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("marking rehash for user %d: %w", id, err)
	}
	return nil
}

// UpdateUserProfile updates display name and email.
func (q *Queries) UpdateUserProfile(ctx context.Context, id int64, name, email string) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET name = ?, email = ?, updated_at = ? WHERE id = ?`,
		name, email, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("updating profile for user %d: %w", id, err)
	}
	return nil
}

// DeleteUser removes a user row.
func (q *Queries) DeleteUser(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting user %d: %w", id, err)
	}
	return nil
}

// CountUsersByEmail reports how many users carry the given email. Used for
// signup validation.
func (q *Queries) CountUsersByEmail(ctx context.Context, email string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE email = ?`, email).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting users by email: %w", err)
	}
	return n, nil
}
