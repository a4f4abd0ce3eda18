// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"mogger-go/internal/auth"
	"mogger-go/internal/authz"
	"mogger-go/internal/model"
	"mogger-go/internal/store"
)

// UserService implements account management: profile edits, password
// changes and account deletion.
type UserService struct {
	db      *sql.DB
	queries *store.Queries
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{
		db:      db,
		queries: store.New(db),
	}
}

// UpdateUserInput holds the editable account fields. Password is optional;
// when set, OldPassword must prove the actor knows the current one unless
// they hold the foreign user edit permission.
type UpdateUserInput struct {
	Name        string
	Email       string
	Password    string
	OldPassword string
}

// Update edits an account's profile and optionally replaces its password.
// Users always manage their own account; acting on someone else's requires
// the foreign user edit permission.
func (s *UserService) Update(ctx context.Context, ac authz.Context, id int64, in UpdateUserInput) (model.User, error) {
	user, err := s.queries.GetUserByID(ctx, id)
	if err != nil {
		return model.User{}, notFoundIfNoRows(err)
	}

	if err := s.authorizeAccount(ac, authz.ActionEditUser, id); err != nil {
		return model.User{}, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.User{}, &ValidationError{Field: "name", Message: "must not be empty"}
	}
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" {
		return model.User{}, &ValidationError{Field: "email", Message: "must not be empty"}
	}

	if email != user.Email {
		taken, err := s.queries.CountUsersByEmail(ctx, email)
		if err != nil {
			return model.User{}, err
		}
		if taken > 0 {
			return model.User{}, ErrConflict
		}
	}

	if in.Password != "" {
		// Changing a password requires the current one; holders of the
		// foreign permission reset without it.
		if !ac.Has(model.PermEditForeignUser) {
			ok, err := auth.CheckPassword(in.OldPassword, user.PasswordHash)
			if err != nil || !ok {
				return model.User{}, &ValidationError{Field: "old_password", Message: "does not match the current password"}
			}
		}
		hash, err := auth.HashPassword(in.Password)
		if err != nil {
			return model.User{}, err
		}
		if err := s.queries.UpdateUserPassword(ctx, id, hash); err != nil {
			return model.User{}, err
		}
		user.PasswordHash = hash
		user.Rehash = false
	}

	if err := s.queries.UpdateUserProfile(ctx, id, name, email); err != nil {
		return model.User{}, err
	}
	user.Name = name
	user.Email = email

	slog.Info("user updated",
		"category", model.EventCategoryUser,
		"user_id", id,
		"actor_id", ac.User.ID,
	)
	return user, nil
}

// Delete permanently removes an account. The user's comments survive as
// guest comments under their display name; an account still holding
// articles is refused until those are purged or reassigned.
func (s *UserService) Delete(ctx context.Context, ac authz.Context, id int64) error {
	user, err := s.queries.GetUserByID(ctx, id)
	if err != nil {
		return notFoundIfNoRows(err)
	}

	if err := s.authorizeAccount(ac, authz.ActionDeleteUser, id); err != nil {
		return err
	}

	articles, err := s.queries.CountArticlesByAuthor(ctx, id)
	if err != nil {
		return err
	}
	if articles > 0 {
		return ErrConflict
	}

	err = store.InTx(ctx, s.db, func(q *store.Queries) error {
		if err := q.AnonymizeCommentsByUser(ctx, id, user.Name); err != nil {
			return err
		}
		if err := q.DetachUserEvents(ctx, id); err != nil {
			return err
		}
		return q.DeleteUser(ctx, id)
	})
	if err != nil {
		return err
	}

	slog.Warn("user deleted",
		"category", model.EventCategoryUser,
		"user_id", id,
		"actor_id", ac.User.ID,
	)
	return nil
}

// authorizeAccount lets every authenticated user act on their own account
// and defers to the gate's foreign permission for everyone else's.
func (s *UserService) authorizeAccount(ac authz.Context, action authz.Action, id int64) error {
	if ac.Authenticated() && ac.User.ID == id {
		return nil
	}
	return authz.Authorize(ac, action, &id)
}
