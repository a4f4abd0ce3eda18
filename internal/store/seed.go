package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"mogger-go/internal/auth"
	"mogger-go/internal/model"
)

// Default admin credentials
const (
	DefaultAdminEmail    = "admin@example.com"
	DefaultAdminPassword = "changeme"
	DefaultAdminName     = "Administrator"
)

// defaultGroups is the permission layout created on first boot.
var defaultGroups = map[string][]model.Permission{
	model.GroupAdmin: {model.PermAll},
	model.GroupAuthor: {
		model.PermCreateArticle, model.PermEditArticle, model.PermDeleteArticle,
		model.PermCreateComment, model.PermEditComment, model.PermDeleteComment,
	},
	model.GroupCommenter: {
		model.PermCreateComment, model.PermEditComment, model.PermDeleteComment,
	},
}

// Seed creates the default groups and admin user if they do not exist.
func Seed(ctx context.Context, db *sql.DB) error {
	queries := New(db)

	for id, perms := range defaultGroups {
		if _, err := queries.GetGroup(ctx, id); err == nil {
			continue
		} else if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("checking for group %q: %w", id, err)
		}
		if _, err := queries.CreateGroup(ctx, id, perms); err != nil {
			return err
		}
		slog.Info("created default group", "group", id)
	}

	_, err := queries.GetUserByEmail(ctx, DefaultAdminEmail)
	if err == nil {
		slog.Info("admin user already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	passwordHash, err := auth.HashPassword(DefaultAdminPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	user, err := queries.CreateUser(ctx, CreateUserParams{
		Email:        DefaultAdminEmail,
		PasswordHash: passwordHash,
		Name:         DefaultAdminName,
		GroupID:      model.GroupAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created default admin user",
		"id", user.ID,
		"email", user.Email,
		"password", DefaultAdminPassword,
	)

	return nil
}
