// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, and request context handling.
package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"mogger-go/internal/authz"
	"mogger-go/internal/model"
	"mogger-go/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyAuth holds the authorization context of the request.
const ContextKeyAuth ContextKey = "auth"

// SessionKeyUserID is the session key under which the logged-in user id is stored.
const SessionKeyUserID = "user_id"

// LoadAuthContext creates middleware that resolves the session into an
// authorization context (user plus permission group) and stores it in the
// request context. Requests without a valid session carry an anonymous
// context; a stale user id in the session destroys the session.
func LoadAuthContext(sm *scs.SessionManager, db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ac := authz.Context{}

			userID := sm.GetInt64(r.Context(), SessionKeyUserID)
			if userID != 0 {
				user, err := queries.GetUserByID(r.Context(), userID)
				if err != nil {
					// User deleted since login. Drop the session and
					// continue anonymously.
					_ = sm.Destroy(r.Context())
					slog.Warn("session referenced missing user", "user_id", userID)
				} else {
					group, err := queries.GetGroup(r.Context(), user.GroupID)
					if err != nil {
						slog.Error("loading group for user",
							"user_id", user.ID,
							"group", user.GroupID,
							"error", err,
						)
					} else {
						ac.User = &user
						ac.Group = &group
					}
				}
			}

			ctx := context.WithValue(r.Context(), ContextKeyAuth, ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAuth retrieves the authorization context from the request.
// Returns an anonymous context if none was loaded.
func GetAuth(r *http.Request) authz.Context {
	ac, ok := r.Context().Value(ContextKeyAuth).(authz.Context)
	if !ok {
		return authz.Context{}
	}
	return ac
}

// RequireAuthenticated creates middleware that rejects anonymous requests
// with 401.
func RequireAuthenticated() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !GetAuth(r).Authenticated() {
				writeAuthError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission creates middleware that requires the given permission,
// 401 for anonymous requests and 403 for authenticated ones without it.
func RequirePermission(perm model.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ac := GetAuth(r)
			if !ac.Authenticated() {
				writeAuthError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !ac.Has(perm) {
				slog.Warn("access denied",
					"status", http.StatusForbidden,
					"method", r.Method,
					"path", r.URL.Path,
					"user_id", ac.User.ID,
					"required_permission", string(perm),
					"remote_addr", r.RemoteAddr,
				)
				writeAuthError(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    status,
			"message": message,
		},
	})
}
