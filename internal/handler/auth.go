// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"mogger-go/internal/auth"
	"mogger-go/internal/middleware"
	"mogger-go/internal/model"
)

// loginRequest is the body of POST /api/login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates a user by email and password, renews the session
// token and stores the user id in the session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, "invalid request body", nil)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		WriteBadRequest(w, "email and password are required", nil)
		return
	}

	user, err := h.queries.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("loading user for login", "error", err)
			WriteInternalError(w)
			return
		}
		// Unknown email and wrong password are indistinguishable.
		slog.Warn("login failed", "category", model.EventCategoryAuth, "email", req.Email)
		WriteUnauthorized(w, "invalid credentials")
		return
	}

	ok, err := auth.CheckPassword(req.Password, user.PasswordHash)
	if err != nil || !ok {
		slog.Warn("login failed", "category", model.EventCategoryAuth, "email", req.Email)
		WriteUnauthorized(w, "invalid credentials")
		return
	}

	// Re-hash with current parameters while the cleartext is at hand.
	if user.Rehash || auth.NeedsRehash(user.PasswordHash) {
		if newHash, err := auth.HashPassword(req.Password); err == nil {
			if err := h.queries.UpdateUserPassword(r.Context(), user.ID, newHash); err != nil {
				slog.Error("rehashing password", "user_id", user.ID, "error", err)
			}
		}
	}

	// Renew the token on privilege change to prevent session fixation.
	if err := h.sessions.RenewToken(r.Context()); err != nil {
		slog.Error("renewing session token", "error", err)
		WriteInternalError(w)
		return
	}
	h.sessions.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	slog.Info("user logged in", "category", model.EventCategoryAuth, "user_id", user.ID)
	WriteSuccess(w, user, nil)
}

// Logout destroys the current session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := h.sessions.GetInt64(r.Context(), middleware.SessionKeyUserID)

	if err := h.sessions.Destroy(r.Context()); err != nil {
		slog.Error("destroying session", "error", err)
		WriteInternalError(w)
		return
	}

	if userID != 0 {
		slog.Info("user logged out", "category", model.EventCategoryAuth, "user_id", userID)
	}
	WriteSuccess(w, map[string]any{"logged_out": true}, nil)
}
