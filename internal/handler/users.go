// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"mogger-go/internal/auth"
	"mogger-go/internal/middleware"
	"mogger-go/internal/model"
	"mogger-go/internal/service"
	"mogger-go/internal/store"
)

// MinPasswordLength is the minimum accepted password length on signup.
const MinPasswordLength = 8

// signupRequest is the body of POST /api/users.
type signupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (req *signupRequest) validate() map[string]string {
	problems := make(map[string]string)
	if _, err := mail.ParseAddress(req.Email); err != nil {
		problems["email"] = "must be a valid email address"
	}
	if strings.TrimSpace(req.Name) == "" {
		problems["name"] = "must not be empty"
	}
	if len(req.Password) < MinPasswordLength {
		problems["password"] = "must be at least 8 characters"
	}
	if len(problems) == 0 {
		return nil
	}
	return problems
}

// Signup creates a new account in the commenter group. Open to the public
// when signups are enabled; otherwise restricted to users who may create
// users.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	ac := middleware.GetAuth(r)
	if !h.cfg.AllowSignups && !ac.Has(model.PermCreateUser) {
		WriteForbidden(w)
		return
	}

	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, "invalid request body", nil)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if problems := req.validate(); problems != nil {
		WriteBadRequest(w, "invalid input", problems)
		return
	}

	taken, err := h.queries.CountUsersByEmail(r.Context(), req.Email)
	if err != nil {
		slog.Error("checking email uniqueness", "error", err)
		WriteInternalError(w)
		return
	}
	if taken > 0 {
		WriteConflict(w, "email already registered")
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("hashing password", "error", err)
		WriteInternalError(w)
		return
	}

	now := time.Now()
	user, err := h.queries.CreateUser(r.Context(), store.CreateUserParams{
		Email:        req.Email,
		PasswordHash: passwordHash,
		Name:         strings.TrimSpace(req.Name),
		GroupID:      model.GroupCommenter,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		slog.Error("creating user", "error", err)
		WriteInternalError(w)
		return
	}

	slog.Info("user signed up", "category", model.EventCategoryUser, "user_id", user.ID)
	WriteCreated(w, user)
}

// updateUserRequest is the body of PUT /api/users/{id}. Password is
// optional; OldPassword proves the actor knows the current one when
// changing their own.
type updateUserRequest struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	Password    string `json:"password"`
	OldPassword string `json:"old_password"`
}

func (req *updateUserRequest) validate() map[string]string {
	problems := make(map[string]string)
	if _, err := mail.ParseAddress(req.Email); err != nil {
		problems["email"] = "must be a valid email address"
	}
	if strings.TrimSpace(req.Name) == "" {
		problems["name"] = "must not be empty"
	}
	if req.Password != "" && len(req.Password) < MinPasswordLength {
		problems["password"] = "must be at least 8 characters"
	}
	if len(problems) == 0 {
		return nil
	}
	return problems
}

// UpdateUser edits an account's profile and optionally its password.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "invalid user id", nil)
		return
	}

	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, "invalid request body", nil)
		return
	}
	if problems := req.validate(); problems != nil {
		WriteBadRequest(w, "invalid input", problems)
		return
	}

	user, err := h.users.Update(r.Context(), middleware.GetAuth(r), id, service.UpdateUserInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		OldPassword: req.OldPassword,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteSuccess(w, user, nil)
}

// DeleteUser permanently removes an account. Deleting your own account also
// ends the session.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "invalid user id", nil)
		return
	}

	ac := middleware.GetAuth(r)
	if err := h.users.Delete(r.Context(), ac, id); err != nil {
		writeServiceError(w, err)
		return
	}

	if ac.Authenticated() && ac.User.ID == id {
		if err := h.sessions.Destroy(r.Context()); err != nil {
			slog.Error("destroying session after account deletion", "error", err)
		}
	}
	WriteSuccess(w, map[string]any{"id": id}, nil)
}

// ListUserComments returns a user's comments, newest first. Hidden comments
// are included only for the user themselves and comment moderators.
func (h *Handler) ListUserComments(w http.ResponseWriter, r *http.Request) {
	userID, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "invalid user id", nil)
		return
	}

	comments, err := h.comments.ListByUser(r.Context(), middleware.GetAuth(r), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	views := make([]commentView, 0, len(comments))
	for i := range comments {
		v, err := h.commentToView(&comments[i])
		if err != nil {
			slog.Error("rendering comment", "comment_id", comments[i].ID, "error", err)
			WriteInternalError(w)
			return
		}
		views = append(views, v)
	}
	WriteSuccess(w, views, nil)
}
