// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"mogger-go/internal/middleware"
)

// Routes mounts the API under /api. The session and auth-context middleware
// are expected to already wrap the router; loginProtection may be nil
// (tests).
func (h *Handler) Routes(loginProtection *middleware.LoginProtection) http.Handler {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		if loginProtection != nil {
			r.With(loginProtection.Middleware()).Post("/login", h.Login)
		} else {
			r.Post("/login", h.Login)
		}
		r.Post("/logout", h.Logout)
		r.Post("/users", h.Signup)
		r.Put("/users/{id}", h.UpdateUser)
		r.Delete("/users/{id}", h.DeleteUser)
		r.Get("/users/{id}/comments", h.ListUserComments)

		r.Route("/articles", func(r chi.Router) {
			r.Get("/", h.ListArticles)
			r.Post("/", h.CreateArticle)
			// One param name for the whole subtree; chi rejects mixed
			// wildcard names at the same position.
			r.Get("/{idOrSlug}", h.GetArticle)
			r.Get("/{idOrSlug}/comments", h.ListArticleComments)
			r.Put("/{idOrSlug}", h.UpdateArticle)
			r.Post("/{idOrSlug}/remove", h.RemoveArticle)
			r.Post("/{idOrSlug}/restore", h.RestoreArticle)
			r.Delete("/{idOrSlug}", h.PurgeArticle)
		})

		r.Route("/comments", func(r chi.Router) {
			r.Post("/", h.SubmitComment)
			r.Get("/{id}", h.GetCommentRaw)
			r.Get("/{id}/render", h.RenderCommentSubtree)
			r.Put("/{id}", h.UpdateComment)
			r.Post("/{id}/remove", h.RemoveComment)
			r.Post("/{id}/restore", h.RestoreComment)
			r.Delete("/{id}", h.PurgeComment)
		})
	})

	return r
}
