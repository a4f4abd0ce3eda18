// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mogger-go/internal/authz"
	"mogger-go/internal/markdown"
	"mogger-go/internal/middleware"
	"mogger-go/internal/model"
	"mogger-go/internal/service"
)

// articleView is the JSON shape of an article with rendered content.
type articleView struct {
	model.Article
	HTML        string `json:"html,omitempty"`
	Preview     string `json:"preview,omitempty"`
	Description string `json:"description,omitempty"`
	Comments    int64  `json:"comments"`
}

func (h *Handler) articleToView(a *model.Article, full bool) (articleView, error) {
	rendered, err := h.renderer.Article(a.Content)
	if err != nil {
		return articleView{}, err
	}

	view := articleView{Article: *a, Description: a.Description()}
	if full {
		view.HTML = rendered
	} else {
		view.Preview = markdown.Preview(rendered)
		view.Content = "" // listings carry the preview, not the raw source
	}
	return view, nil
}

// articleRequest is the body of article create and update calls.
type articleRequest struct {
	Title   string `json:"title"`
	Slug    string `json:"slug"`
	Content string `json:"content"`
}

// ListArticles returns one page of articles, newest first.
func (h *Handler) ListArticles(w http.ResponseWriter, r *http.Request) {
	page := ParsePageParam(r)
	perPage := ParsePerPageParam(r, DefaultPerPage, MaxPerPage)

	res, err := h.articles.List(r.Context(), middleware.GetAuth(r), int64(page), int64(perPage))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	views := make([]articleView, 0, len(res.Articles))
	for i := range res.Articles {
		v, err := h.articleToView(&res.Articles[i], false)
		if err != nil {
			slog.Error("rendering article", "article_id", res.Articles[i].ID, "error", err)
			WriteInternalError(w)
			return
		}
		n, err := h.queries.CountCommentsByArticle(r.Context(), res.Articles[i].ID)
		if err != nil {
			slog.Error("counting comments", "article_id", res.Articles[i].ID, "error", err)
			WriteInternalError(w)
			return
		}
		v.Comments = n
		views = append(views, v)
	}

	WriteSuccess(w, views, &Meta{
		Total:   res.Total,
		Page:    page,
		PerPage: perPage,
		Pages:   CalculateTotalPages(int(res.Total), perPage),
	})
}

// GetArticle returns a single article by id or slug, rendered.
func (h *Handler) GetArticle(w http.ResponseWriter, r *http.Request) {
	idOrSlug := chi.URLParam(r, "idOrSlug")

	article, err := h.articles.Get(r.Context(), middleware.GetAuth(r), idOrSlug)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	view, err := h.articleToView(&article, true)
	if err != nil {
		slog.Error("rendering article", "article_id", article.ID, "error", err)
		WriteInternalError(w)
		return
	}
	n, err := h.queries.CountCommentsByArticle(r.Context(), article.ID)
	if err != nil {
		slog.Error("counting comments", "article_id", article.ID, "error", err)
		WriteInternalError(w)
		return
	}
	view.Comments = n

	WriteSuccess(w, view, nil)
}

// CreateArticle publishes a new article by the acting user.
func (h *Handler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	var req articleRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, "invalid request body", nil)
		return
	}

	article, err := h.articles.Create(r.Context(), middleware.GetAuth(r), service.CreateArticleInput{
		Title:   req.Title,
		Slug:    req.Slug,
		Content: req.Content,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteCreated(w, article)
}

// UpdateArticle replaces an article's title, slug and content.
func (h *Handler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	id, err := ParseURLParamInt64(r, "idOrSlug")
	if err != nil {
		WriteBadRequest(w, "invalid article id", nil)
		return
	}

	var req articleRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, "invalid request body", nil)
		return
	}

	article, err := h.articles.Edit(r.Context(), middleware.GetAuth(r), id, service.CreateArticleInput{
		Title:   req.Title,
		Slug:    req.Slug,
		Content: req.Content,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteSuccess(w, article, nil)
}

// RemoveArticle soft-deletes an article.
func (h *Handler) RemoveArticle(w http.ResponseWriter, r *http.Request) {
	h.articleLifecycle(w, r, h.articles.Remove)
}

// RestoreArticle reverses an article soft delete.
func (h *Handler) RestoreArticle(w http.ResponseWriter, r *http.Request) {
	h.articleLifecycle(w, r, h.articles.Restore)
}

// PurgeArticle permanently deletes an article and its comments.
func (h *Handler) PurgeArticle(w http.ResponseWriter, r *http.Request) {
	h.articleLifecycle(w, r, h.articles.Purge)
}

func (h *Handler) articleLifecycle(w http.ResponseWriter, r *http.Request, op func(context.Context, authz.Context, int64) error) {
	id, err := ParseURLParamInt64(r, "idOrSlug")
	if err != nil {
		WriteBadRequest(w, "invalid article id", nil)
		return
	}
	if err := op(r.Context(), middleware.GetAuth(r), id); err != nil {
		writeServiceError(w, err)
		return
	}
	WriteSuccess(w, map[string]any{"id": id}, nil)
}
