// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"mogger-go/internal/authz"
	"mogger-go/internal/model"
	"mogger-go/internal/store"
	"mogger-go/internal/util"
)

// ArticleService implements article publishing and the article soft-delete
// lifecycle. Every mutating operation takes the acting authorization context
// and decides before touching storage.
type ArticleService struct {
	db      *sql.DB
	queries *store.Queries
}

// NewArticleService creates a new ArticleService.
func NewArticleService(db *sql.DB) *ArticleService {
	return &ArticleService{
		db:      db,
		queries: store.New(db),
	}
}

// CreateArticleInput holds the author-supplied fields of a new article.
// Slug is optional; when empty it is derived from the title.
type CreateArticleInput struct {
	Title   string
	Slug    string
	Content string
}

func (in *CreateArticleInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return &ValidationError{Field: "title", Message: "must not be empty"}
	}
	if strings.TrimSpace(in.Content) == "" {
		return &ValidationError{Field: "content", Message: "must not be empty"}
	}
	if in.Slug != "" && !util.IsValidSlug(in.Slug) {
		return &ValidationError{Field: "slug", Message: "may only contain lowercase letters, digits and hyphens"}
	}
	return nil
}

// Create publishes a new article authored by the acting user.
func (s *ArticleService) Create(ctx context.Context, ac authz.Context, in CreateArticleInput) (model.Article, error) {
	if err := authz.Require(ac, model.PermCreateArticle); err != nil {
		return model.Article{}, err
	}
	if err := in.validate(); err != nil {
		return model.Article{}, err
	}

	slug := in.Slug
	if slug == "" {
		slug = util.Slugify(in.Title)
	}
	if slug == "" {
		return model.Article{}, &ValidationError{Field: "slug", Message: "cannot be derived from title"}
	}

	taken, err := s.queries.CountSlug(ctx, slug, 0)
	if err != nil {
		return model.Article{}, err
	}
	if taken > 0 {
		return model.Article{}, ErrConflict
	}

	article, err := s.queries.CreateArticle(ctx, store.CreateArticleParams{
		Title:     in.Title,
		AuthorID:  ac.User.ID,
		Slug:      slug,
		Content:   in.Content,
		CreatedAt: time.Now(),
		Visible:   true,
	})
	if err != nil {
		return model.Article{}, err
	}

	slog.Info("article created",
		"category", model.EventCategoryArticle,
		"article_id", article.ID,
		"author_id", ac.User.ID,
		"slug", article.Slug,
	)
	return article, nil
}

// Get resolves an article by numeric id or slug. A hidden article is
// reported as missing unless the viewer could edit or delete it.
func (s *ArticleService) Get(ctx context.Context, ac authz.Context, idOrSlug string) (model.Article, error) {
	article, err := s.lookup(ctx, idOrSlug)
	if err != nil {
		return model.Article{}, notFoundIfNoRows(err)
	}

	if !article.Visible && !s.canSeeHidden(ac, &article) {
		return model.Article{}, ErrNotFound
	}
	return article, nil
}

func (s *ArticleService) lookup(ctx context.Context, idOrSlug string) (model.Article, error) {
	if id, err := strconv.ParseInt(idOrSlug, 10, 64); err == nil {
		return s.queries.GetArticleByID(ctx, id)
	}
	return s.queries.GetArticleBySlug(ctx, idOrSlug)
}

// canSeeHidden reports whether the viewer may see a soft-deleted article:
// its author (holding the own delete permission) or a moderator.
func (s *ArticleService) canSeeHidden(ac authz.Context, a *model.Article) bool {
	owner := a.AuthorID
	return authz.Authorize(ac, authz.ActionEditArticle, &owner) == nil ||
		authz.Authorize(ac, authz.ActionDeleteArticle, &owner) == nil
}

// ListResult is one page of an article listing.
type ListResult struct {
	Articles []model.Article
	Total    int64
}

// List returns one page of articles, newest first. Hidden articles are
// included only for viewers holding the foreign edit permission.
func (s *ArticleService) List(ctx context.Context, ac authz.Context, page, perPage int64) (ListResult, error) {
	includeHidden := ac.Has(model.PermEditForeignArticle)

	articles, err := s.queries.ListArticles(ctx, store.ListArticlesParams{
		IncludeHidden: includeHidden,
		Limit:         perPage,
		Offset:        (page - 1) * perPage,
	})
	if err != nil {
		return ListResult{}, err
	}

	total, err := s.queries.CountArticles(ctx, includeHidden)
	if err != nil {
		return ListResult{}, err
	}

	return ListResult{Articles: articles, Total: total}, nil
}

// Edit replaces title, slug and content of an existing article.
func (s *ArticleService) Edit(ctx context.Context, ac authz.Context, id int64, in CreateArticleInput) (model.Article, error) {
	article, err := s.queries.GetArticleByID(ctx, id)
	if err != nil {
		return model.Article{}, notFoundIfNoRows(err)
	}

	owner := article.AuthorID
	if err := authz.Authorize(ac, authz.ActionEditArticle, &owner); err != nil {
		return model.Article{}, err
	}
	if err := in.validate(); err != nil {
		return model.Article{}, err
	}

	slug := in.Slug
	if slug == "" {
		slug = util.Slugify(in.Title)
	}
	if slug == "" {
		return model.Article{}, &ValidationError{Field: "slug", Message: "cannot be derived from title"}
	}
	taken, err := s.queries.CountSlug(ctx, slug, id)
	if err != nil {
		return model.Article{}, err
	}
	if taken > 0 {
		return model.Article{}, ErrConflict
	}

	if err := s.queries.UpdateArticle(ctx, id, in.Title, slug, in.Content); err != nil {
		return model.Article{}, err
	}

	article.Title = in.Title
	article.Slug = slug
	article.Content = in.Content
	return article, nil
}

// Remove soft-deletes an article: it stays in storage with content intact
// but disappears from public listings.
func (s *ArticleService) Remove(ctx context.Context, ac authz.Context, id int64) error {
	return s.setVisible(ctx, ac, id, false)
}

// Restore reverses a soft delete. Same authorization as Remove.
func (s *ArticleService) Restore(ctx context.Context, ac authz.Context, id int64) error {
	return s.setVisible(ctx, ac, id, true)
}

func (s *ArticleService) setVisible(ctx context.Context, ac authz.Context, id int64, visible bool) error {
	article, err := s.queries.GetArticleByID(ctx, id)
	if err != nil {
		return notFoundIfNoRows(err)
	}

	owner := article.AuthorID
	action := authz.ActionDeleteArticle
	if visible {
		action = authz.ActionRestoreArticle
	}
	if err := authz.Authorize(ac, action, &owner); err != nil {
		return err
	}

	return s.queries.UpdateArticleVisibility(ctx, id, visible)
}

// Purge permanently removes an article together with all of its comments,
// in one transaction. Requires the foreign delete permission even for the
// author's own articles.
func (s *ArticleService) Purge(ctx context.Context, ac authz.Context, id int64) error {
	article, err := s.queries.GetArticleByID(ctx, id)
	if err != nil {
		return notFoundIfNoRows(err)
	}

	owner := article.AuthorID
	if err := authz.Authorize(ac, authz.ActionPurgeArticle, &owner); err != nil {
		return err
	}

	err = store.InTx(ctx, s.db, func(q *store.Queries) error {
		if err := q.DeleteCommentsByArticle(ctx, id); err != nil {
			return err
		}
		return q.DeleteArticle(ctx, id)
	})
	if err != nil {
		return err
	}

	slog.Warn("article purged",
		"category", model.EventCategoryArticle,
		"article_id", id,
		"actor_id", ac.User.ID,
	)
	return nil
}
