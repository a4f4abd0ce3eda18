// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"mogger-go/internal/authz"
	"mogger-go/internal/middleware"
	"mogger-go/internal/model"
	"mogger-go/internal/service"
)

// commentAuthorView is the JSON shape of a comment attribution: exactly one
// of user_id or name is set.
type commentAuthorView struct {
	UserID *int64 `json:"user_id,omitempty"`
	Name   string `json:"name,omitempty"`
}

// commentView is the JSON shape of a single rendered comment.
type commentView struct {
	ID        int64             `json:"id"`
	ParentID  *int64            `json:"parent_id,omitempty"`
	ArticleID int64             `json:"article_id"`
	Author    commentAuthorView `json:"author"`
	HTML      string            `json:"html"`
	CreatedAt time.Time         `json:"created_at"`
	Visible   bool              `json:"visible"`
}

// commentTreeView is a comment with its replies.
type commentTreeView struct {
	commentView
	Children []commentTreeView `json:"children"`
}

func authorView(a model.CommentAuthor) commentAuthorView {
	if id, ok := a.UserID(); ok {
		return commentAuthorView{UserID: &id}
	}
	name, _ := a.GuestName()
	return commentAuthorView{Name: name}
}

func (h *Handler) commentToView(c *model.Comment) (commentView, error) {
	rendered, err := h.renderer.Comment(c.Content)
	if err != nil {
		return commentView{}, err
	}
	return commentView{
		ID:        c.ID,
		ParentID:  c.ParentID,
		ArticleID: c.ArticleID,
		Author:    authorView(c.Author),
		HTML:      rendered,
		CreatedAt: c.CreatedAt,
		Visible:   c.Visible,
	}, nil
}

func (h *Handler) nodeToView(node *model.CommentNode) (commentTreeView, error) {
	view, err := h.commentToView(&node.Comment)
	if err != nil {
		return commentTreeView{}, err
	}
	tree := commentTreeView{commentView: view, Children: make([]commentTreeView, 0, len(node.Children))}
	for _, child := range node.Children {
		sub, err := h.nodeToView(child)
		if err != nil {
			return commentTreeView{}, err
		}
		tree.Children = append(tree.Children, sub)
	}
	return tree, nil
}

// ListArticleComments returns the article's comment forest, redacted for
// the viewer.
func (h *Handler) ListArticleComments(w http.ResponseWriter, r *http.Request) {
	article, err := h.articles.Get(r.Context(), middleware.GetAuth(r), chi.URLParam(r, "idOrSlug"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	forest, err := h.comments.Forest(r.Context(), middleware.GetAuth(r), article.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	views := make([]commentTreeView, 0, len(forest.Roots))
	for _, root := range forest.Roots {
		v, err := h.nodeToView(root)
		if err != nil {
			slog.Error("rendering comment tree", "article_id", article.ID, "error", err)
			WriteInternalError(w)
			return
		}
		views = append(views, v)
	}
	WriteSuccess(w, views, nil)
}

// submitCommentRequest is the body of POST /api/comments.
type submitCommentRequest struct {
	ArticleID  int64  `json:"article_id"`
	ParentID   *int64 `json:"parent_id"`
	AuthorName string `json:"author_name"`
	Content    string `json:"content"`
}

// SubmitComment stores a new comment, authenticated or anonymous-with-name.
func (h *Handler) SubmitComment(w http.ResponseWriter, r *http.Request) {
	var req submitCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, "invalid request body", nil)
		return
	}

	comment, err := h.comments.Submit(r.Context(), middleware.GetAuth(r), service.SubmitCommentInput{
		ArticleID: req.ArticleID,
		ParentID:  req.ParentID,
		GuestName: req.AuthorName,
		Content:   req.Content,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	view, err := h.commentToView(&comment)
	if err != nil {
		slog.Error("rendering comment", "comment_id", comment.ID, "error", err)
		WriteInternalError(w)
		return
	}
	WriteCreated(w, view)
}

// GetCommentRaw returns the unrendered markdown source of a comment for
// edit prefill. Editability-gated.
func (h *Handler) GetCommentRaw(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "invalid comment id", nil)
		return
	}

	comment, err := h.comments.Raw(r.Context(), middleware.GetAuth(r), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteSuccess(w, map[string]any{
		"id":      comment.ID,
		"content": comment.Content,
	}, nil)
}

// RenderCommentSubtree returns the rendered subtree of one comment. The
// optional context query parameter climbs that many ancestors first.
func (h *Handler) RenderCommentSubtree(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "invalid comment id", nil)
		return
	}
	contextN := ParseIntParam(r, "context", 0, 0, 100)

	node, err := h.comments.Subtree(r.Context(), middleware.GetAuth(r), id, contextN)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	view, err := h.nodeToView(node)
	if err != nil {
		slog.Error("rendering comment subtree", "comment_id", id, "error", err)
		WriteInternalError(w)
		return
	}
	WriteSuccess(w, view, nil)
}

// updateCommentRequest is the body of PUT /api/comments/{id}.
type updateCommentRequest struct {
	Content string `json:"content"`
}

// UpdateComment replaces a comment's content.
func (h *Handler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "invalid comment id", nil)
		return
	}

	var req updateCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, "invalid request body", nil)
		return
	}

	comment, err := h.comments.Edit(r.Context(), middleware.GetAuth(r), id, req.Content)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	view, err := h.commentToView(&comment)
	if err != nil {
		slog.Error("rendering comment", "comment_id", comment.ID, "error", err)
		WriteInternalError(w)
		return
	}
	WriteSuccess(w, view, nil)
}

// RemoveComment soft-deletes a comment.
func (h *Handler) RemoveComment(w http.ResponseWriter, r *http.Request) {
	h.commentLifecycle(w, r, h.comments.Remove)
}

// RestoreComment reverses a comment soft delete.
func (h *Handler) RestoreComment(w http.ResponseWriter, r *http.Request) {
	h.commentLifecycle(w, r, h.comments.Restore)
}

// PurgeComment permanently deletes a comment, re-parenting its replies.
func (h *Handler) PurgeComment(w http.ResponseWriter, r *http.Request) {
	h.commentLifecycle(w, r, h.comments.Purge)
}

func (h *Handler) commentLifecycle(w http.ResponseWriter, r *http.Request, op func(context.Context, authz.Context, int64) error) {
	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "invalid comment id", nil)
		return
	}
	if err := op(r.Context(), middleware.GetAuth(r), id); err != nil {
		writeServiceError(w, err)
		return
	}
	WriteSuccess(w, map[string]any{"id": id}, nil)
}
