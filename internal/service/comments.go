// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"mogger-go/internal/authz"
	"mogger-go/internal/model"
	"mogger-go/internal/store"
)

// CommentService implements comment submission, editing, the soft-delete
// lifecycle, and the redacted-forest read path.
type CommentService struct {
	db      *sql.DB
	queries *store.Queries

	// allowAnon permits comment submission under a free-form display
	// name without an account.
	allowAnon bool
}

// NewCommentService creates a new CommentService.
func NewCommentService(db *sql.DB, allowAnon bool) *CommentService {
	return &CommentService{
		db:        db,
		queries:   store.New(db),
		allowAnon: allowAnon,
	}
}

// SubmitCommentInput holds the fields of a new comment. GuestName is only
// consulted for anonymous submissions.
type SubmitCommentInput struct {
	ArticleID int64
	ParentID  *int64
	GuestName string
	Content   string
}

// Submit validates and stores a new comment. Authenticated users need the
// comment creation permission; anonymous submissions need the instance flag
// and a display name.
func (s *CommentService) Submit(ctx context.Context, ac authz.Context, in SubmitCommentInput) (model.Comment, error) {
	var author model.CommentAuthor
	switch {
	case ac.Authenticated():
		if err := authz.Require(ac, model.PermCreateComment); err != nil {
			return model.Comment{}, err
		}
		author = model.AuthoredBy(ac.User.ID)
	case s.allowAnon:
		if strings.TrimSpace(in.GuestName) == "" {
			return model.Comment{}, &ValidationError{Field: "author_name", Message: "required for anonymous comments"}
		}
		author = model.Guest(strings.TrimSpace(in.GuestName))
	default:
		return model.Comment{}, authz.ErrForbidden
	}

	if strings.TrimSpace(in.Content) == "" {
		return model.Comment{}, &ValidationError{Field: "content", Message: "must not be empty"}
	}

	// The target article must exist and be publicly visible.
	article, err := s.queries.GetArticleByID(ctx, in.ArticleID)
	if err != nil {
		return model.Comment{}, notFoundIfNoRows(err)
	}
	if !article.Visible {
		return model.Comment{}, ErrNotFound
	}

	if in.ParentID != nil {
		parent, err := s.queries.GetCommentByID(ctx, *in.ParentID)
		if err != nil {
			return model.Comment{}, notFoundIfNoRows(err)
		}
		if parent.ArticleID != in.ArticleID {
			return model.Comment{}, &ValidationError{Field: "parent_id", Message: "parent belongs to a different article"}
		}
	}

	comment, err := s.queries.CreateComment(ctx, store.CreateCommentParams{
		ParentID:  in.ParentID,
		ArticleID: in.ArticleID,
		Author:    author,
		Content:   in.Content,
		CreatedAt: time.Now(),
		Visible:   true,
	})
	if err != nil {
		return model.Comment{}, err
	}

	slog.Info("comment submitted",
		"category", model.EventCategoryComment,
		"comment_id", comment.ID,
		"article_id", comment.ArticleID,
	)
	return comment, nil
}

// Edit replaces a comment's content. Anonymous comments have no owner and
// can only be edited with the foreign permission.
func (s *CommentService) Edit(ctx context.Context, ac authz.Context, id int64, content string) (model.Comment, error) {
	comment, err := s.queries.GetCommentByID(ctx, id)
	if err != nil {
		return model.Comment{}, notFoundIfNoRows(err)
	}

	if err := authz.Authorize(ac, authz.ActionEditComment, comment.OwnerID()); err != nil {
		return model.Comment{}, err
	}
	if strings.TrimSpace(content) == "" {
		return model.Comment{}, &ValidationError{Field: "content", Message: "must not be empty"}
	}

	if err := s.queries.UpdateCommentContent(ctx, id, content); err != nil {
		return model.Comment{}, err
	}
	comment.Content = content
	return comment, nil
}

// Remove soft-deletes a comment. The row and its content survive; readers
// without access see a placeholder in its place.
func (s *CommentService) Remove(ctx context.Context, ac authz.Context, id int64) error {
	return s.setVisible(ctx, ac, id, false)
}

// Restore reverses a soft delete, bringing the original content back
// byte-for-byte. Same authorization as Remove.
func (s *CommentService) Restore(ctx context.Context, ac authz.Context, id int64) error {
	return s.setVisible(ctx, ac, id, true)
}

func (s *CommentService) setVisible(ctx context.Context, ac authz.Context, id int64, visible bool) error {
	comment, err := s.queries.GetCommentByID(ctx, id)
	if err != nil {
		return notFoundIfNoRows(err)
	}

	action := authz.ActionDeleteComment
	if visible {
		action = authz.ActionRestoreComment
	}
	if err := authz.Authorize(ac, action, comment.OwnerID()); err != nil {
		return err
	}

	return s.queries.UpdateCommentVisibility(ctx, id, visible)
}

// Purge permanently removes a comment. Its direct children are re-parented
// to the purged comment's own parent in the same transaction, so replies
// survive with one level of nesting removed. Irreversible; requires the
// foreign delete permission even on the actor's own comments.
func (s *CommentService) Purge(ctx context.Context, ac authz.Context, id int64) error {
	comment, err := s.queries.GetCommentByID(ctx, id)
	if err != nil {
		return notFoundIfNoRows(err)
	}

	if err := authz.Authorize(ac, authz.ActionPurgeComment, comment.OwnerID()); err != nil {
		return err
	}

	err = store.InTx(ctx, s.db, func(q *store.Queries) error {
		if err := q.ReparentComments(ctx, id, comment.ParentID); err != nil {
			return err
		}
		return q.DeleteComment(ctx, id)
	})
	if err != nil {
		return err
	}

	slog.Warn("comment purged",
		"category", model.EventCategoryComment,
		"comment_id", id,
		"article_id", comment.ArticleID,
		"actor_id", ac.User.ID,
	)
	return nil
}

// Forest returns the article's full comment tree, redacted for the viewer:
// soft-deleted comments keep their place but show a placeholder unless the
// viewer authored them or moderates comments.
func (s *CommentService) Forest(ctx context.Context, ac authz.Context, articleID int64) (*model.Forest, error) {
	if _, err := s.queries.GetArticleByID(ctx, articleID); err != nil {
		return nil, notFoundIfNoRows(err)
	}

	comments, err := s.queries.ListCommentsByArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}

	forest := model.BuildForest(comments)
	forest.Redact(s.canReveal(ac))
	return forest, nil
}

// canReveal returns the predicate deciding whether the viewer may read a
// soft-deleted comment's original content.
func (s *CommentService) canReveal(ac authz.Context) func(*model.Comment) bool {
	return func(c *model.Comment) bool {
		if ac.Authenticated() && c.IsAuthoredBy(ac.User.ID) {
			return true
		}
		return ac.Has(model.PermEditForeignComment) || ac.Has(model.PermDeleteForeignComment)
	}
}

// Raw returns a comment's unredacted content for edit prefill. It is gated
// by editability: a hidden comment the viewer cannot edit is reported as
// missing, a visible one as forbidden.
func (s *CommentService) Raw(ctx context.Context, ac authz.Context, id int64) (model.Comment, error) {
	comment, err := s.queries.GetCommentByID(ctx, id)
	if err != nil {
		return model.Comment{}, notFoundIfNoRows(err)
	}

	if err := authz.Authorize(ac, authz.ActionEditComment, comment.OwnerID()); err != nil {
		if !comment.Visible {
			return model.Comment{}, ErrNotFound
		}
		return model.Comment{}, err
	}
	return comment, nil
}

// Subtree returns the redacted subtree rooted at the given comment, after
// climbing up to contextN ancestors so a reply renders inside its thread.
func (s *CommentService) Subtree(ctx context.Context, ac authz.Context, id int64, contextN int) (*model.CommentNode, error) {
	comment, err := s.queries.GetCommentByID(ctx, id)
	if err != nil {
		return nil, notFoundIfNoRows(err)
	}

	comments, err := s.queries.ListCommentsByArticle(ctx, comment.ArticleID)
	if err != nil {
		return nil, err
	}

	forest := model.BuildForest(comments)
	forest.Redact(s.canReveal(ac))

	node := forest.Node(id)
	if node == nil {
		return nil, ErrNotFound
	}
	return forest.Ancestor(node, contextN), nil
}

// ListByUser returns a user's comments, newest first. Soft-deleted comments
// are included only for the user themselves or comment moderators.
func (s *CommentService) ListByUser(ctx context.Context, ac authz.Context, userID int64) ([]model.Comment, error) {
	includeHidden := (ac.Authenticated() && ac.User.ID == userID) ||
		ac.Has(model.PermEditForeignComment) ||
		ac.Has(model.PermDeleteForeignComment)

	return s.queries.ListCommentsByUser(ctx, userID, includeHidden)
}
