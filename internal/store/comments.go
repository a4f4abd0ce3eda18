package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"mogger-go/internal/model"
)

// CreateCommentParams holds the fields for a new comment row.
type CreateCommentParams struct {
	ParentID  *int64
	ArticleID int64
	Author    model.CommentAuthor
	Content   string
	CreatedAt time.Time
	Visible   bool
}

// CreateComment inserts a comment. The author exclusive-or invariant is
// validated here before the CHECK constraint gets a chance to fire.
func (q *Queries) CreateComment(ctx context.Context, arg CreateCommentParams) (model.Comment, error) {
	if err := arg.Author.Validate(); err != nil {
		return model.Comment{}, err
	}

	authorID, authorName := splitAuthor(arg.Author)

	var id int64
	err := q.db.QueryRowContext(ctx,
		`INSERT INTO comments (parent_id, article_id, author_id, author_name, content, created_at, visible)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 RETURNING id`,
		arg.ParentID, arg.ArticleID, authorID, authorName, arg.Content, arg.CreatedAt, arg.Visible,
	).Scan(&id)
	if err != nil {
		return model.Comment{}, fmt.Errorf("creating comment: %w", err)
	}
	return model.Comment{
		ID:        id,
		ParentID:  arg.ParentID,
		ArticleID: arg.ArticleID,
		Author:    arg.Author,
		Content:   arg.Content,
		CreatedAt: arg.CreatedAt,
		Visible:   arg.Visible,
	}, nil
}

func splitAuthor(a model.CommentAuthor) (sql.NullInt64, sql.NullString) {
	if id, ok := a.UserID(); ok {
		return sql.NullInt64{Int64: id, Valid: true}, sql.NullString{}
	}
	name, _ := a.GuestName()
	return sql.NullInt64{}, sql.NullString{String: name, Valid: true}
}

func joinAuthor(id sql.NullInt64, name sql.NullString) (model.CommentAuthor, error) {
	switch {
	case id.Valid && !name.Valid:
		return model.AuthoredBy(id.Int64), nil
	case name.Valid && !id.Valid:
		return model.Guest(name.String), nil
	default:
		return model.CommentAuthor{}, model.ErrInvalidAuthor
	}
}

const commentColumns = `id, parent_id, article_id, author_id, author_name, content, created_at, visible`

func scanComment(row interface{ Scan(...any) error }) (model.Comment, error) {
	var (
		c          model.Comment
		parentID   sql.NullInt64
		authorID   sql.NullInt64
		authorName sql.NullString
	)
	if err := row.Scan(&c.ID, &parentID, &c.ArticleID, &authorID, &authorName, &c.Content, &c.CreatedAt, &c.Visible); err != nil {
		return model.Comment{}, err
	}
	if parentID.Valid {
		c.ParentID = &parentID.Int64
	}
	author, err := joinAuthor(authorID, authorName)
	if err != nil {
		return model.Comment{}, fmt.Errorf("comment %d: %w", c.ID, err)
	}
	c.Author = author
	return c, nil
}

// GetCommentByID returns the comment with the given id.
func (q *Queries) GetCommentByID(ctx context.Context, id int64) (model.Comment, error) {
	c, err := scanComment(q.db.QueryRowContext(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE id = ?`, id))
	if err != nil {
		return model.Comment{}, fmt.Errorf("getting comment %d: %w", id, err)
	}
	return c, nil
}

// ListCommentsByArticle returns all comments of one article in creation
// order, the input the forest builder expects.
func (q *Queries) ListCommentsByArticle(ctx context.Context, articleID int64) ([]model.Comment, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE article_id = ? ORDER BY created_at, id`,
		articleID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing comments for article %d: %w", articleID, err)
	}
	defer rows.Close()

	return collectComments(rows)
}

// ListCommentsByUser returns a user's comments, newest first, optionally
// including soft-deleted ones.
func (q *Queries) ListCommentsByUser(ctx context.Context, userID int64, includeHidden bool) ([]model.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE author_id = ? AND visible = 1 ORDER BY created_at DESC, id DESC`
	if includeHidden {
		query = `SELECT ` + commentColumns + ` FROM comments WHERE author_id = ? ORDER BY created_at DESC, id DESC`
	}

	rows, err := q.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing comments for user %d: %w", userID, err)
	}
	defer rows.Close()

	return collectComments(rows)
}

func collectComments(rows *sql.Rows) ([]model.Comment, error) {
	var comments []model.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// UpdateCommentContent replaces a comment's body.
func (q *Queries) UpdateCommentContent(ctx context.Context, id int64, content string) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE comments SET content = ? WHERE id = ?`, content, id,
	)
	if err != nil {
		return fmt.Errorf("updating comment %d: %w", id, err)
	}
	return nil
}

// UpdateCommentVisibility toggles the soft-delete flag, leaving content
// untouched.
func (q *Queries) UpdateCommentVisibility(ctx context.Context, id int64, visible bool) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE comments SET visible = ? WHERE id = ?`, visible, id,
	)
	if err != nil {
		return fmt.Errorf("updating comment %d visibility: %w", id, err)
	}
	return nil
}

// ReparentComments moves all direct children of oldParent to newParent
// (nil promotes them to top level). Runs before a purge so the replies
// below a purged comment survive.
func (q *Queries) ReparentComments(ctx context.Context, oldParent int64, newParent *int64) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE comments SET parent_id = ? WHERE parent_id = ?`, newParent, oldParent,
	)
	if err != nil {
		return fmt.Errorf("reparenting children of comment %d: %w", oldParent, err)
	}
	return nil
}

// DeleteComment removes a comment row permanently.
func (q *Queries) DeleteComment(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting comment %d: %w", id, err)
	}
	return nil
}

// DeleteCommentsByArticle removes all comments of an article. Used inside
// the article purge transaction.
func (q *Queries) DeleteCommentsByArticle(ctx context.Context, articleID int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM comments WHERE article_id = ?`, articleID)
	if err != nil {
		return fmt.Errorf("deleting comments for article %d: %w", articleID, err)
	}
	return nil
}

// AnonymizeCommentsByUser converts a user's comments into guest comments
// under the given display name. Used inside the account deletion
// transaction so the comments survive their author.
func (q *Queries) AnonymizeCommentsByUser(ctx context.Context, userID int64, guestName string) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE comments SET author_id = NULL, author_name = ? WHERE author_id = ?`,
		guestName, userID,
	)
	if err != nil {
		return fmt.Errorf("anonymizing comments of user %d: %w", userID, err)
	}
	return nil
}

// CountCommentsByArticle counts the visible comments of an article.
func (q *Queries) CountCommentsByArticle(ctx context.Context, articleID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM comments WHERE article_id = ? AND visible = 1`, articleID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting comments for article %d: %w", articleID, err)
	}
	return n, nil
}
