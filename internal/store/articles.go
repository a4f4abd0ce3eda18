package store

import (
	"context"
	"fmt"
	"time"

	"mogger-go/internal/model"
)

// CreateArticleParams holds the fields for a new article row.
type CreateArticleParams struct {
	Title     string
	AuthorID  int64
	Slug      string
	Content   string
	CreatedAt time.Time
	Visible   bool
}

// CreateArticle inserts an article and returns the stored record.
func (q *Queries) CreateArticle(ctx context.Context, arg CreateArticleParams) (model.Article, error) {
	var id int64
	err := q.db.QueryRowContext(ctx,
		`INSERT INTO articles (title, author_id, slug, content, created_at, visible)
		 VALUES (?, ?, ?, ?, ?, ?)
		 RETURNING id`,
		arg.Title, arg.AuthorID, arg.Slug, arg.Content, arg.CreatedAt, arg.Visible,
	).Scan(&id)
	if err != nil {
		return model.Article{}, fmt.Errorf("creating article: %w", err)
	}
	return model.Article{
		ID:        id,
		Title:     arg.Title,
		AuthorID:  arg.AuthorID,
		Slug:      arg.Slug,
		Content:   arg.Content,
		CreatedAt: arg.CreatedAt,
		Visible:   arg.Visible,
	}, nil
}

const articleColumns = `id, title, author_id, slug, content, created_at, visible`

func scanArticle(row interface{ Scan(...any) error }) (model.Article, error) {
	var a model.Article
	err := row.Scan(&a.ID, &a.Title, &a.AuthorID, &a.Slug, &a.Content, &a.CreatedAt, &a.Visible)
	return a, err
}

// GetArticleByID returns the article with the given id.
func (q *Queries) GetArticleByID(ctx context.Context, id int64) (model.Article, error) {
	a, err := scanArticle(q.db.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE id = ?`, id))
	if err != nil {
		return model.Article{}, fmt.Errorf("getting article %d: %w", id, err)
	}
	return a, nil
}

// GetArticleBySlug returns the article with the given slug.
func (q *Queries) GetArticleBySlug(ctx context.Context, slug string) (model.Article, error) {
	a, err := scanArticle(q.db.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE slug = ?`, slug))
	if err != nil {
		return model.Article{}, fmt.Errorf("getting article by slug: %w", err)
	}
	return a, nil
}

// ListArticlesParams controls listing pagination and hidden-row access.
type ListArticlesParams struct {
	IncludeHidden bool
	Limit         int64
	Offset        int64
}

// ListArticles returns articles newest first. Hidden articles are only
// included when requested (moderator listings).
func (q *Queries) ListArticles(ctx context.Context, arg ListArticlesParams) ([]model.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE visible = 1 ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	if arg.IncludeHidden {
		query = `SELECT ` + articleColumns + ` FROM articles ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	}

	rows, err := q.db.QueryContext(ctx, query, arg.Limit, arg.Offset)
	if err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}
	defer rows.Close()

	var articles []model.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// CountArticles counts listable articles under the same visibility rule as
// ListArticles.
func (q *Queries) CountArticles(ctx context.Context, includeHidden bool) (int64, error) {
	query := `SELECT COUNT(*) FROM articles WHERE visible = 1`
	if includeHidden {
		query = `SELECT COUNT(*) FROM articles`
	}
	var n int64
	if err := q.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting articles: %w", err)
	}
	return n, nil
}

// UpdateArticle replaces title, slug and content.
func (q *Queries) UpdateArticle(ctx context.Context, id int64, title, slug, content string) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE articles SET title = ?, slug = ?, content = ? WHERE id = ?`,
		title, slug, content, id,
	)
	if err != nil {
		return fmt.Errorf("updating article %d: %w", id, err)
	}
	return nil
}

// UpdateArticleVisibility toggles the soft-delete flag. Content is
// untouched, so remove followed by restore is lossless.
func (q *Queries) UpdateArticleVisibility(ctx context.Context, id int64, visible bool) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE articles SET visible = ? WHERE id = ?`, visible, id,
	)
	if err != nil {
		return fmt.Errorf("updating article %d visibility: %w", id, err)
	}
	return nil
}

// DeleteArticle removes an article row permanently.
func (q *Queries) DeleteArticle(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting article %d: %w", id, err)
	}
	return nil
}

// CountArticlesByAuthor counts all articles authored by the user,
// including hidden ones.
func (q *Queries) CountArticlesByAuthor(ctx context.Context, authorID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM articles WHERE author_id = ?`, authorID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting articles for author %d: %w", authorID, err)
	}
	return n, nil
}

// CountSlug reports how many articles other than excludeID use the slug.
func (q *Queries) CountSlug(ctx context.Context, slug string, excludeID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM articles WHERE slug = ? AND id != ?`, slug, excludeID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting slug %q: %w", slug, err)
	}
	return n, nil
}
