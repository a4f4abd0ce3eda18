package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"mogger-go/internal/authz"
	"mogger-go/internal/model"
	"mogger-go/internal/store"
	"mogger-go/internal/testutil"
)

type testEnv struct {
	db       *sql.DB
	queries  *store.Queries
	articles *ArticleService
	comments *CommentService
	users    *UserService

	admin     authz.Context
	author    authz.Context
	commenter authz.Context
	anonymous authz.Context
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	ctx := context.Background()
	if err := store.Seed(ctx, db); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	queries := store.New(db)
	env := &testEnv{
		db:       db,
		queries:  queries,
		articles: NewArticleService(db),
		comments: NewCommentService(db, true),
		users:    NewUserService(db),
	}

	admin, err := queries.GetUserByEmail(ctx, store.DefaultAdminEmail)
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	env.admin = env.contextFor(t, admin)
	env.author = env.contextFor(t, env.createUser(t, "author@example.com", model.GroupAuthor))
	env.commenter = env.contextFor(t, env.createUser(t, "commenter@example.com", model.GroupCommenter))

	return env
}

func (e *testEnv) createUser(t *testing.T, email, groupID string) model.User {
	t.Helper()
	now := time.Now()
	user, err := e.queries.CreateUser(context.Background(), store.CreateUserParams{
		Email:        email,
		PasswordHash: "unused",
		Name:         email,
		GroupID:      groupID,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser %s: %v", email, err)
	}
	return user
}

func (e *testEnv) contextFor(t *testing.T, user model.User) authz.Context {
	t.Helper()
	group, err := e.queries.GetGroup(context.Background(), user.GroupID)
	if err != nil {
		t.Fatalf("GetGroup %s: %v", user.GroupID, err)
	}
	u := user
	return authz.Context{User: &u, Group: &group}
}

func (e *testEnv) createArticle(t *testing.T, ac authz.Context, title string) model.Article {
	t.Helper()
	article, err := e.articles.Create(context.Background(), ac, CreateArticleInput{
		Title:   title,
		Content: "some *markdown* body",
	})
	if err != nil {
		t.Fatalf("Create article %q: %v", title, err)
	}
	return article
}

func (e *testEnv) submitComment(t *testing.T, ac authz.Context, articleID int64, parentID *int64, content string) model.Comment {
	t.Helper()
	comment, err := e.comments.Submit(context.Background(), ac, SubmitCommentInput{
		ArticleID: articleID,
		ParentID:  parentID,
		Content:   content,
	})
	if err != nil {
		t.Fatalf("Submit comment: %v", err)
	}
	return comment
}
