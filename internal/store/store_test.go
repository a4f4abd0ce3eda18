package store_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"mogger-go/internal/model"
	"mogger-go/internal/store"
	"mogger-go/internal/testutil"
)

func seededQueries(t *testing.T) (*sql.DB, *store.Queries, model.User) {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	ctx := context.Background()
	if err := store.Seed(ctx, db); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	queries := store.New(db)
	admin, err := queries.GetUserByEmail(ctx, store.DefaultAdminEmail)
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	return db, queries, admin
}

func createArticle(t *testing.T, queries *store.Queries, authorID int64, slug string) model.Article {
	t.Helper()
	article, err := queries.CreateArticle(context.Background(), store.CreateArticleParams{
		Title:     "Test Article",
		AuthorID:  authorID,
		Slug:      slug,
		Content:   "body",
		CreatedAt: time.Now(),
		Visible:   true,
	})
	if err != nil {
		t.Fatalf("CreateArticle: %v", err)
	}
	return article
}

func TestSeed_Idempotent(t *testing.T) {
	db, queries, _ := seededQueries(t)

	if err := store.Seed(context.Background(), db); err != nil {
		t.Fatalf("second Seed: %v", err)
	}

	groups, err := queries.ListGroups(context.Background())
	if err != nil {
		t.Fatalf("ListGroups: %v", err)
	}
	if len(groups) != 3 {
		t.Fatalf("got %d groups, want 3", len(groups))
	}
}

func TestSeed_AdminHasAll(t *testing.T) {
	_, queries, admin := seededQueries(t)

	group, err := queries.GetGroup(context.Background(), admin.GroupID)
	if err != nil {
		t.Fatalf("GetGroup: %v", err)
	}
	if !group.Has(model.PermDeleteForeignComment) {
		t.Error("admin group should imply every permission")
	}
}

func TestGetGroup_Missing(t *testing.T) {
	_, queries, _ := seededQueries(t)

	_, err := queries.GetGroup(context.Background(), "no-such-group")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("got %v, want sql.ErrNoRows", err)
	}
}

func TestCreateComment_AuthorExclusiveOr(t *testing.T) {
	_, queries, admin := seededQueries(t)
	ctx := context.Background()
	article := createArticle(t, queries, admin.ID, "xor-test")

	// Valid: registered author.
	if _, err := queries.CreateComment(ctx, store.CreateCommentParams{
		ArticleID: article.ID,
		Author:    model.AuthoredBy(admin.ID),
		Content:   "by user",
		CreatedAt: time.Now(),
		Visible:   true,
	}); err != nil {
		t.Fatalf("user comment: %v", err)
	}

	// Valid: guest name.
	if _, err := queries.CreateComment(ctx, store.CreateCommentParams{
		ArticleID: article.ID,
		Author:    model.Guest("drive-by"),
		Content:   "by guest",
		CreatedAt: time.Now(),
		Visible:   true,
	}); err != nil {
		t.Fatalf("guest comment: %v", err)
	}

	// Invalid: no author at all, rejected before touching the database.
	if _, err := queries.CreateComment(ctx, store.CreateCommentParams{
		ArticleID: article.ID,
		Content:   "orphan",
		CreatedAt: time.Now(),
		Visible:   true,
	}); !errors.Is(err, model.ErrInvalidAuthor) {
		t.Fatalf("authorless comment: got %v, want ErrInvalidAuthor", err)
	}
}

func TestComments_RoundTrip(t *testing.T) {
	_, queries, admin := seededQueries(t)
	ctx := context.Background()
	article := createArticle(t, queries, admin.ID, "round-trip")

	created, err := queries.CreateComment(ctx, store.CreateCommentParams{
		ArticleID: article.ID,
		Author:    model.AuthoredBy(admin.ID),
		Content:   "hello",
		CreatedAt: time.Now(),
		Visible:   true,
	})
	if err != nil {
		t.Fatalf("CreateComment: %v", err)
	}

	got, err := queries.GetCommentByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetCommentByID: %v", err)
	}
	if got.Content != "hello" || !got.Visible || got.ArticleID != article.ID {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
	if !got.IsAuthoredBy(admin.ID) {
		t.Fatalf("author lost in round-trip: %+v", got.Author)
	}
}

func TestListCommentsByArticle_CreationOrder(t *testing.T) {
	_, queries, admin := seededQueries(t)
	ctx := context.Background()
	article := createArticle(t, queries, admin.ID, "ordering")

	base := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := queries.CreateComment(ctx, store.CreateCommentParams{
			ArticleID: article.ID,
			Author:    model.AuthoredBy(admin.ID),
			Content:   "c",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
			Visible:   true,
		}); err != nil {
			t.Fatalf("CreateComment %d: %v", i, err)
		}
	}

	comments, err := queries.ListCommentsByArticle(ctx, article.ID)
	if err != nil {
		t.Fatalf("ListCommentsByArticle: %v", err)
	}
	if len(comments) != 3 {
		t.Fatalf("got %d comments, want 3", len(comments))
	}
	for i := 1; i < len(comments); i++ {
		if comments[i].CreatedAt.Before(comments[i-1].CreatedAt) {
			t.Fatal("comments out of creation order")
		}
	}
}

func TestReparentComments(t *testing.T) {
	_, queries, admin := seededQueries(t)
	ctx := context.Background()
	article := createArticle(t, queries, admin.ID, "reparent")

	now := time.Now()
	parent, err := queries.CreateComment(ctx, store.CreateCommentParams{
		ArticleID: article.ID, Author: model.AuthoredBy(admin.ID),
		Content: "parent", CreatedAt: now, Visible: true,
	})
	if err != nil {
		t.Fatalf("parent: %v", err)
	}
	child, err := queries.CreateComment(ctx, store.CreateCommentParams{
		ParentID: &parent.ID, ArticleID: article.ID, Author: model.AuthoredBy(admin.ID),
		Content: "child", CreatedAt: now.Add(time.Second), Visible: true,
	})
	if err != nil {
		t.Fatalf("child: %v", err)
	}

	if err := queries.ReparentComments(ctx, parent.ID, nil); err != nil {
		t.Fatalf("ReparentComments: %v", err)
	}

	got, err := queries.GetCommentByID(ctx, child.ID)
	if err != nil {
		t.Fatalf("GetCommentByID: %v", err)
	}
	if got.ParentID != nil {
		t.Fatalf("child parent = %v, want nil", *got.ParentID)
	}
}

func TestSlugUnique(t *testing.T) {
	_, queries, admin := seededQueries(t)
	createArticle(t, queries, admin.ID, "taken")

	_, err := queries.CreateArticle(context.Background(), store.CreateArticleParams{
		Title: "Duplicate", AuthorID: admin.ID, Slug: "taken",
		Content: "x", CreatedAt: time.Now(), Visible: true,
	})
	if err == nil {
		t.Fatal("duplicate slug should violate the unique constraint")
	}
}

func TestInTx_RollsBackOnError(t *testing.T) {
	db, queries, admin := seededQueries(t)
	ctx := context.Background()
	article := createArticle(t, queries, admin.ID, "tx-rollback")

	boom := errors.New("boom")
	err := store.InTx(ctx, db, func(q *store.Queries) error {
		if _, err := q.CreateComment(ctx, store.CreateCommentParams{
			ArticleID: article.ID, Author: model.AuthoredBy(admin.ID),
			Content: "doomed", CreatedAt: time.Now(), Visible: true,
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTx error = %v, want boom", err)
	}

	n, err := queries.CountCommentsByArticle(ctx, article.ID)
	if err != nil {
		t.Fatalf("CountCommentsByArticle: %v", err)
	}
	if n != 0 {
		t.Fatalf("rolled-back comment persisted, count = %d", n)
	}
}

func TestUpdateUserPassword_ClearsRehash(t *testing.T) {
	_, queries, admin := seededQueries(t)
	ctx := context.Background()

	if err := queries.MarkUserRehash(ctx, admin.ID); err != nil {
		t.Fatalf("MarkUserRehash: %v", err)
	}
	u, err := queries.GetUserByID(ctx, admin.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if !u.Rehash {
		t.Fatal("rehash flag not set")
	}

	if err := queries.UpdateUserPassword(ctx, admin.ID, "$argon2id$new"); err != nil {
		t.Fatalf("UpdateUserPassword: %v", err)
	}
	u, err = queries.GetUserByID(ctx, admin.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if u.Rehash {
		t.Fatal("rehash flag should be cleared after password update")
	}
}
