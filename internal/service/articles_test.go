package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"mogger-go/internal/authz"
	"mogger-go/internal/model"
)

func TestArticleService_Create_RequiresPermission(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.articles.Create(context.Background(), env.commenter, CreateArticleInput{
		Title:   "Not Allowed",
		Content: "body",
	})
	if !errors.Is(err, authz.ErrForbidden) {
		t.Fatalf("commenter create = %v, want ErrForbidden", err)
	}

	_, err = env.articles.Create(context.Background(), env.anonymous, CreateArticleInput{
		Title:   "Not Allowed",
		Content: "body",
	})
	if !errors.Is(err, authz.ErrForbidden) {
		t.Fatalf("anonymous create = %v, want ErrForbidden", err)
	}
}

func TestArticleService_Create_DerivesSlug(t *testing.T) {
	env := newTestEnv(t)

	article := env.createArticle(t, env.author, "Hello, Wörld!")

	if article.Slug != "hello-world" {
		t.Errorf("Slug = %q, want %q", article.Slug, "hello-world")
	}
	if !article.Visible {
		t.Error("new article should be visible")
	}
}

func TestArticleService_Create_SlugConflict(t *testing.T) {
	env := newTestEnv(t)
	env.createArticle(t, env.author, "Same Title")

	_, err := env.articles.Create(context.Background(), env.author, CreateArticleInput{
		Title:   "Same Title",
		Content: "other body",
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate slug = %v, want ErrConflict", err)
	}
}

func TestArticleService_Create_RejectsBadSlug(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.articles.Create(context.Background(), env.author, CreateArticleInput{
		Title:   "Fine Title",
		Slug:    "Not A Slug!",
		Content: "body",
	})
	if !IsValidation(err) {
		t.Fatalf("bad slug = %v, want validation error", err)
	}
}

func TestArticleService_Get_ByIDAndSlug(t *testing.T) {
	env := newTestEnv(t)
	article := env.createArticle(t, env.author, "Findable")

	byID, err := env.articles.Get(context.Background(), env.anonymous, fmt.Sprintf("%d", article.ID))
	if err != nil {
		t.Fatalf("Get by id: %v", err)
	}
	bySlug, err := env.articles.Get(context.Background(), env.anonymous, article.Slug)
	if err != nil {
		t.Fatalf("Get by slug: %v", err)
	}
	if byID.ID != bySlug.ID || byID.ID != article.ID {
		t.Errorf("lookups disagree: %d vs %d", byID.ID, bySlug.ID)
	}
}

func TestArticleService_HiddenArticleGating(t *testing.T) {
	env := newTestEnv(t)
	article := env.createArticle(t, env.author, "Soon Hidden")
	ctx := context.Background()

	if err := env.articles.Remove(ctx, env.author, article.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	// Public viewers cannot tell a hidden article from a missing one.
	if _, err := env.articles.Get(ctx, env.anonymous, article.Slug); !errors.Is(err, ErrNotFound) {
		t.Errorf("anonymous get hidden = %v, want ErrNotFound", err)
	}
	if _, err := env.articles.Get(ctx, env.commenter, article.Slug); !errors.Is(err, ErrNotFound) {
		t.Errorf("commenter get hidden = %v, want ErrNotFound", err)
	}

	// The author and moderators still see it.
	if _, err := env.articles.Get(ctx, env.author, article.Slug); err != nil {
		t.Errorf("author get hidden = %v, want nil", err)
	}
	if _, err := env.articles.Get(ctx, env.admin, article.Slug); err != nil {
		t.Errorf("admin get hidden = %v, want nil", err)
	}
}

func TestArticleService_RemoveRestoreRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	article := env.createArticle(t, env.author, "Round Trip")
	ctx := context.Background()

	if err := env.articles.Remove(ctx, env.author, article.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := env.articles.Restore(ctx, env.author, article.ID); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	got, err := env.articles.Get(ctx, env.anonymous, article.Slug)
	if err != nil {
		t.Fatalf("Get after restore: %v", err)
	}
	if got.Content != article.Content {
		t.Error("restore should preserve content byte-for-byte")
	}
}

func TestArticleService_List_HidesInvisible(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	visible := env.createArticle(t, env.author, "Public One")
	hidden := env.createArticle(t, env.author, "Hidden One")
	if err := env.articles.Remove(ctx, env.author, hidden.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	public, err := env.articles.List(ctx, env.anonymous, 1, 20)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if public.Total != 1 || len(public.Articles) != 1 || public.Articles[0].ID != visible.ID {
		t.Errorf("public listing = %+v, want only article %d", public, visible.ID)
	}

	moderated, err := env.articles.List(ctx, env.admin, 1, 20)
	if err != nil {
		t.Fatalf("List as admin: %v", err)
	}
	if moderated.Total != 2 {
		t.Errorf("admin listing total = %d, want 2", moderated.Total)
	}
}

func TestArticleService_List_NewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		env.createArticle(t, env.author, fmt.Sprintf("Article %d", i))
	}

	res, err := env.articles.List(ctx, env.anonymous, 1, 20)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for i := 1; i < len(res.Articles); i++ {
		if res.Articles[i].CreatedAt.After(res.Articles[i-1].CreatedAt) {
			t.Fatal("listing is not newest first")
		}
	}
}

func TestArticleService_Edit_OwnVsForeign(t *testing.T) {
	env := newTestEnv(t)
	article := env.createArticle(t, env.author, "Editable")
	ctx := context.Background()

	in := CreateArticleInput{Title: "Edited", Slug: article.Slug, Content: "new body"}

	// A different non-moderator cannot edit it.
	other := env.contextFor(t, env.createUser(t, "other@example.com", model.GroupAuthor))
	if _, err := env.articles.Edit(ctx, other, article.ID, in); !errors.Is(err, authz.ErrForbidden) {
		t.Errorf("foreign edit without permission = %v, want ErrForbidden", err)
	}

	// The author can.
	got, err := env.articles.Edit(ctx, env.author, article.ID, in)
	if err != nil {
		t.Fatalf("own edit: %v", err)
	}
	if got.Title != "Edited" || got.Content != "new body" {
		t.Errorf("edit result = %+v", got)
	}

	// So can the admin via the foreign permission.
	if _, err := env.articles.Edit(ctx, env.admin, article.ID, in); err != nil {
		t.Errorf("admin edit = %v, want nil", err)
	}
}

func TestArticleService_Edit_UnslugifiableTitle(t *testing.T) {
	env := newTestEnv(t)
	article := env.createArticle(t, env.author, "Sluggable")
	ctx := context.Background()

	// No explicit slug and a title with no sluggable characters must not
	// silently store an empty slug.
	_, err := env.articles.Edit(ctx, env.author, article.ID, CreateArticleInput{
		Title:   "!!!",
		Content: "new body",
	})
	if !IsValidation(err) {
		t.Fatalf("edit with unslugifiable title = %v, want validation error", err)
	}

	got, err := env.queries.GetArticleByID(ctx, article.ID)
	if err != nil {
		t.Fatalf("GetArticleByID: %v", err)
	}
	if got.Slug != article.Slug {
		t.Errorf("Slug = %q, original must be untouched", got.Slug)
	}
}

func TestArticleService_Purge_RequiresForeignDelete(t *testing.T) {
	env := newTestEnv(t)
	article := env.createArticle(t, env.author, "To Purge")
	ctx := context.Background()

	// The author holds the own delete permission but purge needs the
	// foreign one, even on their own article.
	if err := env.articles.Purge(ctx, env.author, article.ID); !errors.Is(err, authz.ErrForbidden) {
		t.Fatalf("author purge = %v, want ErrForbidden", err)
	}

	if err := env.articles.Purge(ctx, env.admin, article.ID); err != nil {
		t.Fatalf("admin purge: %v", err)
	}

	if _, err := env.articles.Get(ctx, env.admin, article.Slug); !errors.Is(err, ErrNotFound) {
		t.Errorf("get after purge = %v, want ErrNotFound", err)
	}
}

func TestArticleService_Purge_RemovesComments(t *testing.T) {
	env := newTestEnv(t)
	article := env.createArticle(t, env.author, "Commented")
	ctx := context.Background()

	comment := env.submitComment(t, env.commenter, article.ID, nil, "will vanish")

	if err := env.articles.Purge(ctx, env.admin, article.ID); err != nil {
		t.Fatalf("Purge: %v", err)
	}

	if _, err := env.queries.GetCommentByID(ctx, comment.ID); err == nil {
		t.Error("comments should be removed with their article")
	}
}
