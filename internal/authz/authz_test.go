package authz

import (
	"errors"
	"testing"

	"mogger-go/internal/model"
)

func actor(id int64, perms ...model.Permission) Context {
	return Context{
		User:  &model.User{ID: id, GroupID: "test"},
		Group: &model.Group{ID: "test", Permissions: perms},
	}
}

func ptr(v int64) *int64 { return &v }

func TestAuthorize_Anonymous(t *testing.T) {
	// No group configuration can grant an anonymous actor anything.
	for action := range actionPerms {
		if err := Authorize(Context{}, action, ptr(1)); !errors.Is(err, ErrForbidden) {
			t.Errorf("action %d: anonymous actor got %v, want ErrForbidden", action, err)
		}
	}
}

func TestAuthorize_OwnPermissionRequiresOwnership(t *testing.T) {
	c := actor(1, model.PermEditComment)

	if err := Authorize(c, ActionEditComment, ptr(1)); err != nil {
		t.Errorf("own comment: %v", err)
	}
	if err := Authorize(c, ActionEditComment, ptr(2)); !errors.Is(err, ErrForbidden) {
		t.Errorf("foreign comment with own permission only: got %v, want ErrForbidden", err)
	}
	if err := Authorize(c, ActionEditComment, nil); !errors.Is(err, ErrForbidden) {
		t.Errorf("unowned comment with own permission only: got %v, want ErrForbidden", err)
	}
}

func TestAuthorize_ForeignPermissionIgnoresOwnership(t *testing.T) {
	c := actor(1, model.PermEditForeignComment)

	for _, owner := range []*int64{ptr(1), ptr(2), nil} {
		if err := Authorize(c, ActionEditComment, owner); err != nil {
			t.Errorf("owner %v: %v", owner, err)
		}
	}
}

func TestAuthorize_AllGrantsEverything(t *testing.T) {
	c := actor(1, model.PermAll)

	for action := range actionPerms {
		if err := Authorize(c, action, ptr(2)); err != nil {
			t.Errorf("action %d with All: %v", action, err)
		}
	}
}

func TestAuthorize_RestoreMatchesDelete(t *testing.T) {
	c := actor(1, model.PermDeleteComment)

	if err := Authorize(c, ActionDeleteComment, ptr(1)); err != nil {
		t.Errorf("delete own: %v", err)
	}
	if err := Authorize(c, ActionRestoreComment, ptr(1)); err != nil {
		t.Errorf("restore own: %v", err)
	}
	if err := Authorize(c, ActionRestoreComment, ptr(2)); !errors.Is(err, ErrForbidden) {
		t.Errorf("restore foreign: got %v, want ErrForbidden", err)
	}
}

func TestAuthorize_PurgeNeedsForeignDelete(t *testing.T) {
	// Plain delete permission is not enough to purge, even one's own rows.
	own := actor(1, model.PermDeleteComment, model.PermDeleteArticle)
	if err := Authorize(own, ActionPurgeComment, ptr(1)); !errors.Is(err, ErrForbidden) {
		t.Errorf("purge own comment with plain delete: got %v, want ErrForbidden", err)
	}
	if err := Authorize(own, ActionPurgeArticle, ptr(1)); !errors.Is(err, ErrForbidden) {
		t.Errorf("purge own article with plain delete: got %v, want ErrForbidden", err)
	}

	mod := actor(1, model.PermDeleteForeignComment)
	if err := Authorize(mod, ActionPurgeComment, ptr(2)); err != nil {
		t.Errorf("purge with foreign delete: %v", err)
	}
	if err := Authorize(mod, ActionPurgeComment, nil); err != nil {
		t.Errorf("purge anonymous comment with foreign delete: %v", err)
	}
}

func TestAuthorize_EditDeletePairsAreIndependent(t *testing.T) {
	c := actor(1, model.PermEditComment)

	if err := Authorize(c, ActionDeleteComment, ptr(1)); !errors.Is(err, ErrForbidden) {
		t.Errorf("edit permission must not grant delete: got %v", err)
	}
}

func TestRequire(t *testing.T) {
	if err := Require(Context{}, model.PermCreateComment); !errors.Is(err, ErrForbidden) {
		t.Errorf("anonymous Require: got %v, want ErrForbidden", err)
	}
	if err := Require(actor(1), model.PermCreateComment); !errors.Is(err, ErrForbidden) {
		t.Errorf("missing permission: got %v, want ErrForbidden", err)
	}
	if err := Require(actor(1, model.PermCreateComment), model.PermCreateComment); err != nil {
		t.Errorf("held permission: %v", err)
	}
	if err := Require(actor(1, model.PermAll), model.PermCreateUser); err != nil {
		t.Errorf("All: %v", err)
	}
}
