// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package authz implements the authorization gate: a pure decision
// procedure over an explicit actor context, separated from the effects it
// guards so it can be tested without a storage layer.
package authz

import (
	"errors"

	"mogger-go/internal/model"
)

// ErrForbidden is the gate's only failure mode. It deliberately carries no
// detail about the target.
var ErrForbidden = errors.New("forbidden")

// Context carries the acting user and their resolved group through every
// call. The zero value is an anonymous actor.
type Context struct {
	User  *model.User
	Group *model.Group
}

// Authenticated reports whether the context carries a logged-in user.
func (c Context) Authenticated() bool {
	return c.User != nil
}

// Has reports whether the actor's group grants the permission. Anonymous
// actors have no group and therefore no permissions.
func (c Context) Has(p model.Permission) bool {
	return c.Group != nil && c.Group.Has(p)
}

// Action is a sensitive operation gated by an own/foreign permission pair.
type Action int

const (
	ActionEditArticle Action = iota
	ActionDeleteArticle
	ActionRestoreArticle
	ActionPurgeArticle
	ActionEditComment
	ActionDeleteComment
	ActionRestoreComment
	ActionPurgeComment
	ActionEditUser
	ActionDeleteUser
)

// pair is the own/foreign permission pair for an action. An empty own
// permission means the ownership path is unavailable: only the foreign
// permission grants the action (purge, cross-user operations).
type pair struct {
	own     model.Permission
	foreign model.Permission
}

var actionPerms = map[Action]pair{
	ActionEditArticle:    {model.PermEditArticle, model.PermEditForeignArticle},
	ActionDeleteArticle:  {model.PermDeleteArticle, model.PermDeleteForeignArticle},
	ActionRestoreArticle: {model.PermDeleteArticle, model.PermDeleteForeignArticle},
	ActionPurgeArticle:   {"", model.PermDeleteForeignArticle},
	ActionEditComment:    {model.PermEditComment, model.PermEditForeignComment},
	ActionDeleteComment:  {model.PermDeleteComment, model.PermDeleteForeignComment},
	ActionRestoreComment: {model.PermDeleteComment, model.PermDeleteForeignComment},
	ActionPurgeComment:   {"", model.PermDeleteForeignComment},
	ActionEditUser:       {"", model.PermEditForeignUser},
	ActionDeleteUser:     {"", model.PermDeleteForeignUser},
}

// Authorize decides whether the actor may perform action on a target owned
// by owner (nil for unowned targets such as anonymous comments). It
// succeeds when the actor holds the foreign permission, or holds the own
// permission and is the owner. Pure: no side effects, no I/O.
func Authorize(c Context, action Action, owner *int64) error {
	if !c.Authenticated() {
		return ErrForbidden
	}
	p, ok := actionPerms[action]
	if !ok {
		return ErrForbidden
	}
	if p.foreign != "" && c.Has(p.foreign) {
		return nil
	}
	if p.own != "" && c.Has(p.own) && owner != nil && *owner == c.User.ID {
		return nil
	}
	return ErrForbidden
}

// Require succeeds iff the actor is authenticated and holds the given
// permission. Used for creation actions, which have no target owner.
func Require(c Context, p model.Permission) error {
	if !c.Authenticated() || !c.Has(p) {
		return ErrForbidden
	}
	return nil
}
