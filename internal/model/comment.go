// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"errors"
	"time"
)

// DeletedPlaceholder replaces the body of a soft-deleted comment when the
// viewer has no right to see the original content.
const DeletedPlaceholder = "[deleted]"

// ErrInvalidAuthor is returned when a comment has neither or both of a
// user reference and a guest name.
var ErrInvalidAuthor = errors.New("comment author must be exactly one of user or guest name")

// CommentAuthor identifies who wrote a comment: either a registered user
// or a free-form guest name, never both and never neither. The zero value
// is invalid.
type CommentAuthor struct {
	userID int64
	name   string
	kind   authorKind
}

type authorKind uint8

const (
	authorNone authorKind = iota
	authorUser
	authorGuest
)

// AuthoredBy returns an author referencing a registered user.
func AuthoredBy(userID int64) CommentAuthor {
	return CommentAuthor{kind: authorUser, userID: userID}
}

// Guest returns an author carrying a free-form display name.
func Guest(name string) CommentAuthor {
	return CommentAuthor{kind: authorGuest, name: name}
}

// UserID returns the authoring user's id, if the comment was written by a
// registered user.
func (a CommentAuthor) UserID() (int64, bool) {
	return a.userID, a.kind == authorUser
}

// GuestName returns the guest display name, if the comment is anonymous.
func (a CommentAuthor) GuestName() (string, bool) {
	return a.name, a.kind == authorGuest
}

// Validate checks the exclusive-or invariant in process; the storage layer
// enforces the same rule with a CHECK constraint.
func (a CommentAuthor) Validate() error {
	switch a.kind {
	case authorUser:
		if a.userID <= 0 {
			return ErrInvalidAuthor
		}
	case authorGuest:
		if a.name == "" {
			return ErrInvalidAuthor
		}
	default:
		return ErrInvalidAuthor
	}
	return nil
}

// Comment is a single comment record. ParentID is nil for top-level
// comments; comments of one article form a forest.
type Comment struct {
	ID        int64         `json:"id"`
	ParentID  *int64        `json:"parent_id,omitempty"`
	ArticleID int64         `json:"article_id"`
	Author    CommentAuthor `json:"-"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"created_at"`
	Visible   bool          `json:"visible"`
}

// IsAuthoredBy reports whether the comment was written by the given user.
func (c *Comment) IsAuthoredBy(userID int64) bool {
	id, ok := c.Author.UserID()
	return ok && id == userID
}

// OwnerID returns the owning user id for authorization, or nil for
// anonymous comments, which have no owner.
func (c *Comment) OwnerID() *int64 {
	if id, ok := c.Author.UserID(); ok {
		return &id
	}
	return nil
}

// CommentNode is one node of a comment forest.
type CommentNode struct {
	Comment  Comment        `json:"comment"`
	Children []*CommentNode `json:"children"`
}

// Forest is the comment tree of one article: root comments in
// chronological order, each with chronologically ordered children.
type Forest struct {
	Roots []*CommentNode

	index map[int64]*CommentNode
}

// BuildForest links a flat, creation-ordered comment list into a forest.
// It indexes all nodes first, then attaches each comment to its parent in
// input order, so sibling order stays chronological. A comment whose
// parent id does not resolve is attached as a root rather than dropped:
// a broken reference should degrade one thread's nesting, not lose the
// replies below it. Runs in O(n).
func BuildForest(list []Comment) *Forest {
	f := &Forest{index: make(map[int64]*CommentNode, len(list))}

	for _, c := range list {
		f.index[c.ID] = &CommentNode{Comment: c}
	}
	for _, c := range list {
		node := f.index[c.ID]
		if c.ParentID != nil {
			if parent, ok := f.index[*c.ParentID]; ok && *c.ParentID != c.ID {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		f.Roots = append(f.Roots, node)
	}
	return f
}

// Node returns the node for the given comment id, or nil.
func (f *Forest) Node(id int64) *CommentNode {
	return f.index[id]
}

// Ancestor walks up to n parents from the given node, stopping early when
// a parent is missing. Used to show a comment inside its thread context.
func (f *Forest) Ancestor(node *CommentNode, n int) *CommentNode {
	for i := 0; i < n && node != nil; i++ {
		parentID := node.Comment.ParentID
		if parentID == nil {
			break
		}
		parent, ok := f.index[*parentID]
		if !ok {
			break
		}
		node = parent
	}
	return node
}

// Redact replaces the content and author of every invisible comment in the
// forest unless canReveal grants the viewer access to it. Structure is
// preserved in full: replies to a deleted comment still render.
func (f *Forest) Redact(canReveal func(*Comment) bool) {
	for _, root := range f.Roots {
		redactNode(root, canReveal)
	}
}

func redactNode(node *CommentNode, canReveal func(*Comment) bool) {
	if !node.Comment.Visible && !canReveal(&node.Comment) {
		node.Comment.Content = DeletedPlaceholder
		node.Comment.Author = Guest(DeletedPlaceholder)
	}
	for _, child := range node.Children {
		redactNode(child, canReveal)
	}
}
