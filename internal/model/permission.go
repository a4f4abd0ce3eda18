// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the application
// including User, Group, Article, Comment and the comment forest.
package model

import (
	"encoding/json"
	"fmt"
)

// Permission is an atomic capability drawn from a fixed vocabulary.
type Permission string

// The full permission vocabulary. PermAll implies every other permission.
const (
	PermAll Permission = "All"

	PermCreateArticle        Permission = "CreateArticle"
	PermEditArticle          Permission = "EditArticle"
	PermDeleteArticle        Permission = "DeleteArticle"
	PermEditForeignArticle   Permission = "EditForeignArticle"
	PermDeleteForeignArticle Permission = "DeleteForeignArticle"

	PermCreateComment        Permission = "CreateComment"
	PermEditComment          Permission = "EditComment"
	PermDeleteComment        Permission = "DeleteComment"
	PermEditForeignComment   Permission = "EditForeignComment"
	PermDeleteForeignComment Permission = "DeleteForeignComment"

	PermCreateUser        Permission = "CreateUser"
	PermEditForeignUser   Permission = "EditForeignUser"
	PermDeleteForeignUser Permission = "DeleteForeignUser"
)

// AllPermissions lists every valid permission value.
var AllPermissions = []Permission{
	PermAll,
	PermCreateArticle,
	PermEditArticle,
	PermDeleteArticle,
	PermEditForeignArticle,
	PermDeleteForeignArticle,
	PermCreateComment,
	PermEditComment,
	PermDeleteComment,
	PermEditForeignComment,
	PermDeleteForeignComment,
	PermCreateUser,
	PermEditForeignUser,
	PermDeleteForeignUser,
}

// IsValid reports whether p is part of the permission vocabulary.
func (p Permission) IsValid() bool {
	for _, known := range AllPermissions {
		if p == known {
			return true
		}
	}
	return false
}

// Group is a named bundle of permissions assigned to users.
type Group struct {
	ID          string       `json:"id"`
	Permissions []Permission `json:"permissions"`
}

// Has reports whether the group grants the given permission, either
// directly or through PermAll.
func (g *Group) Has(p Permission) bool {
	for _, held := range g.Permissions {
		if held == p || held == PermAll {
			return true
		}
	}
	return false
}

// EncodePermissions serializes a permission set for storage.
func EncodePermissions(perms []Permission) (string, error) {
	data, err := json.Marshal(perms)
	if err != nil {
		return "", fmt.Errorf("encoding permissions: %w", err)
	}
	return string(data), nil
}

// DecodePermissions parses a stored permission set, rejecting values
// outside the vocabulary.
func DecodePermissions(raw string) ([]Permission, error) {
	var perms []Permission
	if err := json.Unmarshal([]byte(raw), &perms); err != nil {
		return nil, fmt.Errorf("decoding permissions: %w", err)
	}
	for _, p := range perms {
		if !p.IsValid() {
			return nil, fmt.Errorf("unknown permission %q", p)
		}
	}
	return perms, nil
}
