// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"time"
)

// Built-in group IDs created by the seeder.
const (
	GroupAdmin     = "admin"
	GroupAuthor    = "author"
	GroupCommenter = "commenter"
)

// User represents a registered account. Every user belongs to exactly
// one group.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	Name         string    `json:"name"`
	GroupID      string    `json:"group_id"`
	Rehash       bool      `json:"-"` // Password hash uses outdated parameters
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
