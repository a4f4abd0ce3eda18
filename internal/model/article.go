// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"time"
)

// DescriptionLen is the maximum byte length of an article's short description.
const DescriptionLen = 160

// Article represents a blog article with markdown content. An invisible
// article is a valid persisted row that must not appear in public listings.
type Article struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	AuthorID  int64     `json:"author_id"`
	Slug      string    `json:"slug"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Visible   bool      `json:"visible"`
}

// Description returns a short slice of the article's raw content for
// listings and meta tags, cut at a rune boundary.
func (a *Article) Description() string {
	if len(a.Content) <= DescriptionLen {
		return a.Content
	}
	end := DescriptionLen
	for end > 0 && !isRuneStart(a.Content[end]) {
		end--
	}
	return a.Content[:end]
}

// isRuneStart reports whether b is the first byte of a UTF-8 rune.
func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
