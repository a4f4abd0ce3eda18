// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service provides business logic for articles and comments:
// validation, authorization, the soft-delete lifecycle and purge policy.
package service

import (
	"database/sql"
	"errors"
	"fmt"
)

// Sentinel errors mapped to HTTP status codes at the handler boundary.
var (
	// ErrNotFound covers both genuinely missing rows and rows the viewer
	// is not allowed to know exist (hidden articles, purged comments).
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned for uniqueness violations (slug, email).
	ErrConflict = errors.New("conflict")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// notFoundIfNoRows translates sql.ErrNoRows into ErrNotFound, leaving other
// errors untouched.
func notFoundIfNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
