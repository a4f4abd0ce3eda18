// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// Default pagination bounds for listings.
const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// CalculateTotalPages returns the page count for totalItems at perPage
// items each, never less than 1.
func CalculateTotalPages(totalItems, perPage int) int {
	if perPage <= 0 || totalItems <= 0 {
		return 1
	}
	pages := (totalItems + perPage - 1) / perPage
	if pages < 1 {
		return 1
	}
	return pages
}

// ParsePageParam reads the "page" query parameter, defaulting to 1.
func ParsePageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// ParsePerPageParam reads the "per_page" query parameter. Values outside
// [1, maxVal] fall back to defaultVal.
func ParsePerPageParam(r *http.Request, defaultVal, maxVal int) int {
	perPage, err := strconv.Atoi(r.URL.Query().Get("per_page"))
	if err != nil || perPage < 1 || perPage > maxVal {
		return defaultVal
	}
	return perPage
}

// ParseIntParam reads an integer query parameter, clamping to defaultVal
// when missing, invalid, or outside [minVal, maxVal]. A zero maxVal
// disables the upper bound.
func ParseIntParam(r *http.Request, param string, defaultVal, minVal, maxVal int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(param))
	if err != nil {
		return defaultVal
	}
	if v < minVal {
		return defaultVal
	}
	if maxVal > 0 && v > maxVal {
		return defaultVal
	}
	return v
}

// ParseIDParam reads the chi "id" URL parameter as an int64.
func ParseIDParam(r *http.Request) (int64, error) {
	return ParseURLParamInt64(r, "id")
}

// ParseURLParamInt64 reads a chi URL parameter as an int64.
func ParseURLParamInt64(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return 0, errors.New("missing " + name + " parameter")
	}
	return strconv.ParseInt(raw, 10, 64)
}
