// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"

	"mogger-go/internal/auth"
	"mogger-go/internal/config"
	"mogger-go/internal/middleware"
	"mogger-go/internal/model"
	"mogger-go/internal/store"
	"mogger-go/internal/testutil"
)

// testPassword is the password assigned to every user created in tests.
const testPassword = "correct horse battery staple"

// testServer wraps a fully wired API server with a cookie-carrying client.
type testServer struct {
	t       *testing.T
	db      *sql.DB
	queries *store.Queries
	server  *httptest.Server
	client  *http.Client
}

func defaultTestConfig() *config.Config {
	return &config.Config{
		SessionSecret:     "0123456789abcdef0123456789abcdef",
		Env:               "development",
		AllowAnonComments: true,
		AllowSignups:      false,
	}
}

// newTestServer builds the handler stack the way main does, minus CSRF and
// rate limiting, on a temp database with seeded groups and admin.
func newTestServer(t *testing.T, cfg *config.Config) *testServer {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	if err := store.Seed(context.Background(), db); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	sm := scs.New()
	sm.Lifetime = 24 * time.Hour

	h := NewHandler(db, cfg, sm)
	stack := sm.LoadAndSave(middleware.LoadAuthContext(sm, db)(h.Routes(nil)))

	server := httptest.NewServer(stack)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}

	return &testServer{
		t:       t,
		db:      db,
		queries: store.New(db),
		server:  server,
		client:  &http.Client{Jar: jar},
	}
}

// do performs a request with an optional JSON body and returns the response.
func (ts *testServer) do(method, path string, body any) *http.Response {
	ts.t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			ts.t.Fatalf("marshaling body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, ts.server.URL+path, reader)
	if err != nil {
		ts.t.Fatalf("building request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := ts.client.Do(req)
	if err != nil {
		ts.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// decode reads the response body into dst and closes it.
func (ts *testServer) decode(resp *http.Response, dst any) {
	ts.t.Helper()
	defer func() { _ = resp.Body.Close() }()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		ts.t.Fatalf("decoding response: %v", err)
	}
}

// createUser inserts a user with the shared test password.
func (ts *testServer) createUser(email, groupID string) model.User {
	ts.t.Helper()

	hash, err := auth.HashPassword(testPassword)
	if err != nil {
		ts.t.Fatalf("HashPassword: %v", err)
	}

	now := time.Now()
	user, err := ts.queries.CreateUser(context.Background(), store.CreateUserParams{
		Email:        email,
		PasswordHash: hash,
		Name:         email,
		GroupID:      groupID,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		ts.t.Fatalf("CreateUser %s: %v", email, err)
	}
	return user
}

// login authenticates the client session as the given user.
func (ts *testServer) login(email, password string) {
	ts.t.Helper()

	resp := ts.do(http.MethodPost, "/api/login", map[string]string{
		"email":    email,
		"password": password,
	})
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		ts.t.Fatalf("login as %s: status %d", email, resp.StatusCode)
	}
}

// logout drops the client session.
func (ts *testServer) logout() {
	ts.t.Helper()

	resp := ts.do(http.MethodPost, "/api/logout", nil)
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		ts.t.Fatalf("logout: status %d", resp.StatusCode)
	}
}

// createArticle publishes an article as the currently logged-in user.
func (ts *testServer) createArticle(title, content string) map[string]any {
	ts.t.Helper()

	resp := ts.do(http.MethodPost, "/api/articles", map[string]string{
		"title":   title,
		"content": content,
	})
	if resp.StatusCode != http.StatusCreated {
		ts.t.Fatalf("create article %q: status %d", title, resp.StatusCode)
	}

	var out struct {
		Data map[string]any `json:"data"`
	}
	ts.decode(resp, &out)
	return out.Data
}
