// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"net/http"
	"testing"

	"github.com/olegiv/oshop-go/internal/testutil"
)

// sessionsSchema mirrors the sessions table from the initial migration.
const sessionsSchema = `
CREATE TABLE sessions (
    token TEXT PRIMARY KEY,
    data BLOB NOT NULL,
    expiry REAL NOT NULL
);
CREATE INDEX idx_sessions_expiry ON sessions(expiry);
`

func TestNew_CookieSettings(t *testing.T) {
	db := testutil.TestMemoryDB(t)
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(sessionsSchema); err != nil {
		t.Fatalf("creating sessions table: %v", err)
	}

	t.Run("development", func(t *testing.T) {
		sm := New(db, true)
		if sm.Cookie.Secure {
			t.Error("dev cookies should not be Secure")
		}
		if !sm.Cookie.HttpOnly {
			t.Error("cookies should be HttpOnly")
		}
		if sm.Cookie.SameSite != http.SameSiteLaxMode {
			t.Errorf("SameSite = %v, want %v", sm.Cookie.SameSite, http.SameSiteLaxMode)
		}
	})

	t.Run("production", func(t *testing.T) {
		sm := New(db, false)
		if !sm.Cookie.Secure {
			t.Error("production cookies should be Secure")
		}
	})
}

func TestNew_PersistsThroughStore(t *testing.T) {
	db := testutil.TestMemoryDB(t)
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(sessionsSchema); err != nil {
		t.Fatalf("creating sessions table: %v", err)
	}

	sm := New(db, true)

	ctx, err := sm.Load(context.Background(), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	sm.Put(ctx, "user_id", int64(42))

	token, _, err := sm.Commit(ctx)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	// The committed session must come back out of the SQLite store.
	ctx, err = sm.Load(context.Background(), token)
	if err != nil {
		t.Fatalf("Load with token: %v", err)
	}
	if got := sm.GetInt64(ctx, "user_id"); got != 42 {
		t.Errorf("user_id = %d, want 42", got)
	}

	var rows int
	if err := db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&rows); err != nil {
		t.Fatalf("counting sessions: %v", err)
	}
	if rows != 1 {
		t.Errorf("sessions rows = %d, want 1", rows)
	}
}
