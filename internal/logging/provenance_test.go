package logging

import (
	"bytes"
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// #region helpers
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	_, err = db.Exec(`CREATE TABLE provenance_log (
		version_id   TEXT NOT NULL,
		source_hash  TEXT,
		trigger_type TEXT NOT NULL,
		detail_json  TEXT,
		decision     TEXT NOT NULL,
		reason       TEXT,
		created_at   TEXT NOT NULL
	)`)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

// #endregion helpers

// #region log-event-tests
func TestLogEvent_Success(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	entry := ProvenanceEntry{
		VersionID:  "v1",
		SourceHash: "abc123",
		Trigger:    "generate",
		DetailJSON: `{"plots":2}`,
		Decision:   "commit",
		Reason:     "cli",
		CreatedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	if err := LogEvent(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var count int
	db.QueryRow("SELECT COUNT(*) FROM provenance_log").Scan(&count)
	if count != 1 {
		t.Errorf("expected 1 row, got %d", count)
	}

	var versionID, decision, trigger string
	db.QueryRow("SELECT version_id, decision, trigger_type FROM provenance_log").Scan(&versionID, &decision, &trigger)
	if versionID != "v1" {
		t.Errorf("expected version_id 'v1', got %q", versionID)
	}
	if decision != "commit" || trigger != "generate" {
		t.Errorf("unexpected decision/trigger %q/%q", decision, trigger)
	}
}

func TestLogEvent_ZeroCreatedAt(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	before := time.Now().UTC()
	if err := LogEvent(db, ProvenanceEntry{VersionID: "v2", Trigger: "checkout", Decision: "no_op"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var createdAtStr string
	db.QueryRow("SELECT created_at FROM provenance_log").Scan(&createdAtStr)
	createdAt, err := time.Parse(time.RFC3339Nano, createdAtStr)
	if err != nil {
		t.Fatalf("parse created_at: %v", err)
	}
	if createdAt.Before(before) {
		t.Error("expected auto-filled created_at to be >= test start time")
	}
}

func TestLogEvent_EmptyOptionalFields(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	entry := ProvenanceEntry{VersionID: "v3", Trigger: "generate", Decision: "reject"}
	if err := LogEvent(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var sourceHash, detail, reason sql.NullString
	db.QueryRow("SELECT source_hash, detail_json, reason FROM provenance_log").Scan(&sourceHash, &detail, &reason)
	if sourceHash.Valid || detail.Valid || reason.Valid {
		t.Errorf("expected NULL optional columns, got %v %v %v", sourceHash, detail, reason)
	}
}

func TestLogEvent_Error(t *testing.T) {
	db := setupDB(t)
	db.Close()

	if err := LogEvent(db, ProvenanceEntry{VersionID: "v4", Trigger: "generate", Decision: "commit"}); err == nil {
		t.Fatal("expected error on closed db")
	}
}

// #endregion log-event-tests

// #region logger-tests
func TestLoggerDefaultsToSilent(t *testing.T) {
	SetLogger(nil)
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Fatal("default logger should be disabled")
	}
}

func TestSetup(t *testing.T) {
	defer SetLogger(nil)

	var buf bytes.Buffer
	if err := Setup(&buf, "info"); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	Logger().Debug("hidden")
	Logger().Info("shown", "k", 1)
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected output %q", out)
	}

	if err := Setup(&buf, "loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
	if err := Setup(&buf, "off"); err != nil {
		t.Fatalf("Setup off: %v", err)
	}
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Fatal("off should disable logging")
	}
}

func TestNullIfEmpty(t *testing.T) {
	if nullIfEmpty("") != nil {
		t.Error("expected nil for empty string")
	}
	if nullIfEmpty("hello") != "hello" {
		t.Error("expected passthrough for non-empty string")
	}
}

// #endregion logger-tests
