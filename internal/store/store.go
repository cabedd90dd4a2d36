// Package store archives figure snapshots as versions in SQLite, with a
// parent pointer per version and a single active pointer.
package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/livefig/internal/logging"
	"github.com/danielpatrickdp/livefig/snapshot"
)

// ErrNotFound indicates an unknown version or an empty archive.
var ErrNotFound = errors.New("snapshot version not found")

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS snapshot_versions (
	version_id    TEXT PRIMARY KEY,
	parent_id     TEXT,
	label         TEXT,
	snapshot_json TEXT NOT NULL,
	content_hash  TEXT NOT NULL,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (parent_id) REFERENCES snapshot_versions(version_id)
);

CREATE TABLE IF NOT EXISTS provenance_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	version_id    TEXT NOT NULL,
	source_hash   TEXT,
	trigger_type  TEXT NOT NULL,
	detail_json   TEXT,
	decision      TEXT NOT NULL,
	reason        TEXT,
	created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS active_snapshot (
	id            INTEGER PRIMARY KEY CHECK (id = 1),
	version_id    TEXT NOT NULL,
	FOREIGN KEY (version_id) REFERENCES snapshot_versions(version_id)
);
`
// #endregion schema

// #region store-struct
// Store manages archived snapshots in SQLite.
type Store struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}
// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}
// #endregion db-accessor

// #region save
// Save archives fig as a new version and makes it active. An empty parentID
// starts a new lineage.
func (s *Store) Save(fig snapshot.Figure, parentID, label string) (Record, error) {
	data, err := snapshot.Marshal(fig)
	if err != nil {
		return Record{}, err
	}
	sum := sha256.Sum256(data)
	rec := Record{
		VersionID:   uuid.New().String(),
		ParentID:    parentID,
		Label:       label,
		Snapshot:    fig,
		ContentHash: hex.EncodeToString(sum[:]),
		CreatedAt:   time.Now().UTC(),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Record{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO snapshot_versions (version_id, parent_id, label, snapshot_json, content_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.VersionID, nullIfEmpty(parentID), nullIfEmpty(label), string(data), rec.ContentHash,
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert version: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO active_snapshot (id, version_id) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET version_id = excluded.version_id`,
		rec.VersionID,
	)
	if err != nil {
		return Record{}, fmt.Errorf("set active: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Record{}, fmt.Errorf("commit: %w", err)
	}
	logging.Logger().Info("snapshot archived", "version", rec.VersionID, "parent", parentID, "label", label)
	return rec, nil
}
// #endregion save

// #region get-current
// GetCurrent reads the active version.
func (s *Store) GetCurrent() (Record, error) {
	var versionID string
	err := s.db.QueryRow(`SELECT version_id FROM active_snapshot WHERE id = 1`).Scan(&versionID)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("get active: %w", ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get active: %w", err)
	}
	return s.GetVersion(versionID)
}
// #endregion get-current

// #region get-version
// GetVersion retrieves a specific version by ID.
func (s *Store) GetVersion(id string) (Record, error) {
	row := s.db.QueryRow(
		`SELECT version_id, parent_id, label, snapshot_json, content_hash, created_at
		 FROM snapshot_versions WHERE version_id = ?`, id,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("get version %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get version %s: %w", id, err)
	}
	return rec, nil
}
// #endregion get-version

// #region checkout
// Checkout sets the active pointer to an existing version.
func (s *Store) Checkout(versionID string) error {
	var exists int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM snapshot_versions WHERE version_id = ?`, versionID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check version: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("checkout %s: %w", versionID, ErrNotFound)
	}

	_, err = s.db.Exec(
		`INSERT INTO active_snapshot (id, version_id) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET version_id = excluded.version_id`,
		versionID,
	)
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	logging.Logger().Info("snapshot checked out", "version", versionID)
	return nil
}
// #endregion checkout

// #region list-versions
// ListVersions returns the most recent versions, newest first.
func (s *Store) ListVersions(limit int) ([]Record, error) {
	rows, err := s.db.Query(
		`SELECT version_id, parent_id, label, snapshot_json, content_hash, created_at
		 FROM snapshot_versions ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListWithProvenance returns the most recent versions joined with their
// latest provenance row, newest first.
func (s *Store) ListWithProvenance(limit int) ([]VersionWithProvenance, error) {
	rows, err := s.db.Query(
		`SELECT v.version_id, v.parent_id, v.label, v.snapshot_json, v.content_hash, v.created_at,
		        p.trigger_type, p.decision, p.reason, p.detail_json
		 FROM snapshot_versions v
		 LEFT JOIN provenance_log p
		   ON p.id = (SELECT MAX(id) FROM provenance_log WHERE version_id = v.version_id)
		 ORDER BY v.created_at DESC, v.rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list with provenance: %w", err)
	}
	defer rows.Close()

	var out []VersionWithProvenance
	for rows.Next() {
		var vp VersionWithProvenance
		var trigger, decision, reason, detail sql.NullString
		var parentID, label sql.NullString
		var data, createdStr string
		if err := rows.Scan(&vp.VersionID, &parentID, &label, &data, &vp.ContentHash, &createdStr,
			&trigger, &decision, &reason, &detail); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if err := fillRecord(&vp.Record, parentID, label, data, createdStr); err != nil {
			return nil, err
		}
		vp.Trigger, vp.Decision, vp.Reason, vp.DetailJSON = trigger.String, decision.String, reason.String, detail.String
		out = append(out, vp)
	}
	return out, rows.Err()
}
// #endregion list-versions

// #region helpers
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var rec Record
	var parentID, label sql.NullString
	var data, createdStr string
	if err := row.Scan(&rec.VersionID, &parentID, &label, &data, &rec.ContentHash, &createdStr); err != nil {
		return Record{}, err
	}
	if err := fillRecord(&rec, parentID, label, data, createdStr); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func fillRecord(rec *Record, parentID, label sql.NullString, data, createdStr string) error {
	rec.ParentID = parentID.String
	rec.Label = label.String
	fig, err := snapshot.Unmarshal([]byte(data))
	if err != nil {
		return fmt.Errorf("version %s: %w", rec.VersionID, err)
	}
	rec.Snapshot = fig
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
// #endregion helpers
