package store

import (
	"time"

	"github.com/danielpatrickdp/livefig/snapshot"
)

// #region record
// Record is one archived snapshot version.
type Record struct {
	VersionID   string
	ParentID    string
	Label       string
	Snapshot    snapshot.Figure
	ContentHash string // sha256 of the snapshot JSON
	CreatedAt   time.Time
}
// #endregion record

// #region version-with-provenance
// VersionWithProvenance pairs a version with its latest provenance row.
type VersionWithProvenance struct {
	Record
	Trigger    string
	Decision   string
	Reason     string
	DetailJSON string
}
// #endregion version-with-provenance
