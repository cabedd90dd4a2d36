package logging

import "time"

// #region provenance-entry
// ProvenanceEntry is a single row in the provenance_log table.
type ProvenanceEntry struct {
	VersionID  string
	SourceHash string
	Trigger    string // "generate" | "checkout" | "import" | "rpc"
	DetailJSON string
	Decision   string // "commit" | "reject" | "no_op"
	Reason     string
	CreatedAt  time.Time
}
// #endregion provenance-entry

// #region generation-record
// GenerationRecord captures what a code generation run saw and produced.
// Serialized as JSON into provenance_log.detail_json.
type GenerationRecord struct {
	Package    string `json:"package"`
	FuncName   string `json:"func_name"`
	Params     int    `json:"params"`
	Plots      int    `json:"plots"`
	Infos      int    `json:"infos"`
	Statements int    `json:"statements"`

	// Set when generation failed, e.g. an unsupported expression.
	Error string `json:"error,omitempty"`
}
// #endregion generation-record
