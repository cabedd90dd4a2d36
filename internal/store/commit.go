package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/danielpatrickdp/livefig/internal/codegen"
	"github.com/danielpatrickdp/livefig/internal/logging"
	"github.com/danielpatrickdp/livefig/snapshot"
)

// Decisions recorded in provenance_log.
const (
	DecisionCommit = "commit"
	DecisionReject = "reject"
	DecisionNoOp   = "no_op"
)

// #region commit
// Commit archives fig together with the outcome of the generation run that
// produced src. The active version becomes the parent. A failed run is logged
// as a rejection and genErr is returned; a snapshot identical to the active
// one is logged as a no-op and the active record is returned unchanged.
func (s *Store) Commit(fig snapshot.Figure, label, trigger string, cfg codegen.Config, src codegen.Source, genErr error) (Record, error) {
	parent, err := s.GetCurrent()
	if err != nil && !errors.Is(err, ErrNotFound) {
		return Record{}, err
	}

	detail := logging.GenerationRecord{
		Package:    cfg.Package,
		FuncName:   cfg.FuncName,
		Params:     len(fig.Params),
		Plots:      len(fig.Plots),
		Infos:      len(fig.Infos),
		Statements: len(src.Statements),
	}
	entry := logging.ProvenanceEntry{VersionID: parent.VersionID, Trigger: trigger}

	if genErr != nil {
		detail.Error = genErr.Error()
		entry.Decision, entry.Reason, entry.DetailJSON = DecisionReject, genErr.Error(), marshalDetail(detail)
		if err := logging.LogEvent(s.db, entry); err != nil {
			return Record{}, err
		}
		return Record{}, fmt.Errorf("commit: %w", genErr)
	}

	sum := sha256.Sum256([]byte(src.Text))
	entry.SourceHash = hex.EncodeToString(sum[:])
	entry.DetailJSON = marshalDetail(detail)

	data, err := snapshot.Marshal(fig)
	if err != nil {
		return Record{}, err
	}
	contentSum := sha256.Sum256(data)
	if parent.VersionID != "" && parent.ContentHash == hex.EncodeToString(contentSum[:]) {
		entry.Decision, entry.Reason = DecisionNoOp, "snapshot unchanged"
		if err := logging.LogEvent(s.db, entry); err != nil {
			return Record{}, err
		}
		return parent, nil
	}

	rec, err := s.Save(fig, parent.VersionID, label)
	if err != nil {
		return Record{}, err
	}
	entry.VersionID, entry.Decision = rec.VersionID, DecisionCommit
	if err := logging.LogEvent(s.db, entry); err != nil {
		return Record{}, err
	}
	return rec, nil
}
// #endregion commit

func marshalDetail(r logging.GenerationRecord) string {
	b, err := json.Marshal(r)
	if err != nil {
		return ""
	}
	return string(b)
}
