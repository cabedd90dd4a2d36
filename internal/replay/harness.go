// Package replay executes generated figure source and checks that it
// rebuilds the snapshot it was generated from.
package replay

import (
	"fmt"

	"github.com/danielpatrickdp/livefig/figure"
	"github.com/danielpatrickdp/livefig/internal/codegen"
	"github.com/danielpatrickdp/livefig/snapshot"
)

// #region types
// MismatchError reports the first field where the rebuilt figure differs.
type MismatchError struct {
	Diff string
}

func (e *MismatchError) Error() string { return "round trip mismatch: " + e.Diff }

// Result captures one verification run.
type Result struct {
	Name   string
	Action string // "match" | "mismatch" | "error"
	Reason string
	Source codegen.Source
}

// Summary aggregates a batch of verification runs.
type Summary struct {
	Total      int
	Matches    int
	Mismatches int
	Errors     int
}

// #endregion types

// #region verify
// Verify generates source for s, executes it and compares the rebuilt
// figure's snapshot with s.
func Verify(s snapshot.Figure, opts ...codegen.Option) (codegen.Source, error) {
	src, err := codegen.Generate(s, opts...)
	if err != nil {
		return codegen.Source{}, err
	}
	cfg := codegen.DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	fig, err := Run(src.Text, cfg.FuncName)
	if err != nil {
		return src, fmt.Errorf("replay generated source: %w", err)
	}
	if d := snapshot.Diff(s, fig.Snapshot()); d != "" {
		return src, &MismatchError{Diff: d}
	}
	return src, nil
}

// Rebuild turns an archived snapshot back into a live figure by generating
// its source and executing it. Dynamic info segments come back as
// placeholders.
func Rebuild(s snapshot.Figure) (*figure.Figure, error) {
	src, err := codegen.Generate(s)
	if err != nil {
		return nil, err
	}
	fig, err := Run(src.Text, "")
	if err != nil {
		return nil, fmt.Errorf("rebuild: %w", err)
	}
	return fig, nil
}

// VerifyAll runs Verify over named snapshots in order.
func VerifyAll(named map[string]snapshot.Figure, order []string) ([]Result, Summary) {
	results := make([]Result, 0, len(order))
	var sum Summary
	for _, name := range order {
		s, ok := named[name]
		if !ok {
			continue
		}
		r := Result{Name: name}
		src, err := Verify(s)
		r.Source = src
		switch e := err.(type) {
		case nil:
			r.Action = "match"
			sum.Matches++
		case *MismatchError:
			r.Action, r.Reason = "mismatch", e.Diff
			sum.Mismatches++
		default:
			r.Action, r.Reason = "error", err.Error()
			sum.Errors++
		}
		sum.Total++
		results = append(results, r)
	}
	return results, sum
}

// #endregion verify
