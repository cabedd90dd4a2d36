package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/livefig/internal/replay"
	"github.com/danielpatrickdp/livefig/snapshot"
)

// errMismatch signals a failed verification after the report is printed.
var errMismatch = errors.New("replay: verification failed")

func replayCmd() *cobra.Command {
	var (
		fn, expect, fixture string
		archive             bool
		last                int
	)
	cmd := &cobra.Command{
		Use:   "replay [generated.go]",
		Short: "Execute generated source, or verify fixtures and archived versions round-trip",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case fixture != "":
				return runFixture(fixture)
			case archive:
				return runArchive(last)
			case len(args) == 1:
				return runSource(args[0], fn, expect)
			}
			return cmd.Usage()
		},
	}
	cmd.Flags().StringVar(&fn, "func", "", "builder function name (default Build)")
	cmd.Flags().StringVar(&expect, "expect", "", "snapshot JSON the source must rebuild")
	cmd.Flags().StringVar(&fixture, "fixture", "", "fixture JSON to verify")
	cmd.Flags().BoolVar(&archive, "archive", false, "verify archived versions")
	cmd.Flags().IntVar(&last, "last", 20, "archived versions to verify")
	return cmd
}

func runSource(path, fn, expect string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	fig, err := replay.Run(string(src), fn)
	if err != nil {
		return err
	}
	got := fig.Snapshot()
	if expect == "" {
		data, err := snapshot.Marshal(got)
		if err != nil {
			return err
		}
		return writeOutput("", append(data, '\n'))
	}
	want, err := loadSnapshot(expect)
	if err != nil {
		return err
	}
	if d := snapshot.Diff(want, got); d != "" {
		fmt.Printf("mismatch at %s\n", d)
		return errMismatch
	}
	fmt.Println("match")
	return nil
}

func runFixture(path string) error {
	f, err := replay.LoadFixture(path)
	if err != nil {
		return err
	}
	if err := f.Check(); err != nil {
		fmt.Printf("FAIL %s: %v\n", f.Description, err)
		return errMismatch
	}
	fmt.Printf("ok   %s\n", f.Description)
	return nil
}

func runArchive(last int) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	versions, err := st.ListVersions(last)
	if err != nil {
		return err
	}
	named := make(map[string]snapshot.Figure, len(versions))
	order := make([]string, len(versions))
	for i, v := range versions {
		named[v.VersionID] = v.Snapshot
		order[i] = v.VersionID
	}
	results, sum := replay.VerifyAll(named, order)
	for _, r := range results {
		fmt.Printf("%-8s %s %s\n", r.Action, r.Name, r.Reason)
	}
	fmt.Printf("total=%d match=%d mismatch=%d error=%d\n", sum.Total, sum.Matches, sum.Mismatches, sum.Errors)
	if sum.Mismatches+sum.Errors > 0 {
		return errMismatch
	}
	return nil
}
