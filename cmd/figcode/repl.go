package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/livefig/figure"
	"github.com/danielpatrickdp/livefig/internal/codegen"
	"github.com/danielpatrickdp/livefig/internal/console"
	"github.com/danielpatrickdp/livefig/internal/export"
	"github.com/danielpatrickdp/livefig/internal/preview"
	"github.com/danielpatrickdp/livefig/internal/store"
)

const (
	historyFile = ".figcode_history"
	prompt      = "fig> "
)

var metaCommands = []string{":quit", ":save", ":export", ":import", ":preview", ":help"}

func replCmd() *cobra.Command {
	var resume bool
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Edit a figure interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			fig, err := startingFigure(st, !resume)
			if err != nil {
				return err
			}
			return runRepl(console.NewSession(fig, os.Stdout), st)
		},
	}
	cmd.Flags().BoolVar(&resume, "resume", false, "start from the active archived version")
	return cmd
}

// #region repl
func runRepl(sess *console.Session, st *store.Store) error {
	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(complete)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Println("figcode repl. Type help for commands, :help for session commands, :quit to exit.")
	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			fmt.Println()
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(line)

		if strings.HasPrefix(line, ":") {
			quit, err := meta(sess, st, line)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
			}
			if quit {
				return nil
			}
			continue
		}
		if err := sess.Exec(line); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
}

func complete(line string) []string {
	var out []string
	for _, c := range append(console.Commands(), metaCommands...) {
		if strings.HasPrefix(c, line) {
			out = append(out, c)
		}
	}
	return out
}

// meta runs a session command. It reports true when the repl should exit.
func meta(sess *console.Session, st *store.Store, line string) (bool, error) {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	fig := sess.Figure()
	switch name {
	case ":quit", ":q":
		return true, nil
	case ":save":
		return false, save(fig, st, arg)
	case ":export":
		if arg == "" {
			arg = "figure.xlsx"
		}
		return false, export.WriteWorkbook(fig.Snapshot(), arg)
	case ":import":
		ps, err := export.ReadParameters(arg)
		if err != nil {
			return false, err
		}
		return false, export.ApplyParameters(fig, ps)
	case ":preview":
		if arg == "" {
			arg = "figure.png"
		}
		var buf bytes.Buffer
		if err := preview.Render(fig.Snapshot(), &buf, preview.WithSize(cfg.Preview.Width, cfg.Preview.Height)); err != nil {
			return false, err
		}
		return false, os.WriteFile(arg, buf.Bytes(), 0o644)
	case ":help":
		fmt.Println("  :save [LABEL]    archive the figure and its generated code")
		fmt.Println("  :export [PATH]   write an Excel workbook")
		fmt.Println("  :import PATH     apply the parameter sheet of a workbook")
		fmt.Println("  :preview [PATH]  render a PNG")
		fmt.Println("  :quit")
		return false, nil
	}
	return false, fmt.Errorf("unknown session command %q", name)
}

func save(fig *figure.Figure, st *store.Store, label string) error {
	gen := codegen.Config{Package: cfg.Codegen.Package, FuncName: cfg.Codegen.Func}
	s := fig.Snapshot()
	src, genErr := codegen.Generate(s, cfg.CodegenOptions()...)
	rec, err := st.Commit(s, label, "repl", gen, src, genErr)
	if err != nil {
		return err
	}
	fmt.Printf("saved %s\n", rec.VersionID)
	return nil
}
// #endregion repl
