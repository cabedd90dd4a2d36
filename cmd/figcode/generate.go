package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/livefig/internal/codegen"
	"github.com/danielpatrickdp/livefig/internal/logging"
)

func generateCmd() *cobra.Command {
	var (
		out, pkg, fn, label string
		commit              bool
	)
	cmd := &cobra.Command{
		Use:   "generate [snapshot.json]",
		Short: "Generate Go source for a snapshot (default: the active archived version)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSnapshot(firstArg(args))
			if err != nil {
				return err
			}

			gen := codegen.Config{Package: cfg.Codegen.Package, FuncName: cfg.Codegen.Func}
			if pkg != "" {
				gen.Package = pkg
			}
			if fn != "" {
				gen.FuncName = fn
			}
			src, genErr := codegen.Generate(s, codegen.WithPackage(gen.Package), codegen.WithFuncName(gen.FuncName))

			if commit {
				st, err := openStore()
				if err != nil {
					return err
				}
				defer st.Close()
				rec, err := st.Commit(s, label, "generate", gen, src, genErr)
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "archived %s\n", rec.VersionID)
			}
			if genErr != nil {
				logging.Logger().Warn("generation failed", "err", genErr)
				return genErr
			}
			return writeOutput(out, []byte(src.Text))
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&pkg, "package", "", "package clause (overrides config)")
	cmd.Flags().StringVar(&fn, "func", "", "builder function name (overrides config)")
	cmd.Flags().BoolVar(&commit, "commit", false, "archive the snapshot and log provenance")
	cmd.Flags().StringVar(&label, "label", "", "label for the archived version")
	return cmd
}
