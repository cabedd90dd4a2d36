package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/livefig/internal/export"
	"github.com/danielpatrickdp/livefig/internal/preview"
)

func exportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export [snapshot.json]",
		Short: "Write a snapshot to an Excel workbook",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSnapshot(firstArg(args))
			if err != nil {
				return err
			}
			if err := export.WriteWorkbook(s, out); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "figure.xlsx", "workbook path")
	return cmd
}

func previewCmd() *cobra.Command {
	var (
		out           string
		width, height int
	)
	cmd := &cobra.Command{
		Use:   "preview [snapshot.json]",
		Short: "Render a snapshot to PNG",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSnapshot(firstArg(args))
			if err != nil {
				return err
			}
			w, h := cfg.Preview.Width, cfg.Preview.Height
			if width > 0 {
				w = width
			}
			if height > 0 {
				h = height
			}
			var buf bytes.Buffer
			if err := preview.Render(s, &buf, preview.WithSize(w, h)); err != nil {
				return err
			}
			return writeOutput(out, buf.Bytes())
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "figure.png", "PNG path, - for stdout")
	cmd.Flags().IntVar(&width, "width", 0, "canvas width (overrides config)")
	cmd.Flags().IntVar(&height, "height", 0, "canvas height (overrides config)")
	return cmd
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
