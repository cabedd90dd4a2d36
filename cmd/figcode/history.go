package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

type historyRow struct {
	VersionID string `json:"version_id"`
	ParentID  string `json:"parent_id,omitempty"`
	Label     string `json:"label,omitempty"`
	Params    int    `json:"params"`
	Plots     int    `json:"plots"`
	Decision  string `json:"decision,omitempty"`
	Reason    string `json:"reason,omitempty"`
	CreatedAt string `json:"created_at"`
	Active    bool   `json:"active"`
}

func historyCmd() *cobra.Command {
	var (
		last    int
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived versions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			versions, err := st.ListWithProvenance(last)
			if err != nil {
				return err
			}
			active := ""
			if cur, err := st.GetCurrent(); err == nil {
				active = cur.VersionID
			}

			rows := make([]historyRow, len(versions))
			for i, v := range versions {
				rows[i] = historyRow{
					VersionID: v.VersionID,
					ParentID:  v.ParentID,
					Label:     v.Label,
					Params:    len(v.Snapshot.Params),
					Plots:     len(v.Snapshot.Plots),
					Decision:  v.Decision,
					Reason:    v.Reason,
					CreatedAt: v.CreatedAt.Format(time.RFC3339),
					Active:    v.VersionID == active,
				}
			}
			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}
			if len(rows) == 0 {
				fmt.Fprintln(os.Stderr, "no versions found")
				return nil
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "\tVERSION\tLABEL\tPARAMS\tPLOTS\tDECISION\tCREATED")
			for _, r := range rows {
				mark := ""
				if r.Active {
					mark = "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n", mark, r.VersionID, r.Label, r.Params, r.Plots, r.Decision, r.CreatedAt)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&last, "last", 20, "show N most recent versions")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON instead of a table")
	return cmd
}

func checkoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout VERSION",
		Short: "Make an archived version active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Checkout(args[0]); err != nil {
				return err
			}
			fmt.Printf("active version: %s\n", args[0])
			return nil
		},
	}
}
