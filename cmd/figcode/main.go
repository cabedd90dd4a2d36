// Command figcode archives, generates, previews and serves interactive
// figures.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/livefig/internal/config"
	"github.com/danielpatrickdp/livefig/internal/logging"
	"github.com/danielpatrickdp/livefig/internal/store"
	"github.com/danielpatrickdp/livefig/snapshot"
)

var (
	configPath string
	dbFlag     string
	logLevel   string

	cfg config.Config
)

// #region main
func main() {
	root := &cobra.Command{
		Use:           "figcode",
		Short:         "Turn interactive figures into reproducible Go code",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if cfg, err = config.Load(configPath); err != nil {
				return err
			}
			if dbFlag != "" {
				cfg.DB = dbFlag
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			return logging.Setup(os.Stderr, cfg.Log.Level)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "livefig.yaml", "path to YAML config")
	root.PersistentFlags().StringVar(&dbFlag, "db", "", "snapshot archive (overrides config)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn, error or off")

	root.AddCommand(
		generateCmd(),
		historyCmd(),
		checkoutCmd(),
		replayCmd(),
		exportCmd(),
		previewCmd(),
		serveCmd(),
		replCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
// #endregion main

// #region helpers
func openStore() (*store.Store, error) {
	st, err := store.NewStore(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", cfg.DB, err)
	}
	return st, nil
}

// loadSnapshot reads a snapshot JSON file, or the active archived version
// when path is empty.
func loadSnapshot(path string) (snapshot.Figure, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return snapshot.Figure{}, err
		}
		return snapshot.Unmarshal(data)
	}
	st, err := openStore()
	if err != nil {
		return snapshot.Figure{}, err
	}
	defer st.Close()
	rec, err := st.GetCurrent()
	if err != nil {
		return snapshot.Figure{}, err
	}
	return rec.Snapshot, nil
}

func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
// #endregion helpers
