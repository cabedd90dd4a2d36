package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/danielpatrickdp/livefig/figure"
	"github.com/danielpatrickdp/livefig/internal/codec"
	"github.com/danielpatrickdp/livefig/internal/logging"
	"github.com/danielpatrickdp/livefig/internal/replay"
	"github.com/danielpatrickdp/livefig/internal/store"
)

func serveCmd() *cobra.Command {
	var (
		addr  string
		fresh bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the active figure over gRPC",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = cfg.Addr
			}
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			fig, err := startingFigure(st, fresh)
			if err != nil {
				return err
			}

			lis, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", addr, err)
			}
			gs := grpc.NewServer()
			codec.RegisterFigureService(gs, codec.NewServer(fig,
				codec.WithArchive(st),
				codec.WithCodegen(cfg.CodegenOptions()...),
			))

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				gs.GracefulStop()
			}()

			logging.Logger().Info("figure service listening", "addr", lis.Addr().String(), "db", cfg.DB)
			fmt.Fprintf(os.Stderr, "serving %s on %s\n", codec.ServiceName, lis.Addr())
			if err := gs.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().BoolVar(&fresh, "fresh", false, "start from an empty figure instead of the active version")
	return cmd
}

// startingFigure rebuilds the active archived version, or returns an empty
// figure when there is none or fresh is set.
func startingFigure(st *store.Store, fresh bool) (*figure.Figure, error) {
	if fresh {
		return figure.New(), nil
	}
	rec, err := st.GetCurrent()
	if errors.Is(err, store.ErrNotFound) {
		return figure.New(), nil
	}
	if err != nil {
		return nil, err
	}
	fig, err := replay.Rebuild(rec.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", rec.VersionID, err)
	}
	logging.Logger().Info("figure restored", "version", rec.VersionID)
	return fig, nil
}
