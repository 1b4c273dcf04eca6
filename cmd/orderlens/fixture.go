package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Mr-Dark-debug/orderlens/internal/fixture"
	"github.com/Mr-Dark-debug/orderlens/internal/logging"
)

func newFixtureCmd(flags *globalFlags) *cobra.Command {
	var (
		file string
		addr string
		key  string
	)

	cmd := &cobra.Command{
		Use:   "fixture",
		Short: "Serve orders from a local JSON file",
		Long: `Serve GET /api/order/{id} from a JSON file, either an array of orders
keyed by --key or an object mapping order IDs to orders.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Fixture.Addr = addr
			}
			if cmd.Flags().Changed("key") {
				cfg.Fixture.Key = key
			}

			level, err := logging.ParseLevel(cfg.Log.Level)
			if err != nil {
				return err
			}
			logger := logging.Install(logging.New(os.Stderr, level))

			orders, err := fixture.LoadOrders(file, cfg.Fixture.Key)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := fixture.NewServer(fixture.Config{Addr: cfg.Fixture.Addr, Key: cfg.Fixture.Key}, orders, logger)
			fmt.Fprintf(cmd.ErrOrStderr(), "serving %d orders on http://%s\n", orders.Len(), cfg.Fixture.Addr)
			return srv.Start(ctx)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&file, "file", "f", "", "orders file (required)")
	f.StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8000)")
	f.StringVar(&key, "key", "", "ID field for array fixtures (default order_uid)")
	cmd.MarkFlagRequired("file")
	return cmd
}
