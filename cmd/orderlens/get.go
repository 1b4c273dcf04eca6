package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Mr-Dark-debug/orderlens/internal/lookup"
	"github.com/Mr-Dark-debug/orderlens/internal/tui"
	"github.com/Mr-Dark-debug/orderlens/pkg/jsonvalue"
)

func newGetCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "get <order-id>",
		Short: "Look up one order and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, flags, true)
			if err != nil {
				return err
			}
			defer a.Close()
			return runGet(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), a.controller(), args[0], asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the order as compact JSON")
	return cmd
}

// runGet performs one lookup and prints the tree, or the JSON, to out. The
// response time goes to out with the tree and to errOut with --json.
func runGet(ctx context.Context, out, errOut io.Writer, ctrl *lookup.Controller, orderID string, asJSON bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctrl.Search(ctx, orderID); err != nil {
		return err
	}
	view := ctrl.View()

	if asJSON {
		data, err := jsonvalue.Marshal(view.Tree.Value)
		if err != nil {
			return fmt.Errorf("encoding order: %w", err)
		}
		fmt.Fprintln(out, string(data))
		fmt.Fprintln(errOut, view.ResponseTime)
		return nil
	}

	fmt.Fprintln(out, tui.RenderTree(view.Tree))
	fmt.Fprintln(out, view.ResponseTime)
	return nil
}
