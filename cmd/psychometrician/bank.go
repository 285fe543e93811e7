package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/psychometrician/internal/adapters/cli"
	service "github.com/okian/psychometrician/internal/app"
	"github.com/okian/psychometrician/pkg/logger"
)

func newBankCmd(flags *rootFlags) *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "bank",
		Short: "Show the item bank",
		Long:  "Show the item count per domain of the configured bank, or every item with --list.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := setup(ctx, flags, os.Stderr)
			if err != nil {
				return err
			}

			store, err := service.OpenStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					logger.Get().Error(ctx, "closing item bank failed", logger.Error(err))
				}
			}()

			render := cli.NewRenderer(cmd.OutOrStdout(), false)
			summary, err := store.Summary(ctx)
			if err != nil {
				return fmt.Errorf("summarize bank: %w", err)
			}
			render.Summary(summary)

			if !list {
				return nil
			}
			items, err := store.All(ctx)
			if err != nil {
				return fmt.Errorf("list bank: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			for _, item := range items {
				render.Item(item)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "list every item")
	return cmd
}
