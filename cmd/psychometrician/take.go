package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/psychometrician/internal/adapters/cli"
	service "github.com/okian/psychometrician/internal/app"
	"github.com/okian/psychometrician/pkg/logger"
)

func newTakeCmd(flags *rootFlags) *cobra.Command {
	var (
		noColor bool
		once    bool
	)

	cmd := &cobra.Command{
		Use:   "take",
		Short: "Take the questionnaire in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			// Logs go to stderr so they do not interleave with the prompts.
			cfg, err := setup(ctx, flags, os.Stderr)
			if err != nil {
				return err
			}

			svc, err := service.NewFromConfig(ctx, cfg, service.WithLogger(logger.Get().Named("service")))
			if err != nil {
				return err
			}
			if err := svc.Start(ctx); err != nil {
				return err
			}
			defer svc.Stop()

			return cli.NewDriver(svc,
				cli.WithOutput(cmd.OutOrStdout()),
				cli.WithColor(!noColor),
				cli.WithRepeat(!once),
			).Run(ctx)
		},
	}
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	cmd.Flags().BoolVar(&once, "once", false, "exit after one assessment")
	return cmd
}
