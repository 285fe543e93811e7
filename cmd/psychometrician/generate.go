package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/psychometrician/internal/adapters/cli"
	service "github.com/okian/psychometrician/internal/app"
	"github.com/okian/psychometrician/internal/domain/generator"
	"github.com/okian/psychometrician/pkg/logger"
)

const (
	defaultGenerateTimeout = time.Minute
	pollInterval           = 50 * time.Millisecond
)

// errGenerationFailed is returned when a generation request ends failed.
var errGenerationFailed = errors.New("generation failed")

func newGenerateCmd(flags *rootFlags) *cobra.Command {
	var (
		domain     string
		difficulty float64
		count      int
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Draft new items into the bank",
		Long: `Draft new items with the configured generator and append them to the bank.

Items only outlive the command with bank_store set to sqlite.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
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

			req := generator.Request{Domain: domain}
			if cmd.Flags().Changed("difficulty") {
				req.Difficulty = &difficulty
			}

			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			render := cli.NewRenderer(cmd.OutOrStdout(), false)
			for i := 0; i < count; i++ {
				status, err := generate(ctx, svc, req)
				if err != nil {
					return err
				}
				render.Item(*status.Item)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&domain, "domain", "", "item domain (random known domain when empty)")
	cmd.Flags().Float64Var(&difficulty, "difficulty", 0, "item difficulty in [0,1] (random when unset)")
	cmd.Flags().IntVar(&count, "count", 1, "number of items to draft")
	cmd.Flags().DurationVar(&timeout, "timeout", defaultGenerateTimeout, "overall time limit")
	return cmd
}

// generate requests one item and waits for its request to finish.
func generate(ctx context.Context, svc *service.Service, req generator.Request) (service.GenerationStatus, error) {
	status, err := svc.RequestGeneration(ctx, req)
	if err != nil {
		return service.GenerationStatus{}, err
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return service.GenerationStatus{}, fmt.Errorf("wait for request %s: %w", status.ID, ctx.Err())
		case <-ticker.C:
			status, err = svc.GenerationStatus(ctx, status.ID)
			if err != nil {
				return service.GenerationStatus{}, err
			}
			switch status.Status {
			case service.StatusDone:
				return status, nil
			case service.StatusFailed:
				return status, fmt.Errorf("%w: %s", errGenerationFailed, status.Error)
			}
		}
	}
}
