package main

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/psychometrician/internal/domain/scoring"
	"github.com/okian/psychometrician/internal/simulate"
)

func newSimulateCmd(flags *rootFlags) *cobra.Command {
	var (
		targets  []string
		sessions int
		persona  string
		seed     int64
		timeout  time.Duration
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run simulated respondents against running servers",
		Long: `Run simulated respondents against one or more running servers and verify
that every session ends within its quota with consistent scores and bands.

Personas: ` + strings.Join(simulate.Personas(), ", ") + `, or mixed to cycle through them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := setup(ctx, flags, os.Stderr)
			if err != nil {
				return err
			}

			domains := make(map[string]scoring.Thresholds, len(cfg.DomainThresholds))
			for d, t := range cfg.DomainThresholds {
				domains[d] = scoring.Thresholds{Moderate: t.Moderate, High: t.High}
			}

			stats, err := simulate.Run(ctx, simulate.Config{
				Targets:          targets,
				Sessions:         sessions,
				Persona:          persona,
				Seed:             seed,
				Timeout:          timeout,
				Thresholds:       scoring.Thresholds{Moderate: cfg.ModerateThreshold, High: cfg.HighThreshold},
				DomainThresholds: domains,
				InvertedDomains:  cfg.InvertedDomains,
				Verbose:          verbose,
			})
			if stats != nil {
				simulate.Print(cmd.OutOrStdout(), stats)
			}
			return err
		},
	}
	cmd.Flags().StringSliceVar(&targets, "target", []string{"http://localhost:9080"}, "server base URL (repeatable)")
	cmd.Flags().IntVar(&sessions, "sessions", simulate.DefaultSessions, "sessions per target")
	cmd.Flags().StringVar(&persona, "persona", simulate.DefaultPersona, "respondent persona")
	cmd.Flags().Int64Var(&seed, "seed", 0, "answer seed (0 uses the clock)")
	cmd.Flags().DurationVar(&timeout, "timeout", simulate.DefaultTimeout, "HTTP request timeout")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "log every session")
	return cmd
}
