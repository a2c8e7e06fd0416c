package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/leadfilter-cli/internal/model"
	"github.com/sells-group/leadfilter-cli/internal/store"
)

var (
	runsStatus  string
	runsService string
	runsLimit   int
	runsID      string
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List saved filter runs, or show one run's verdicts with --id",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		s, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		if runsID != "" {
			return showRun(cmd, s, runsID)
		}

		runs, err := s.ListRuns(ctx, store.RunFilter{
			Status:      model.RunStatus(runsStatus),
			ServiceType: runsService,
			Limit:       runsLimit,
		})
		if err != nil {
			return err
		}

		for _, r := range runs {
			line := fmt.Sprintf("%s  %-10s %-6s %-28s %s",
				r.ID, r.Status, r.Mode, r.ServiceType, r.CreatedAt.Format("2006-01-02 15:04"))
			if r.Summary != nil {
				line += fmt.Sprintf("  %d/%d accepted", r.Summary.Included, r.Summary.Total)
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no runs found")
		}
		return nil
	},
}

func showRun(cmd *cobra.Command, s store.Store, runID string) error {
	ctx := cmd.Context()

	run, err := s.GetRun(ctx, runID)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "run %s  %s  %s mode, %s\n",
		run.ID, run.ServiceType, run.Mode, run.Status)
	if run.Summary != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "accepted %d / %d (%.0f%%), avg confidence %.2f, %d fallbacks\n",
			run.Summary.Included, run.Summary.Total,
			run.Summary.InclusionRate*100, run.Summary.AvgConfidence, run.Summary.FallbackCount)
	}

	verdicts, err := s.ListVerdicts(ctx, runID)
	if err != nil {
		return err
	}
	for _, v := range verdicts {
		mark := "-"
		if v.IsServiceProvider {
			mark = "+"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %-40s %.2f  %s\n", mark, v.BusinessName, v.Confidence, v.Reason)
	}
	return nil
}

func init() {
	runsCmd.Flags().StringVar(&runsStatus, "status", "", "filter by status: running, complete, failed")
	runsCmd.Flags().StringVar(&runsService, "service", "", "filter by service type")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "max runs to list")
	runsCmd.Flags().StringVar(&runsID, "id", "", "show verdicts for one run")
	rootCmd.AddCommand(runsCmd)
}
