package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"browserboot/application"
	domainhistory "browserboot/domain/history"
)

func newHistoryCmd(c *cli) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Summarize recorded bootstrap runs per mode",
		Long: `Read recorded runs from MongoDB and print, per mode, how many runs
succeeded, how many needed no retry and the mean number of attempts.

Runs are recorded by "open" when history.enabled is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), c, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", domainhistory.DefaultLimit, "Number of most recent runs to summarize")

	return cmd
}

func runHistory(ctx context.Context, c *cli, limit int) error {
	h, err := application.OpenHistory(ctx, c.settings, c.logger)
	if err != nil {
		return err
	}
	defer h.Close(context.Background())

	summaries, err := h.Service.Summarize(ctx, limit)
	if err != nil {
		return err
	}

	if len(summaries) == 0 {
		fmt.Fprintln(os.Stdout, "No runs recorded.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODE\tRUNS\tSUCCEEDED\tFIRST ATTEMPT\tMEAN ATTEMPTS\tMAX ATTEMPTS")
	for _, s := range summaries {
		fmt.Fprintf(w, "%s\t%d\t%.0f%%\t%d\t%.2f\t%d\n",
			s.Mode, s.Runs, s.SuccessRate()*100, s.FirstAttempt, s.MeanAttempts, s.MaxAttempts)
	}
	return w.Flush()
}
