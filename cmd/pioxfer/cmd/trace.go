package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sarchlab/pioxfer/instrumentation/tracing"
)

func newTraceCommand(_ *options) *cobra.Command {
	var query tracing.TransferQuery

	c := &cobra.Command{
		Use:   "trace FILE",
		Short: "List the transfers stored in a recording.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			reader, err := tracing.NewTraceReader(args[0])
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, reader.Close()) }()

			return listTrace(cmd.Context(), cmd.OutOrStdout(), reader, query)
		},
	}

	c.Flags().IntVar(&query.Limit, "limit", 50,
		"maximum number of transfers, 0 for all")
	c.Flags().StringVar(&query.Result, "result", "",
		"only list transfers that ended with this status")
	c.Flags().StringVar(&query.Where, "device", "",
		"only list transfers of this device")
	c.Flags().StringVar(&query.What, "direction", "",
		"only list reads or writes")

	return c
}

func listTrace(
	ctx context.Context,
	w io.Writer,
	reader *tracing.TraceReader,
	query tracing.TransferQuery,
) error {
	records, total, err := reader.ListTransfers(ctx, query)
	if err != nil {
		return err
	}

	steps, err := reader.SummarizeSteps(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDEVICE\tWHAT\tRESULT\tDURATION\tSTALLS")

	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n",
			r.ID, r.Where, r.What, r.Result,
			r.Duration().Round(time.Microsecond), r.Stalls)
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "%d of %d transfers\n", len(records), total)

	for _, s := range steps {
		fmt.Fprintf(w, "%s: %d steps in %d transfers\n", s.What, s.Count, s.Tasks)
	}

	return nil
}
