package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/tracing"
)

func newTraceCommand() *cobra.Command {
	traceCmd := &cobra.Command{
		Use:   "trace [file.sqlite3]",
		Short: "Print the translations recorded in a trace file.",
		Args:  cobra.ExactArgs(1),
		RunE:  runTrace,
	}

	flags := traceCmd.Flags()
	flags.String("outcome", "", "Only show hit, fault_resolved or fault_exhausted")
	flags.Int("limit", 0, "Show at most this many rows, 0 for all")

	return traceCmd
}

func runTrace(cmd *cobra.Command, args []string) error {
	reader, err := datarecording.NewReader(args[0])
	if err != nil {
		return err
	}
	defer reader.Close()

	reader.MapTable(tracing.TranslationTable, tracing.TranslationEntry{})

	params := datarecording.QueryParams{OrderBy: "rowid"}
	params.Limit, _ = cmd.Flags().GetInt("limit")

	outcome, _ := cmd.Flags().GetString("outcome")
	if outcome != "" {
		params.Where = "Outcome = ?"
		params.Args = []any{outcome}
	}

	rows, total, err := reader.Query(cmd.Context(),
		tracing.TranslationTable, params)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Translator\tSeq\tAddress\tPage\tOffset\tOutcome\tFrame\tPhysical")

	for _, row := range rows {
		e := row.(*tracing.TranslationEntry)
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%s\t%s\t%s\n",
			e.Translator, e.Seq, e.LogicalAddress, e.PageNumber, e.Offset,
			e.Outcome, optional(e.FrameNumber), optional(e.PhysicalAddress))
	}

	err = tw.Flush()
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d of %d rows\n", len(rows), total)

	return nil
}

func optional(v int64) string {
	if v < 0 {
		return "-"
	}

	return fmt.Sprint(v)
}
