package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/membist/bist/benchmark"
	"github.com/sarchlab/membist/datarecording"
)

var resultsCmd = &cobra.Command{
	Use:   "results FILE.sqlite3",
	Short: "Print the reports recorded by run --record.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reader, err := datarecording.NewReader(args[0])
		if err != nil {
			return err
		}
		defer reader.Close()

		reader.MapTable(benchmark.ResultTable, benchmark.ResultEntry{})
		reader.MapTable(benchmark.MismatchTable, benchmark.MismatchEntry{})

		params := datarecording.QueryParams{OrderBy: "Benchmark"}
		if name, _ := cmd.Flags().GetString("benchmark"); name != "" {
			params.Where = "Benchmark = ?"
			params.Args = []any{name}
		}

		results, _, err := reader.Query(cmd.Context(), benchmark.ResultTable,
			params)
		if err != nil {
			return err
		}

		printResults(cmd.OutOrStdout(), results)

		if show, _ := cmd.Flags().GetBool("mismatches"); !show {
			return nil
		}

		params.OrderBy = "Benchmark, \"Index\""
		params.Limit, _ = cmd.Flags().GetInt("limit")

		mismatches, total, err := reader.Query(cmd.Context(),
			benchmark.MismatchTable, params)
		if err != nil {
			return err
		}

		printMismatches(cmd.OutOrStdout(), mismatches, total)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(resultsCmd)

	resultsCmd.Flags().String("benchmark", "", "Only show this benchmark")
	resultsCmd.Flags().Bool("mismatches", false, "Also list the mismatches")
	resultsCmd.Flags().Int("limit", 100, "Maximum number of mismatches to list")
}

func printResults(w io.Writer, results []any) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "benchmark\twidth\tgen ticks\tchk ticks\terrors\t"+
		"cycles\tpassed\t")

	for _, r := range results {
		e := r.(*benchmark.ResultEntry)
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%t\t\n",
			e.Benchmark, e.DataWidth, e.GeneratorTicks, e.CheckerTicks,
			e.CheckerErrors, e.TotalCycles, e.Passed)
	}

	tw.Flush()
}

func printMismatches(w io.Writer, mismatches []any, total int) {
	for _, m := range mismatches {
		e := m.(*benchmark.MismatchEntry)
		fmt.Fprintf(w, "%s: mismatch #%d at 0x%08x: expected 0x%x, got 0x%x\n",
			e.Benchmark, e.Index, e.Address, e.Expected, e.Actual)
	}

	if total > len(mismatches) {
		fmt.Fprintf(w, "%d more mismatches not shown\n", total-len(mismatches))
	}
}
