package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/pdftools/internal/format"
	"github.com/lehigh-university-libraries/pdftools/internal/history"
)

var errHistoryDisabled = errors.New("history is disabled (set history.enabled to true)")

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and export completed operations",
	}

	cmd.AddCommand(newHistoryListCmd(opts))
	cmd.AddCommand(newHistoryExportCmd(opts))
	cmd.AddCommand(newHistoryStatsCmd(opts))

	return cmd
}

func newHistoryListCmd(opts *rootOptions) *cobra.Command {
	var (
		limit  int
		output string
		from   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent operations, newest first",
		Example: `  pdftools history list --limit 10
  pdftools history list --output csv > history.csv
  pdftools history list --from history.parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var entries []history.Entry
			if from != "" {
				// exported parquet files are oldest first
				all, err := opts.allEntries(cmd.Context(), from)
				if err != nil {
					return err
				}
				for i := len(all) - 1; i >= 0 && (limit <= 0 || len(entries) < limit); i-- {
					entries = append(entries, all[i])
				}
			} else {
				store, err := opts.openHistory()
				if err != nil {
					return err
				}
				if store == nil {
					return errHistoryDisabled
				}
				defer store.Close()

				entries, err = store.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
			}

			w := cmd.OutOrStdout()
			switch output {
			case "text":
				return printHistoryTable(w, entries)
			case history.FormatJSON, history.FormatCSV:
				return history.Export(w, output, entries)
			default:
				return fmt.Errorf("unsupported output: %s", output)
			}
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of entries")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text, json, or csv")
	cmd.Flags().StringVar(&from, "from", "", "Read entries from an exported parquet file instead of the database")

	return cmd
}

func newHistoryExportCmd(opts *rootOptions) *cobra.Command {
	var (
		exportFormat string
		file         string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the full history to a file",
		Example: `  pdftools history export --format parquet --file history.parquet
  pdftools history export --format yaml --file history.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := opts.allEntries(cmd.Context(), "")
			if err != nil {
				return err
			}
			if err := history.ExportFile(file, exportFormat, entries); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", len(entries), file)
			return nil
		},
	}

	cmd.Flags().StringVarP(&exportFormat, "format", "f", history.FormatParquet, "Export format: parquet, csv, json, or yaml")
	cmd.Flags().StringVar(&file, "file", "", "Destination file")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newHistoryStatsCmd(opts *rootOptions) *cobra.Command {
	var (
		output string
		from   string
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize completed operations per tool",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := opts.allEntries(cmd.Context(), from)
			if err != nil {
				return err
			}

			stats := history.Summarize(entries)
			w := cmd.OutOrStdout()
			switch output {
			case "text":
				stats.PrintSummary(w)
				return nil
			case "json":
				return writeJSON(w, stats)
			case "yaml":
				return writeYAML(w, stats)
			default:
				return fmt.Errorf("unsupported output: %s", output)
			}
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text, json, or yaml")
	cmd.Flags().StringVar(&from, "from", "", "Read entries from an exported parquet file instead of the database")

	return cmd
}

// allEntries reads every entry, oldest first, from a parquet export or the database
func (o *rootOptions) allEntries(ctx context.Context, from string) ([]history.Entry, error) {
	if from != "" {
		return history.ReadParquetFile(from)
	}

	store, err := o.openHistory()
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, errHistoryDisabled
	}
	defer store.Close()
	return store.All(ctx)
}

func printHistoryTable(w io.Writer, entries []history.Entry) error {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No operations recorded yet.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tTOOL\tINPUTS\tSIZE\tOUTPUT\tDETAILS\tDURATION")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%dms\n",
			e.StartedAt.Local().Format("2006-01-02 15:04:05"),
			e.Tool,
			strings.Join(e.Inputs(), ", "),
			format.Size(e.InputBytes),
			e.OutputName,
			format.Summary(e.Result()),
			e.DurationMillis,
		)
	}
	return tw.Flush()
}
