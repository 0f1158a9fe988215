package cmd

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/pdftools/internal/format"
	"github.com/lehigh-university-libraries/pdftools/internal/models"
	"github.com/lehigh-university-libraries/pdftools/internal/session"
	"github.com/lehigh-university-libraries/pdftools/internal/staging"
	"github.com/lehigh-university-libraries/pdftools/internal/tools"
)

// processReport is the machine-readable output of `pdftools process`
type processReport struct {
	SessionID string               `json:"session_id" yaml:"session_id"`
	Tool      models.ToolID        `json:"tool" yaml:"tool"`
	Inputs    []models.StagedFile  `json:"inputs" yaml:"inputs"`
	Result    models.ProcessResult `json:"result" yaml:"result"`
}

func newProcessCmd(opts *rootOptions) *cobra.Command {
	var (
		toolID string
		drop   bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "process FILE...",
		Short: "Run a tool on local PDF files",
		Long: `Stages the given files for a tool, runs it and prints the result.

With --drop the files are treated like a drag-and-drop: anything that is
not a PDF is silently skipped.`,
		Example: `  pdftools process --tool merge a.pdf b.pdf
  pdftools process --tool compress --output json report.pdf
  pdftools process --tool rotate --drop scans/*`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}

			id, err := tools.ParseToolID(toolID)
			if err != nil {
				return userError{err}
			}

			files, err := staging.FromPaths(args)
			if err != nil {
				return err
			}

			sess := session.New(uuid.NewString())
			if err := sess.SelectTool(id); err != nil {
				return userError{err}
			}
			source := session.SourcePicker
			if drop {
				source = session.SourceDrop
			}
			if err := sess.StageFiles(files, source); err != nil {
				return userError{err}
			}

			hist, err := opts.openHistory()
			if err != nil {
				return err
			}
			if hist != nil {
				defer hist.Close()
			}

			result, err := opts.newService(hist).Run(cmd.Context(), sess)
			if err != nil {
				return err
			}

			snap := sess.Snapshot()
			return printResult(cmd.OutOrStdout(), output, processReport{
				SessionID: snap.ID,
				Tool:      snap.SelectedToolID,
				Inputs:    snap.StagedFiles,
				Result:    result,
			})
		},
	}

	cmd.Flags().StringVarP(&toolID, "tool", "t", "", "Tool to run: merge, split, compress, convert, rotate, or protect")
	cmd.Flags().BoolVar(&drop, "drop", false, "Keep only PDF files, as a drag-and-drop would")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text, json, or yaml")
	_ = cmd.MarkFlagRequired("tool")

	return cmd
}

func checkOutput(output string) error {
	switch output {
	case "text", "json", "yaml":
		return nil
	}
	return fmt.Errorf("unsupported output: %s", output)
}

func printResult(w io.Writer, output string, report processReport) error {
	switch output {
	case "text":
		fmt.Fprintf(w, "✓ %s\n", report.Result.Name)
		fmt.Fprintf(w, "  %s\n", format.Summary(report.Result))
		return nil
	case "json":
		return writeJSON(w, report)
	case "yaml":
		return writeYAML(w, report)
	default:
		return checkOutput(output)
	}
}
