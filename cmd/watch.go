package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/pdftools/internal/format"
	"github.com/lehigh-university-libraries/pdftools/internal/tools"
	"github.com/lehigh-university-libraries/pdftools/internal/watch"
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var (
		toolID  string
		dir     string
		pattern string
		settle  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Process every PDF dropped into a directory",
		Long: `Watches a directory and runs a tool on each new file matching the
pattern. Every file gets its own session and is staged as a drop, so
non-PDF files are rejected. Runs until interrupted.`,
		Example: `  pdftools watch --tool compress --dir ~/Dropbox/compress
  pdftools watch --tool rotate --dir ./inbox --pattern 'scan-*.pdf'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := tools.ParseToolID(toolID)
			if err != nil {
				return userError{err}
			}

			hist, err := opts.openHistory()
			if err != nil {
				return err
			}
			if hist != nil {
				defer hist.Close()
			}

			out := cmd.OutOrStdout()
			w, err := watch.New(watch.Options{
				Dir:     dir,
				Tool:    id,
				Pattern: pattern,
				Settle:  settle,
				Service: opts.newService(hist),
				OnResult: func(o watch.Outcome) {
					if o.Err != nil {
						fmt.Fprintf(out, "✗ %s: %s\n", o.Path, userError{o.Err})
						return
					}
					fmt.Fprintf(out, "✓ %s → %s (%s)\n", o.Path, o.Result.Name, format.Summary(o.Result))
				},
			})
			if err != nil {
				return err
			}

			return w.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&toolID, "tool", "t", "", "Tool to run on dropped files")
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory to watch")
	cmd.Flags().StringVar(&pattern, "pattern", watch.DefaultPattern, "Glob matched against dropped file names")
	cmd.Flags().DurationVar(&settle, "settle", watch.DefaultSettle, "Quiet period before a new file is picked up")
	_ = cmd.MarkFlagRequired("tool")

	return cmd
}
