package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/pdftools/internal/tui"
)

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive terminal interface",
		Long: `Opens a full-screen terminal interface for one session: pick a tool,
enter file paths, process, then restage or start over.

Logs are written to log.file when it is set and discarded otherwise.`,
		Annotations: map[string]string{quietLogs: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			hist, err := opts.openHistory()
			if err != nil {
				return err
			}
			if hist != nil {
				defer hist.Close()
			}
			return tui.Run(cmd.Context(), opts.newService(hist))
		},
	}
}
