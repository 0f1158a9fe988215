package cmd

import (
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lehigh-university-libraries/pdftools/internal/config"
	"github.com/lehigh-university-libraries/pdftools/internal/history"
	"github.com/lehigh-university-libraries/pdftools/internal/processing"
	"github.com/lehigh-university-libraries/pdftools/internal/session"
)

// quietLogs marks commands that own the terminal; their logs go to
// log.file or nowhere.
const quietLogs = "quiet-logs"

// rootOptions is shared by every subcommand
type rootOptions struct {
	cfgFile string
	verbose bool

	cfg       *config.Config
	logCloser io.Closer
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "pdftools",
		Short: "Merge, split, compress, convert, rotate and protect PDF files",
		Long: `pdftools offers six PDF tools through a web API, a terminal UI,
a drop-folder watcher and one-shot commands.

Processing is simulated: results describe what the tool would produce
after a short delay. Completed operations are kept in a local history
database that can be exported for analysis.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			cfg, err := config.Load(viper.New(), opts.cfgFile)
			if err != nil {
				return err
			}
			opts.cfg = cfg

			var fallback io.Writer = os.Stderr
			if cmd.Annotations[quietLogs] == "true" {
				fallback = io.Discard
			}
			closer, err := config.SetupLogging(cfg.Log, opts.verbose, fallback)
			if err != nil {
				return err
			}
			opts.logCloser = closer
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logCloser != nil {
				opts.logCloser.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default: ./pdftools.yaml or ~/.config/pdftools/pdftools.yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	// Add subcommands
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newToolsCmd())
	cmd.AddCommand(newProcessCmd(opts))
	cmd.AddCommand(newWatchCmd(opts))
	cmd.AddCommand(newTUICmd(opts))
	cmd.AddCommand(newHistoryCmd(opts))
	cmd.AddCommand(newConfigCmd(opts))

	return cmd
}

// openHistory opens the history store, or returns nil when history is disabled
func (o *rootOptions) openHistory() (*history.Store, error) {
	if !o.cfg.History.Enabled {
		slog.Debug("History disabled")
		return nil, nil
	}
	return history.Open(o.cfg.History.Path)
}

// newService builds a processing service backed by the simulator
func (o *rootOptions) newService(store *history.Store) *processing.Service {
	sim := processing.NewSimulator(o.cfg.Processing.MinDelay, o.cfg.Processing.MaxDelay)
	if store == nil {
		return processing.NewService(sim, nil)
	}
	return processing.NewService(sim, store)
}

// userError presents a session error by its notice text
type userError struct {
	err error
}

func (e userError) Error() string { return session.Notice(e.err) }

func (e userError) Unwrap() error { return e.err }
