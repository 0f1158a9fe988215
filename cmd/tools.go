package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/pdftools/internal/models"
	"github.com/lehigh-university-libraries/pdftools/internal/tools"
)

var (
	toolNameStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C0392B"))
	toolIDStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	multipleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6")).Italic(true)
)

func newToolsCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the available PDF tools",
		Example: `  pdftools tools
  pdftools tools --output json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printTools(cmd.OutOrStdout(), output, tools.List())
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text, json, or yaml")

	return cmd
}

func printTools(w io.Writer, output string, list []models.Tool) error {
	switch output {
	case "text":
		for _, t := range list {
			line := fmt.Sprintf("%s %s", toolNameStyle.Render(t.Name), toolIDStyle.Render("("+string(t.ID)+")"))
			if t.AcceptsMultipleFiles {
				line += " " + multipleStyle.Render("multiple files")
			}
			fmt.Fprintln(w, line)
			fmt.Fprintf(w, "  %s\n", t.Description)
		}
		return nil
	case "json":
		return writeJSON(w, list)
	case "yaml":
		return writeYAML(w, list)
	default:
		return fmt.Errorf("unsupported output: %s", output)
	}
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return err
	}
	return encoder.Close()
}
