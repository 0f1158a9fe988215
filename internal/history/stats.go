package history

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/pdftools/internal/format"
)

// ToolStats contains statistics for a single tool
type ToolStats struct {
	Tool           string        `json:"tool" yaml:"tool"`
	Operations     int           `json:"operations" yaml:"operations"`
	InputFiles     int           `json:"input_files" yaml:"input_files"`
	InputBytes     int64         `json:"input_bytes" yaml:"input_bytes"`
	OutputBytes    int64         `json:"output_bytes" yaml:"output_bytes"`
	AverageTime    time.Duration `json:"average_time" yaml:"average_time"`
	AverageSavings float64       `json:"average_savings,omitempty" yaml:"average_savings,omitempty"`

	totalDuration time.Duration
	ratioSum      int
	ratioCount    int
}

// Stats aggregates a set of history entries
type Stats struct {
	Operations  int           `json:"operations" yaml:"operations"`
	InputBytes  int64         `json:"input_bytes" yaml:"input_bytes"`
	OutputBytes int64         `json:"output_bytes" yaml:"output_bytes"`
	AverageTime time.Duration `json:"average_time" yaml:"average_time"`
	TotalTime   time.Duration `json:"total_time" yaml:"total_time"`
	First       time.Time     `json:"first,omitzero" yaml:"first,omitempty"`
	Last        time.Time     `json:"last,omitzero" yaml:"last,omitempty"`
	Tools       []ToolStats   `json:"tools" yaml:"tools"`
}

// Summarize aggregates entries per tool. Tools are ordered by operation
// count, then name.
func Summarize(entries []Entry) Stats {
	stats := Stats{Operations: len(entries)}
	byTool := make(map[string]*ToolStats)

	for _, e := range entries {
		elapsed := time.Duration(e.DurationMillis) * time.Millisecond
		stats.InputBytes += e.InputBytes
		stats.OutputBytes += e.OutputBytes
		stats.TotalTime += elapsed

		if stats.First.IsZero() || e.StartedAt.Before(stats.First) {
			stats.First = e.StartedAt
		}
		if e.StartedAt.After(stats.Last) {
			stats.Last = e.StartedAt
		}

		ts, ok := byTool[e.Tool]
		if !ok {
			ts = &ToolStats{Tool: e.Tool}
			byTool[e.Tool] = ts
		}
		ts.Operations++
		ts.InputFiles += int(e.InputCount)
		ts.InputBytes += e.InputBytes
		ts.OutputBytes += e.OutputBytes
		ts.totalDuration += elapsed
		if e.CompressionRatio > 0 {
			ts.ratioSum += int(e.CompressionRatio)
			ts.ratioCount++
		}
	}

	if stats.Operations > 0 {
		stats.AverageTime = stats.TotalTime / time.Duration(stats.Operations)
	}

	stats.Tools = make([]ToolStats, 0, len(byTool))
	for _, ts := range byTool {
		ts.AverageTime = ts.totalDuration / time.Duration(ts.Operations)
		if ts.ratioCount > 0 {
			ts.AverageSavings = float64(ts.ratioSum) / float64(ts.ratioCount)
		}
		stats.Tools = append(stats.Tools, *ts)
	}
	sort.Slice(stats.Tools, func(i, j int) bool {
		a, b := stats.Tools[i], stats.Tools[j]
		if a.Operations != b.Operations {
			return a.Operations > b.Operations
		}
		return a.Tool < b.Tool
	})

	return stats
}

// PrintSummary writes a human-readable summary of the statistics
func (s Stats) PrintSummary(w io.Writer) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "PDF TOOLS HISTORY SUMMARY")
	fmt.Fprintln(w, rule)

	if s.Operations == 0 {
		fmt.Fprintln(w, "No operations recorded yet.")
		return
	}

	fmt.Fprintf(w, "Operations: %d\n", s.Operations)
	fmt.Fprintf(w, "Period: %s to %s\n", s.First.Local().Format("2006-01-02 15:04"), s.Last.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "Input: %s  Output: %s\n", format.Size(s.InputBytes), format.Size(s.OutputBytes))
	fmt.Fprintf(w, "Average Processing Time: %s\n", s.AverageTime)
	fmt.Fprintf(w, "Total Processing Time: %s\n", s.TotalTime)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "PER TOOL")
	fmt.Fprintln(w, strings.Repeat("-", 60))
	for _, ts := range s.Tools {
		fmt.Fprintf(w, "%-9s %4d ops  %4d files  %10s → %-10s  avg %s",
			ts.Tool, ts.Operations, ts.InputFiles, format.Size(ts.InputBytes), format.Size(ts.OutputBytes), ts.AverageTime)
		if ts.AverageSavings > 0 {
			fmt.Fprintf(w, "  %.1f%% smaller", ts.AverageSavings)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, rule)
}
