package history

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"
)

// Export formats
const (
	FormatParquet = "parquet"
	FormatCSV     = "csv"
	FormatJSON    = "json"
	FormatYAML    = "yaml"
)

// ErrUnsupportedFormat is returned for an unknown export format
var ErrUnsupportedFormat = errors.New("unsupported format")

// CheckFormat reports whether format can be exported
func CheckFormat(format string) error {
	switch strings.ToLower(format) {
	case FormatParquet, FormatCSV, FormatJSON, FormatYAML, "yml":
		return nil
	}
	return fmt.Errorf("%w: %s (supported: parquet, csv, json, yaml)", ErrUnsupportedFormat, format)
}

// ExportFile writes entries to path in the given format. An unsupported
// format fails before the file is created.
func ExportFile(path, format string, entries []Entry) error {
	if err := CheckFormat(format); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}

	if err := Export(file, format, entries); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close export file: %w", err)
	}

	slog.Info("History exported", "path", path, "format", format, "entries", len(entries))
	return nil
}

// Export writes entries to w in the given format
func Export(w io.Writer, format string, entries []Entry) error {
	switch strings.ToLower(format) {
	case FormatParquet:
		return WriteParquet(w, entries)
	case FormatCSV:
		return WriteCSV(w, entries)
	case FormatJSON:
		return WriteJSON(w, entries)
	case FormatYAML, "yml":
		return WriteYAML(w, entries)
	default:
		return CheckFormat(format)
	}
}

// WriteParquet writes entries as a single parquet file
func WriteParquet(w io.Writer, entries []Entry) error {
	writer := parquet.NewGenericWriter[Entry](w)
	if len(entries) > 0 {
		if _, err := writer.Write(entries); err != nil {
			return fmt.Errorf("failed to write parquet rows: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

// ReadParquetFile loads entries previously written by WriteParquet
func ReadParquetFile(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}
	slog.Debug("Parquet file opened", "path", path, "num_rows", pf.NumRows())

	reader := parquet.NewGenericReader[Entry](pf)
	defer reader.Close()

	var entries []Entry
	rows := make([]Entry, 128)
	for {
		n, err := reader.Read(rows)
		entries = append(entries, rows[:n]...)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
		if n == 0 {
			break
		}
	}
	return entries, nil
}

var csvHeader = []string{
	"id", "session_id", "tool", "input_count", "input_names", "input_bytes",
	"output_name", "output_bytes", "output_mime_type", "file_count",
	"compression_ratio", "format", "rotation_description", "password_protected",
	"started_at", "duration_ms",
}

// WriteCSV writes entries with a header row
func WriteCSV(w io.Writer, entries []Entry) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range entries {
		row := []string{
			strconv.FormatInt(e.ID, 10),
			e.SessionID,
			e.Tool,
			strconv.Itoa(int(e.InputCount)),
			e.InputNames,
			strconv.FormatInt(e.InputBytes, 10),
			e.OutputName,
			strconv.FormatInt(e.OutputBytes, 10),
			e.OutputMimeType,
			strconv.Itoa(int(e.FileCount)),
			strconv.Itoa(int(e.CompressionRatio)),
			e.Format,
			e.RotationDescription,
			strconv.FormatBool(e.PasswordProtected),
			e.StartedAt.UTC().Format(time.RFC3339),
			strconv.FormatInt(e.DurationMillis, 10),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteJSON writes entries as an indented JSON array
func WriteJSON(w io.Writer, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(entries)
}

// WriteYAML writes entries as a YAML document with an export header
func WriteYAML(w io.Writer, entries []Entry) error {
	doc := struct {
		ExportedAt string  `yaml:"exported_at"`
		Entries    []Entry `yaml:"entries"`
	}{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Entries:    entries,
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return encoder.Close()
}
