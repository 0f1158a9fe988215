// Package history records completed operations and exports them.
package history

import (
	"encoding/json"
	"time"

	"github.com/lehigh-university-libraries/pdftools/internal/models"
)

// Entry is one completed operation. The struct is flat so it maps directly
// onto a SQLite row and a parquet record.
type Entry struct {
	ID                  int64     `json:"id" yaml:"id" parquet:"id"`
	SessionID           string    `json:"session_id" yaml:"session_id" parquet:"session_id"`
	Tool                string    `json:"tool" yaml:"tool" parquet:"tool"`
	InputCount          int32     `json:"input_count" yaml:"input_count" parquet:"input_count"`
	InputNames          string    `json:"input_names" yaml:"input_names" parquet:"input_names"`
	InputBytes          int64     `json:"input_bytes" yaml:"input_bytes" parquet:"input_bytes"`
	OutputName          string    `json:"output_name" yaml:"output_name" parquet:"output_name"`
	OutputBytes         int64     `json:"output_bytes" yaml:"output_bytes" parquet:"output_bytes"`
	OutputMimeType      string    `json:"output_mime_type" yaml:"output_mime_type" parquet:"output_mime_type"`
	FileCount           int32     `json:"file_count,omitempty" yaml:"file_count,omitempty" parquet:"file_count"`
	CompressionRatio    int32     `json:"compression_ratio,omitempty" yaml:"compression_ratio,omitempty" parquet:"compression_ratio"`
	Format              string    `json:"format,omitempty" yaml:"format,omitempty" parquet:"format"`
	RotationDescription string    `json:"rotation_description,omitempty" yaml:"rotation_description,omitempty" parquet:"rotation_description"`
	PasswordProtected   bool      `json:"password_protected,omitempty" yaml:"password_protected,omitempty" parquet:"password_protected"`
	StartedAt           time.Time `json:"started_at" yaml:"started_at" parquet:"started_at,timestamp(millisecond)"`
	DurationMillis      int64     `json:"duration_ms" yaml:"duration_ms" parquet:"duration_ms"`
}

// NewEntry flattens an operation and its result
func NewEntry(sessionID string, tool models.ToolID, files []models.StagedFile, result models.ProcessResult, started time.Time, elapsed time.Duration) Entry {
	names := make([]string, 0, len(files))
	var inputBytes int64
	for _, f := range files {
		names = append(names, f.Name)
		inputBytes += f.Size
	}

	// names are free text, so they are stored as a JSON array
	encoded, _ := json.Marshal(names)

	return Entry{
		SessionID:           sessionID,
		Tool:                string(tool),
		InputCount:          int32(len(files)),
		InputNames:          string(encoded),
		InputBytes:          inputBytes,
		OutputName:          result.Name,
		OutputBytes:         result.Size,
		OutputMimeType:      result.MimeType,
		FileCount:           int32(result.Count),
		CompressionRatio:    int32(result.CompressionRatio),
		Format:              string(result.Format),
		RotationDescription: result.RotationDescription,
		PasswordProtected:   result.IsPasswordProtected,
		StartedAt:           started.UTC().Truncate(time.Millisecond),
		DurationMillis:      elapsed.Milliseconds(),
	}
}

// Inputs decodes InputNames back into file names
func (e Entry) Inputs() []string {
	var names []string
	if e.InputNames == "" || json.Unmarshal([]byte(e.InputNames), &names) != nil {
		return nil
	}
	if len(names) == 0 {
		return nil
	}
	return names
}

// Result rebuilds the result descriptor stored in the entry
func (e Entry) Result() models.ProcessResult {
	return models.ProcessResult{
		Name:                e.OutputName,
		Size:                e.OutputBytes,
		MimeType:            e.OutputMimeType,
		Multiple:            e.OutputMimeType == models.MimeZip,
		Count:               int(e.FileCount),
		CompressionRatio:    int(e.CompressionRatio),
		Format:              models.ImageFormat(e.Format),
		RotationDescription: e.RotationDescription,
		IsPasswordProtected: e.PasswordProtected,
	}
}
