package models

import "time"

// ToolID identifies one of the fixed document operations
type ToolID string

const (
	ToolMerge    ToolID = "merge"
	ToolSplit    ToolID = "split"
	ToolCompress ToolID = "compress"
	ToolConvert  ToolID = "convert"
	ToolRotate   ToolID = "rotate"
	ToolProtect  ToolID = "protect"
)

// MIME types used by staged files and results
const (
	MimePDF = "application/pdf"
	MimeZip = "application/zip"
)

// Tool describes an operation offered to the user
type Tool struct {
	ID                   ToolID `json:"id" yaml:"id"`
	Name                 string `json:"name" yaml:"name"`
	Description          string `json:"description" yaml:"description"`
	AcceptsMultipleFiles bool   `json:"accepts_multiple_files" yaml:"accepts_multiple_files"`
}

// StagedFile is an uploaded or selected file waiting to be processed.
// Contents are never read; only the metadata travels through the system.
type StagedFile struct {
	Name     string `json:"name" yaml:"name"`
	Size     int64  `json:"size" yaml:"size"`
	MimeType string `json:"mime_type" yaml:"mime_type"`
}

// ImageFormat is the raster format of converted pages
type ImageFormat string

const (
	FormatPNG ImageFormat = "PNG"
	FormatJPG ImageFormat = "JPG"
)

// ProcessResult describes the output of a completed operation
type ProcessResult struct {
	Name                string      `json:"name" yaml:"name"`
	Size                int64       `json:"size" yaml:"size"`
	MimeType            string      `json:"mime_type" yaml:"mime_type"`
	Multiple            bool        `json:"multiple,omitempty" yaml:"multiple,omitempty"`
	Count               int         `json:"count,omitempty" yaml:"count,omitempty"`
	CompressionRatio    int         `json:"compression_ratio,omitempty" yaml:"compression_ratio,omitempty"`
	Format              ImageFormat `json:"format,omitempty" yaml:"format,omitempty"`
	RotationDescription string      `json:"rotation_description,omitempty" yaml:"rotation_description,omitempty"`
	IsPasswordProtected bool        `json:"is_password_protected,omitempty" yaml:"is_password_protected,omitempty"`
}

// State is the derived position of a session in its lifecycle
type State string

const (
	StateIdle         State = "idle"
	StateToolSelected State = "tool_selected"
	StateFilesStaged  State = "files_staged"
	StateProcessing   State = "processing"
	StateResultReady  State = "result_ready"
)

// Snapshot is a point-in-time copy of a session, safe to serialize
type Snapshot struct {
	ID             string         `json:"id" yaml:"id"`
	State          State          `json:"state" yaml:"state"`
	SelectedToolID ToolID         `json:"selected_tool_id,omitempty" yaml:"selected_tool_id,omitempty"`
	StagedFiles    []StagedFile   `json:"staged_files" yaml:"staged_files"`
	IsProcessing   bool           `json:"is_processing" yaml:"is_processing"`
	LastResult     *ProcessResult `json:"last_result,omitempty" yaml:"last_result,omitempty"`
	CreatedAt      time.Time      `json:"created_at" yaml:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" yaml:"updated_at"`
}
