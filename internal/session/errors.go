package session

import (
	"errors"

	"github.com/lehigh-university-libraries/pdftools/internal/tools"
)

var (
	ErrInvalidToolID     = tools.ErrInvalidToolID
	ErrNoValidFiles      = errors.New("no valid files")
	ErrInvalidFile       = errors.New("invalid file")
	ErrTooManyFiles      = errors.New("too many files")
	ErrAlreadyProcessing = errors.New("already processing")
	ErrNoToolSelected    = errors.New("no tool selected")
	ErrNoFilesStaged     = errors.New("no files staged")
	ErrFileIndex         = errors.New("file index out of range")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrStaleOperation    = errors.New("stale operation")
)

// Notice returns the message shown to a user for a session error.
// Unknown errors fall back to err.Error().
func Notice(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTooManyFiles):
		return "This tool only accepts one file at a time."
	case errors.Is(err, ErrNoValidFiles):
		return "Please drop PDF files only."
	case errors.Is(err, ErrInvalidFile):
		return "Every file needs a name and a size of zero or more bytes."
	case errors.Is(err, ErrInvalidToolID):
		return "Unknown tool. Choose one of the listed tools."
	case errors.Is(err, ErrAlreadyProcessing):
		return "Files are already being processed. Please wait or cancel."
	case errors.Is(err, ErrNoToolSelected):
		return "Choose a tool before adding files."
	case errors.Is(err, ErrNoFilesStaged):
		return "Add at least one PDF file before processing."
	case errors.Is(err, ErrFileIndex):
		return "That file is not in the list."
	case errors.Is(err, ErrStaleOperation):
		return "That operation is no longer current."
	case errors.Is(err, ErrInvalidTransition):
		return "That action is not available right now."
	}
	return err.Error()
}

// Kind returns a stable snake_case code for an error, used in API responses
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidToolID):
		return "invalid_tool_id"
	case errors.Is(err, ErrNoValidFiles):
		return "no_valid_files"
	case errors.Is(err, ErrInvalidFile):
		return "invalid_file"
	case errors.Is(err, ErrTooManyFiles):
		return "too_many_files"
	case errors.Is(err, ErrAlreadyProcessing):
		return "already_processing"
	case errors.Is(err, ErrNoToolSelected):
		return "no_tool_selected"
	case errors.Is(err, ErrNoFilesStaged):
		return "no_files_staged"
	case errors.Is(err, ErrFileIndex):
		return "file_index"
	case errors.Is(err, ErrStaleOperation):
		return "stale_operation"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	}
	return "internal"
}
