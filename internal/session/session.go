// Package session implements the tool selection, upload and result
// lifecycle of a single user session.
//
// The lifecycle is Idle -> ToolSelected -> FilesStaged -> Processing ->
// ResultReady. The current state is derived from the session fields, so the
// invariants hold by construction: at most one staged file for single-file
// tools, and never a result while an operation is in flight.
package session

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/lehigh-university-libraries/pdftools/internal/models"
	"github.com/lehigh-university-libraries/pdftools/internal/tools"
)

// Source is how candidate files reached the session
type Source int

const (
	// SourcePicker is a file dialog; its accept filter already applied
	SourcePicker Source = iota
	// SourceDrop is drag-and-drop; candidates are filtered by MIME type
	SourceDrop
)

func (s Source) String() string {
	if s == SourceDrop {
		return "drop"
	}
	return "picker"
}

// ParseSource maps a form or flag value to a Source. Anything other than
// "drop" is treated as the picker.
func ParseSource(v string) Source {
	if strings.EqualFold(strings.TrimSpace(v), "drop") {
		return SourceDrop
	}
	return SourcePicker
}

// Operation is one in-flight processing run
type Operation struct {
	ID    uint64
	Tool  models.ToolID
	Files []models.StagedFile
}

// Session owns the mutable state of one user. All methods are safe for
// concurrent use.
type Session struct {
	mu sync.Mutex

	id         string
	tool       models.ToolID
	files      []models.StagedFile
	processing bool
	opID       uint64
	lastOpID   uint64
	result     *models.ProcessResult
	createdAt  time.Time
	updatedAt  time.Time

	now func() time.Time
}

// New returns an Idle session
func New(id string) *Session {
	return newWithClock(id, time.Now)
}

func newWithClock(id string, now func() time.Time) *Session {
	t := now()
	return &Session{
		id:        id,
		createdAt: t,
		updatedAt: t,
		now:       now,
	}
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// State returns the current lifecycle state
func (s *Session) State() models.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state()
}

func (s *Session) state() models.State {
	switch {
	case s.processing:
		return models.StateProcessing
	case s.result != nil:
		return models.StateResultReady
	case s.tool == "":
		return models.StateIdle
	case len(s.files) > 0:
		return models.StateFilesStaged
	default:
		return models.StateToolSelected
	}
}

// Tool returns the selected tool id, or "" when none is selected
func (s *Session) Tool() models.ToolID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tool
}

// UpdatedAt reports the time of the last state change
func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// SelectTool picks a tool and clears any staged files and result
func (s *Session) SelectTool(id models.ToolID) error {
	tool, err := tools.Lookup(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.processing {
		return ErrAlreadyProcessing
	}
	s.tool = tool.ID
	s.files = nil
	s.result = nil
	s.touch()
	return nil
}

// StageFiles replaces the staged files. Drops keep only PDF-typed
// candidates. A candidate without a name or with a negative size rejects
// the whole batch. On error the session is left unchanged.
func (s *Session) StageFiles(candidates []models.StagedFile, source Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.processing {
		return ErrAlreadyProcessing
	}
	if s.tool == "" {
		return ErrNoToolSelected
	}

	accepted := make([]models.StagedFile, 0, len(candidates))
	for i, f := range candidates {
		if strings.TrimSpace(f.Name) == "" {
			return fmt.Errorf("%w: file %d has no name", ErrInvalidFile, i)
		}
		if f.Size < 0 {
			return fmt.Errorf("%w: %s has negative size %d", ErrInvalidFile, f.Name, f.Size)
		}
		if source == SourceDrop && f.MimeType != models.MimePDF {
			continue
		}
		accepted = append(accepted, f)
	}
	if len(accepted) == 0 {
		return ErrNoValidFiles
	}

	tool, err := tools.Lookup(s.tool)
	if err != nil {
		return err
	}
	if !tool.AcceptsMultipleFiles && len(accepted) > 1 {
		return fmt.Errorf("%w: %s accepts one file, got %d", ErrTooManyFiles, tool.ID, len(accepted))
	}

	s.files = accepted
	s.result = nil
	s.touch()
	return nil
}

// RemoveFile drops the staged file at index
func (s *Session) RemoveFile(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state() != models.StateFilesStaged {
		return fmt.Errorf("%w: remove file from %s", ErrInvalidTransition, s.state())
	}
	if index < 0 || index >= len(s.files) {
		return fmt.Errorf("%w: %d", ErrFileIndex, index)
	}

	files := make([]models.StagedFile, 0, len(s.files)-1)
	files = append(files, s.files[:index]...)
	files = append(files, s.files[index+1:]...)
	if len(files) == 0 {
		files = nil
	}
	s.files = files
	s.touch()
	return nil
}

// StartProcessing marks the session as in flight and returns the operation
// to run. Only the returned operation may complete or abort it.
func (s *Session) StartProcessing() (Operation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state() {
	case models.StateProcessing:
		return Operation{}, ErrAlreadyProcessing
	case models.StateToolSelected:
		return Operation{}, ErrNoFilesStaged
	case models.StateFilesStaged:
	default:
		return Operation{}, fmt.Errorf("%w: start processing from %s", ErrInvalidTransition, s.state())
	}

	s.lastOpID++
	s.opID = s.lastOpID
	s.processing = true
	s.touch()

	return Operation{
		ID:    s.opID,
		Tool:  s.tool,
		Files: append([]models.StagedFile(nil), s.files...),
	}, nil
}

// CompleteProcessing stores the result of the current operation
func (s *Session) CompleteProcessing(opID uint64, result models.ProcessResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOperation(opID); err != nil {
		return err
	}
	s.processing = false
	s.opID = 0
	s.result = &result
	s.touch()
	return nil
}

// AbortProcessing returns the current operation to FilesStaged, keeping the
// staged files. Used for cancellation and engine failures.
func (s *Session) AbortProcessing(opID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOperation(opID); err != nil {
		return err
	}
	s.processing = false
	s.opID = 0
	s.touch()
	return nil
}

func (s *Session) checkOperation(opID uint64) error {
	if !s.processing || opID == 0 || opID != s.opID {
		return fmt.Errorf("%w: operation %d", ErrStaleOperation, opID)
	}
	return nil
}

// Reset returns the session to Idle. An in-flight operation is invalidated
// and its completion will be rejected as stale.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tool = ""
	s.files = nil
	s.processing = false
	s.opID = 0
	s.result = nil
	s.touch()
}

// RestageForSameTool clears files and result but keeps the selected tool
func (s *Session) RestageForSameTool() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state() != models.StateResultReady {
		return fmt.Errorf("%w: restage from %s", ErrInvalidTransition, s.state())
	}
	s.files = nil
	s.result = nil
	s.touch()
	return nil
}

// Snapshot returns a deep copy of the session
func (s *Session) Snapshot() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := models.Snapshot{
		ID:             s.id,
		State:          s.state(),
		SelectedToolID: s.tool,
		StagedFiles:    append([]models.StagedFile{}, s.files...),
		IsProcessing:   s.processing,
		CreatedAt:      s.createdAt,
		UpdatedAt:      s.updatedAt,
	}
	if s.result != nil {
		r := *s.result
		snap.LastResult = &r
	}
	return snap
}

func (s *Session) touch() {
	s.updatedAt = s.now()
}
