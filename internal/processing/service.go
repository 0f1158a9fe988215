package processing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lehigh-university-libraries/pdftools/internal/history"
	"github.com/lehigh-university-libraries/pdftools/internal/models"
	"github.com/lehigh-university-libraries/pdftools/internal/session"
)

// Recorder persists completed operations
type Recorder interface {
	Record(ctx context.Context, entry history.Entry) error
}

type inflight struct {
	opID   uint64
	cancel context.CancelFunc
}

// Service runs operations against sessions, one at a time per session
type Service struct {
	processor Processor
	recorder  Recorder

	mu       sync.Mutex
	inflight map[string]inflight
	wg       sync.WaitGroup
}

// NewService wires a processor and an optional recorder
func NewService(processor Processor, recorder Recorder) *Service {
	return &Service{
		processor: processor,
		recorder:  recorder,
		inflight:  make(map[string]inflight),
	}
}

// Run processes the staged files of sess and blocks until the result is
// stored on the session. Cancelling ctx aborts the operation and leaves the
// session in FilesStaged.
func (s *Service) Run(ctx context.Context, sess *session.Session) (models.ProcessResult, error) {
	op, err := sess.StartProcessing()
	if err != nil {
		return models.ProcessResult{}, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.register(sess.ID(), op.ID, cancel)
	defer s.unregister(sess.ID(), op.ID)

	return s.execute(ctx, sess, op)
}

// Start begins processing in the background and returns once the session
// is in Processing. ctx bounds the operation's lifetime; it should outlive
// the caller, e.g. the server's base context rather than a request context.
func (s *Service) Start(ctx context.Context, sess *session.Session) (session.Operation, error) {
	op, err := sess.StartProcessing()
	if err != nil {
		return session.Operation{}, err
	}

	opCtx, cancel := context.WithCancel(ctx)
	s.register(sess.ID(), op.ID, cancel)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		defer s.unregister(sess.ID(), op.ID)
		_, _ = s.execute(opCtx, sess, op)
	}()

	return op, nil
}

// Cancel stops the in-flight operation of a session. It reports whether an
// operation was running.
func (s *Service) Cancel(sessionID string) bool {
	s.mu.Lock()
	f, ok := s.inflight[sessionID]
	s.mu.Unlock()
	if ok {
		f.cancel()
	}
	return ok
}

// Wait blocks until all background operations have finished
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) register(sessionID string, opID uint64, cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight[sessionID] = inflight{opID: opID, cancel: cancel}
}

func (s *Service) unregister(sessionID string, opID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.inflight[sessionID]; ok && f.opID == opID {
		delete(s.inflight, sessionID)
	}
}

func (s *Service) execute(ctx context.Context, sess *session.Session, op session.Operation) (models.ProcessResult, error) {
	started := time.Now()
	slog.Info("Processing started", "session_id", sess.ID(), "operation", op.ID, "tool", op.Tool, "files", len(op.Files))

	result, err := s.processor.Process(ctx, op.Tool, op.Files)
	if err != nil {
		if abortErr := sess.AbortProcessing(op.ID); abortErr != nil {
			slog.Debug("Operation already superseded", "session_id", sess.ID(), "operation", op.ID, "err", abortErr)
		}
		if errors.Is(err, ErrCancelled) {
			slog.Info("Processing cancelled", "session_id", sess.ID(), "operation", op.ID)
		} else {
			slog.Error("Processing failed", "session_id", sess.ID(), "operation", op.ID, "err", err)
		}
		return models.ProcessResult{}, err
	}

	if err := sess.CompleteProcessing(op.ID, result); err != nil {
		slog.Info("Discarding result of superseded operation", "session_id", sess.ID(), "operation", op.ID)
		return models.ProcessResult{}, fmt.Errorf("failed to store result: %w", err)
	}

	elapsed := time.Since(started)
	slog.Info("Processing complete", "session_id", sess.ID(), "operation", op.ID, "result", result.Name, "size", result.Size, "elapsed", elapsed)

	if s.recorder != nil {
		entry := history.NewEntry(sess.ID(), op.Tool, op.Files, result, started, elapsed)
		// The session already holds the result; a lost history row is logged, not surfaced.
		if err := s.recorder.Record(context.WithoutCancel(ctx), entry); err != nil {
			slog.Error("Unable to record history", "session_id", sess.ID(), "err", err)
		}
	}

	return result, nil
}
