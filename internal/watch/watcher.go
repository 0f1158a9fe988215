// Package watch turns a directory into a drop target: every matching file
// created there is staged as a drop and processed in a session of its own.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
	"github.com/google/uuid"

	"github.com/lehigh-university-libraries/pdftools/internal/models"
	"github.com/lehigh-university-libraries/pdftools/internal/processing"
	"github.com/lehigh-university-libraries/pdftools/internal/session"
	"github.com/lehigh-university-libraries/pdftools/internal/staging"
	"github.com/lehigh-university-libraries/pdftools/internal/tools"
)

const (
	DefaultPattern = "*.pdf"
	DefaultSettle  = 500 * time.Millisecond
)

// Outcome reports what happened to one dropped file
type Outcome struct {
	Path      string
	SessionID string
	Result    models.ProcessResult
	Err       error
}

type Options struct {
	Dir     string
	Tool    models.ToolID
	Pattern string
	// Settle is how long a file must stay quiet before it is picked up, so
	// copies in progress are not staged half written.
	Settle   time.Duration
	Service  *processing.Service
	OnResult func(Outcome)
}

// Watcher monitors a drop directory using fsnotify
type Watcher struct {
	dir      string
	tool     models.ToolID
	pattern  string
	matcher  glob.Glob
	settle   time.Duration
	service  *processing.Service
	onResult func(Outcome)

	wg sync.WaitGroup
}

// New validates the options. The directory is not watched until Run.
func New(opts Options) (*Watcher, error) {
	if _, err := tools.Lookup(opts.Tool); err != nil {
		return nil, err
	}
	if opts.Service == nil {
		return nil, errors.New("watch: a processing service is required")
	}

	info, err := os.Stat(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("error accessing directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", opts.Dir)
	}

	pattern := opts.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	matcher, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	settle := opts.Settle
	if settle <= 0 {
		settle = DefaultSettle
	}

	return &Watcher{
		dir:      opts.Dir,
		tool:     opts.Tool,
		pattern:  pattern,
		matcher:  matcher,
		settle:   settle,
		service:  opts.Service,
		onResult: opts.OnResult,
	}, nil
}

// Matches reports whether a file name is picked up by the watcher. Only the
// base name is matched.
func (w *Watcher) Matches(path string) bool {
	return w.matcher.Match(filepath.Base(path))
}

// Run watches the directory until ctx is cancelled, then waits for files
// already being processed.
func (w *Watcher) Run(ctx context.Context) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer fsWatcher.Close()

	if err := fsWatcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to add directory %s to watcher: %w", w.dir, err)
	}
	slog.Info("Watching directory", "dir", w.dir, "pattern", w.pattern, "tool", w.tool)

	return w.loop(ctx, fsWatcher.Events, fsWatcher.Errors)
}

// loop debounces events and hands settled files to handle. It returns when
// ctx is cancelled or either channel closes.
func (w *Watcher) loop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) error {
	pending := make(map[string]*time.Timer)
	seen := make(map[string]bool)
	ready := make(chan string, 16)

	// fired timers block on ready until loop returns, whatever the reason
	timerCtx, stopTimers := context.WithCancel(ctx)
	var timers sync.WaitGroup

	defer func() {
		stopTimers()
		for _, t := range pending {
			if t.Stop() {
				timers.Done()
			}
		}
		timers.Wait()
		w.wg.Wait()
		slog.Info("Watcher stopped", "dir", w.dir)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if seen[event.Name] || !w.Matches(event.Name) {
				continue
			}
			// restart the quiet period on every write
			if t, ok := pending[event.Name]; ok {
				if !t.Reset(w.settle) {
					timers.Add(1)
				}
				continue
			}
			name := event.Name
			timers.Add(1)
			pending[name] = time.AfterFunc(w.settle, func() {
				defer timers.Done()
				select {
				case ready <- name:
				case <-timerCtx.Done():
				}
			})

		case name := <-ready:
			delete(pending, name)
			if seen[name] {
				continue
			}
			seen[name] = true

			w.wg.Add(1)
			go func() {
				defer w.wg.Done()
				outcome := w.handle(ctx, name)
				if w.onResult != nil {
					w.onResult(outcome)
				}
			}()

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			slog.Error("fsnotify watcher error", "err", err)
		}
	}
}

// handle stages one dropped file in a fresh session and processes it
func (w *Watcher) handle(ctx context.Context, path string) Outcome {
	sess := session.New(uuid.NewString())
	outcome := Outcome{Path: path, SessionID: sess.ID()}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		outcome.Err = fmt.Errorf("%s is no longer a file", path)
		slog.Debug("Skipping dropped path", "path", path, "err", err)
		return outcome
	}

	if err := sess.SelectTool(w.tool); err != nil {
		outcome.Err = err
		return outcome
	}

	file, err := staging.FromPath(path)
	if err != nil {
		outcome.Err = err
		slog.Error("Unable to read dropped file", "path", path, "err", err)
		return outcome
	}

	if err := sess.StageFiles([]models.StagedFile{file}, session.SourceDrop); err != nil {
		outcome.Err = err
		slog.Warn(session.Notice(err), "path", path, "mime_type", file.MimeType)
		return outcome
	}

	result, err := w.service.Run(ctx, sess)
	if err != nil {
		outcome.Err = err
		return outcome
	}

	outcome.Result = result
	slog.Info("Dropped file processed", "path", path, "session_id", sess.ID(), "result", result.Name)
	return outcome
}
