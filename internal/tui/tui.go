package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/lehigh-university-libraries/pdftools/internal/processing"
	"github.com/lehigh-university-libraries/pdftools/internal/session"
)

// Run starts the TUI on a fresh session and blocks until the user quits or
// ctx is cancelled.
func Run(ctx context.Context, service *processing.Service) error {
	sess := session.New(uuid.NewString())
	m := New(ctx, sess, service)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()

	service.Cancel(sess.ID())
	service.Wait()

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
