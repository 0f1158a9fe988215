// Package tui is an interactive terminal client of a single session.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lehigh-university-libraries/pdftools/internal/models"
	"github.com/lehigh-university-libraries/pdftools/internal/processing"
	"github.com/lehigh-university-libraries/pdftools/internal/session"
	"github.com/lehigh-university-libraries/pdftools/internal/tools"
)

const pollInterval = 100 * time.Millisecond

// pollMsg asks the model to check whether processing has finished
type pollMsg struct{}

func pollCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg {
		return pollMsg{}
	})
}

// Model drives one session. The screen shown is derived from the session
// state, so the UI cannot drift from the state machine.
type Model struct {
	ctx     context.Context
	sess    *session.Session
	service *processing.Service

	tools      []models.Tool
	cursor     int
	fileCursor int

	input   textinput.Model
	spinner spinner.Model

	dropMode bool
	// editing shows the file input while files are already staged
	editing bool
	notice  string
	width   int
}

func New(ctx context.Context, sess *session.Session, service *processing.Service) Model {
	input := textinput.New()
	input.Placeholder = "report.pdf \"scans/page one.pdf\""
	input.Prompt = "› "
	input.CharLimit = 4096

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = selectedStyle

	return Model{
		ctx:     ctx,
		sess:    sess,
		service: service,
		tools:   tools.List(),
		input:   input,
		spinner: sp,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Screen is the state whose view is currently shown
func (m Model) Screen() models.State {
	state := m.sess.State()
	if state == models.StateFilesStaged && m.editing {
		return models.StateToolSelected
	}
	return state
}

// Notice returns the message shown under the current screen
func (m Model) Notice() string {
	return m.notice
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.service.Cancel(m.sess.ID())
			return m, tea.Quit
		}
		return m.handleKeyMessage(msg)
	case pollMsg:
		return m.handlePoll()
	case spinner.TickMsg:
		if m.sess.State() != models.StateProcessing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.Screen() == models.StateToolSelected {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKeyMessage(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Screen() {
	case models.StateIdle:
		return m.updateToolMenu(msg)
	case models.StateToolSelected:
		return m.updateFileInput(msg)
	case models.StateFilesStaged:
		return m.updateStagedList(msg)
	case models.StateProcessing:
		return m.updateProcessing(msg)
	case models.StateResultReady:
		return m.updateResult(msg)
	}
	return m, nil
}

// handlePoll stops polling once the operation is no longer running
func (m Model) handlePoll() (tea.Model, tea.Cmd) {
	switch m.sess.State() {
	case models.StateProcessing:
		return m, pollCmd()
	case models.StateResultReady:
		m.notice = ""
	case models.StateFilesStaged:
		if m.notice == "" {
			m.notice = "Processing did not complete. Your files are still staged."
		}
	}
	return m, nil
}
