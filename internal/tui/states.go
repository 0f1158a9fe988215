package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lehigh-university-libraries/pdftools/internal/format"
	"github.com/lehigh-university-libraries/pdftools/internal/models"
	"github.com/lehigh-university-libraries/pdftools/internal/session"
	"github.com/lehigh-university-libraries/pdftools/internal/staging"
)

// Tool menu
func (m Model) updateToolMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.tools)-1 {
			m.cursor++
		}
	case "enter", " ":
		if err := m.sess.SelectTool(m.tools[m.cursor].ID); err != nil {
			m.notice = session.Notice(err)
			return m, nil
		}
		m.notice = ""
		m.input.Reset()
		return m, m.input.Focus()
	}
	return m, nil
}

func (m Model) viewToolMenu() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("PDF Tools") + "\n")

	for i, tool := range m.tools {
		cursor := " "
		name := tool.Name
		if m.cursor == i {
			cursor = ">"
			name = selectedStyle.Render(name)
		}
		s.WriteString(cursor + " " + name + "\n")
		s.WriteString("   " + descriptionStyle.Render(tool.Description) + "\n")
	}

	s.WriteString(helpStyle.Render("↑/↓ to navigate • enter to select • q to quit"))
	return s.String()
}

// File input
func (m Model) updateFileInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+d":
		m.dropMode = !m.dropMode
		return m, nil
	case "esc":
		m.notice = ""
		if m.editing {
			m.editing = false
			m.input.Blur()
			return m, nil
		}
		m.sess.Reset()
		m.input.Blur()
		return m, nil
	case "enter":
		return m.stageInput()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) stageInput() (tea.Model, tea.Cmd) {
	files, err := staging.FromPaths(staging.SplitPaths(m.input.Value()))
	if err != nil {
		m.notice = err.Error()
		return m, nil
	}

	source := session.SourcePicker
	if m.dropMode {
		source = session.SourceDrop
	}
	if err := m.sess.StageFiles(files, source); err != nil {
		m.notice = session.Notice(err)
		return m, nil
	}

	m.notice = ""
	m.editing = false
	m.fileCursor = 0
	m.input.Reset()
	m.input.Blur()
	return m, nil
}

func (m Model) viewFileInput() string {
	var s strings.Builder
	tool, _ := m.selectedTool()
	s.WriteString(titleStyle.Render(tool.Name) + "\n")

	mode := "picker"
	if m.dropMode {
		mode = "drop (PDF only)"
	}
	prompt := "Enter the path of a PDF file"
	if tool.AcceptsMultipleFiles {
		prompt = "Enter one or more PDF paths, separated by spaces"
	}
	s.WriteString(prompt + "  " + badgeStyle.Render(mode) + "\n\n")
	s.WriteString(m.input.View() + "\n")

	s.WriteString(helpStyle.Render("enter to add files • ctrl+d to toggle drop mode • esc to go back"))
	return s.String()
}

// Staged list
func (m Model) updateStagedList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	files := m.sess.Snapshot().StagedFiles

	switch msg.String() {
	case "up", "k":
		if m.fileCursor > 0 {
			m.fileCursor--
		}
	case "down", "j":
		if m.fileCursor < len(files)-1 {
			m.fileCursor++
		}
	case "x", "delete":
		if err := m.sess.RemoveFile(m.fileCursor); err != nil {
			m.notice = session.Notice(err)
			return m, nil
		}
		m.notice = ""
		if m.fileCursor >= len(files)-1 && m.fileCursor > 0 {
			m.fileCursor--
		}
		if m.sess.State() == models.StateToolSelected {
			return m, m.input.Focus()
		}
	case "esc":
		m.notice = ""
		m.editing = true
		return m, m.input.Focus()
	case "enter":
		if _, err := m.service.Start(m.ctx, m.sess); err != nil {
			m.notice = session.Notice(err)
			return m, nil
		}
		m.notice = ""
		return m, tea.Batch(m.spinner.Tick, pollCmd())
	}
	return m, nil
}

func (m Model) viewStagedList() string {
	var s strings.Builder
	tool, _ := m.selectedTool()
	s.WriteString(titleStyle.Render(tool.Name) + "\n")

	for i, f := range m.sess.Snapshot().StagedFiles {
		cursor := " "
		name := f.Name
		if m.fileCursor == i {
			cursor = ">"
			name = selectedStyle.Render(name)
		}
		s.WriteString(fmt.Sprintf("%s %s  %s\n", cursor, name, descriptionStyle.Render(format.Size(f.Size))))
	}

	s.WriteString(helpStyle.Render("enter to process • x to remove • esc to change files"))
	return s.String()
}

// Processing
func (m Model) updateProcessing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" && m.service.Cancel(m.sess.ID()) {
		m.notice = "Processing cancelled."
	}
	return m, nil
}

func (m Model) viewProcessing() string {
	tool, _ := m.selectedTool()
	count := len(m.sess.Snapshot().StagedFiles)
	noun := "file"
	if count != 1 {
		noun = "files"
	}
	return titleStyle.Render(tool.Name) + "\n" +
		fmt.Sprintf("%s Processing %d %s...\n", m.spinner.View(), count, noun) +
		helpStyle.Render("esc to cancel")
}

// Result
func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "n":
		if err := m.sess.RestageForSameTool(); err != nil {
			m.notice = session.Notice(err)
			return m, nil
		}
		m.input.Reset()
		return m, m.input.Focus()
	case "r":
		m.sess.Reset()
		m.cursor = 0
	}
	return m, nil
}

func (m Model) viewResult() string {
	snap := m.sess.Snapshot()
	if snap.LastResult == nil {
		return ""
	}
	result := *snap.LastResult

	var s strings.Builder
	s.WriteString(successStyle.Render("Processing complete!") + "\n\n")
	s.WriteString(selectedStyle.Render(result.Name) + "\n")
	s.WriteString(format.Summary(result) + "\n")
	s.WriteString(helpStyle.Render("n to process another file • r to start over • q to quit"))
	return s.String()
}

func (m Model) selectedTool() (models.Tool, bool) {
	for _, t := range m.tools {
		if t.ID == m.sess.Tool() {
			return t, true
		}
	}
	return models.Tool{}, false
}
