package tui

import (
	"github.com/lehigh-university-libraries/pdftools/internal/models"
)

// View implements tea.Model
func (m Model) View() string {
	var body string
	switch m.Screen() {
	case models.StateIdle:
		body = m.viewToolMenu()
	case models.StateToolSelected:
		body = m.viewFileInput()
	case models.StateFilesStaged:
		body = m.viewStagedList()
	case models.StateProcessing:
		body = m.viewProcessing()
	case models.StateResultReady:
		body = m.viewResult()
	}

	if m.notice != "" {
		body += "\n\n" + noticeStyle.Render(m.notice)
	}

	style := boxStyle
	if m.width > 4 {
		style = style.Width(m.width - 4)
	}
	return style.Render(body)
}
