package tui

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehigh-university-libraries/pdftools/internal/models"
	"github.com/lehigh-university-libraries/pdftools/internal/processing"
	"github.com/lehigh-university-libraries/pdftools/internal/session"
)

func newTestModel(t *testing.T, delay time.Duration) (Model, *processing.Service) {
	t.Helper()
	svc := processing.NewService(processing.NewSimulator(0, delay).WithSeed(3), nil)
	t.Cleanup(svc.Wait)
	return New(context.Background(), session.New("tui-test"), svc), svc
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "ctrl+d":
			msg = tea.KeyMsg{Type: tea.KeyCtrlD}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func writePDF(t *testing.T, dir, name string, size int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	data := append([]byte("%PDF-1.4\n"), make([]byte, size)...)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestToolMenuNavigation(t *testing.T) {
	m, _ := newTestModel(t, time.Millisecond)
	assert.Equal(t, models.StateIdle, m.Screen())
	assert.Contains(t, m.View(), "Merge PDFs")

	m = press(t, m, "j", "down", "k", "enter")
	assert.Equal(t, models.StateToolSelected, m.Screen())
	assert.Equal(t, models.ToolSplit, m.sess.Tool())

	m = press(t, m, "esc")
	assert.Equal(t, models.StateIdle, m.Screen())
	assert.Empty(t, m.sess.Tool())
}

func TestFileInputNotices(t *testing.T) {
	dir := t.TempDir()
	a := writePDF(t, dir, "a.pdf", 10)
	b := writePDF(t, dir, "b.pdf", 10)
	png := filepath.Join(dir, "image.png")
	require.NoError(t, os.WriteFile(png, []byte("\x89PNG\r\n\x1a\n0000"), 0644))

	m, _ := newTestModel(t, time.Millisecond)
	m = press(t, m, "j", "j", "enter") // compress
	require.Equal(t, models.ToolCompress, m.sess.Tool())

	m = press(t, m, a+" "+b, "enter")
	assert.Equal(t, "This tool only accepts one file at a time.", m.Notice())
	assert.Equal(t, models.StateToolSelected, m.Screen())

	m.input.Reset()
	m = press(t, m, "ctrl+d", png, "enter")
	assert.True(t, m.dropMode)
	assert.Equal(t, "Please drop PDF files only.", m.Notice())

	m.input.Reset()
	m = press(t, m, a, "enter")
	assert.Empty(t, m.Notice())
	assert.Equal(t, models.StateFilesStaged, m.Screen())
	assert.Contains(t, m.View(), "a.pdf")
}

func TestStagedListRemoveAndBack(t *testing.T) {
	dir := t.TempDir()
	a := writePDF(t, dir, "a.pdf", 10)
	b := writePDF(t, dir, "b.pdf", 20)

	m, _ := newTestModel(t, time.Millisecond)
	m = press(t, m, "enter") // merge
	m = press(t, m, a+" "+b, "enter")
	require.Equal(t, models.StateFilesStaged, m.Screen())
	require.Len(t, m.sess.Snapshot().StagedFiles, 2)

	m = press(t, m, "j", "x")
	files := m.sess.Snapshot().StagedFiles
	require.Len(t, files, 1)
	assert.Equal(t, "a.pdf", files[0].Name)
	assert.Equal(t, 0, m.fileCursor)

	m = press(t, m, "esc")
	assert.Equal(t, models.StateToolSelected, m.Screen())
	assert.Equal(t, models.StateFilesStaged, m.sess.State())

	m = press(t, m, "esc")
	assert.Equal(t, models.StateFilesStaged, m.Screen())

	m = press(t, m, "x")
	assert.Equal(t, models.StateToolSelected, m.Screen())
}

func TestProcessAndRestage(t *testing.T) {
	dir := t.TempDir()
	a := writePDF(t, dir, "report.pdf", 100)

	m, svc := newTestModel(t, time.Millisecond)
	m = press(t, m, "j", "j", "j", "j", "enter") // rotate
	m = press(t, m, a, "enter", "enter")

	svc.Wait()
	next, cmd := m.Update(pollMsg{})
	m = next.(Model)
	assert.Nil(t, cmd)
	assert.Equal(t, models.StateResultReady, m.Screen())

	view := m.View()
	assert.Contains(t, view, "report_rotated.pdf")
	assert.Contains(t, view, "Rotated 90° clockwise")

	m = press(t, m, "n")
	assert.Equal(t, models.StateToolSelected, m.Screen())
	assert.Equal(t, models.ToolRotate, m.sess.Tool())
	assert.Empty(t, m.sess.Snapshot().StagedFiles)
}

func TestCancelProcessing(t *testing.T) {
	dir := t.TempDir()
	a := writePDF(t, dir, "report.pdf", 100)

	m, svc := newTestModel(t, time.Hour)
	m = press(t, m, "j", "j", "j", "j", "j", "enter") // protect
	m = press(t, m, a, "enter", "enter")
	require.Equal(t, models.StateProcessing, m.Screen())
	assert.Contains(t, m.View(), "Processing 1 file")

	m = press(t, m, "esc")
	assert.Equal(t, "Processing cancelled.", m.Notice())

	svc.Wait()
	next, _ := m.Update(pollMsg{})
	m = next.(Model)
	assert.Equal(t, models.StateFilesStaged, m.Screen())
	assert.Len(t, m.sess.Snapshot().StagedFiles, 1)
}

func TestResultReset(t *testing.T) {
	dir := t.TempDir()
	a := writePDF(t, dir, "report.pdf", 100)

	m, svc := newTestModel(t, time.Millisecond)
	m = press(t, m, "j", "enter") // split
	m = press(t, m, a, "enter", "enter")
	svc.Wait()

	m = press(t, m, "r")
	assert.Equal(t, models.StateIdle, m.Screen())
	assert.Nil(t, m.sess.Snapshot().LastResult)
}
