package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zotp/internal/export"
)

// exportModel picks a format and a target directory.
type exportModel struct {
	cursor   int
	dir      textinput.Model
	editing  bool // directory input has focus
	count    int
	flash    string
	flashErr bool
}

func newExportModel(dir string, count int) exportModel {
	ti := textinput.New()
	ti.CharLimit = 1024
	ti.Width = 50
	ti.Placeholder = "."
	ti.SetValue(dir)

	return exportModel{dir: ti, count: count}
}

func (m exportModel) Init() tea.Cmd {
	return nil
}

func (m exportModel) Update(msg tea.Msg) (exportModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case exportDoneMsg:
		if msg.err != nil {
			m.flash = "export: " + msg.err.Error()
			m.flashErr = true
			return m, nil
		}
		m.flashErr = false
		m.flash = fmt.Sprintf("wrote %d file(s) to %s", len(msg.files), msg.dir)
		if len(msg.files) == 1 {
			m.flash = "wrote " + filepath.Join(msg.dir, msg.files[0])
		}
		return m, nil

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	if m.editing {
		var cmd tea.Cmd
		m.dir, cmd = m.dir.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m exportModel) handleKey(msg tea.KeyMsg) (exportModel, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if msg.Type == tea.KeyEsc {
		return m, func() tea.Msg { return navigateMsg{view: viewAccounts} }
	}

	if key.Matches(msg, zstyle.KeyTab) || msg.Type == tea.KeyShiftTab {
		m.editing = !m.editing
		if m.editing {
			return m, m.dir.Focus()
		}
		m.dir.Blur()
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyEnter) {
		return m.submit()
	}

	if m.editing {
		var cmd tea.Cmd
		m.dir, cmd = m.dir.Update(msg)
		return m, cmd
	}

	if key.Matches(msg, zstyle.KeyUp) {
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyDown) {
		if m.cursor < len(export.Formats)-1 {
			m.cursor++
		}
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyQuit) {
		return m, tea.Quit
	}

	return m, nil
}

func (m exportModel) submit() (exportModel, tea.Cmd) {
	dir := strings.TrimSpace(m.dir.Value())
	if dir == "" {
		dir = "."
	}
	format := export.Formats[m.cursor]
	return m, func() tea.Msg {
		return exportRequestMsg{format: format, dir: dir}
	}
}

func (m exportModel) View() string {
	accentStyle := lipgloss.NewStyle().Foreground(accent).Bold(true)

	s := "\n  " + zstyle.Subtitle.Render(fmt.Sprintf("export %d account(s)", m.count)) + "\n\n"

	for i, f := range export.Formats {
		line := fmt.Sprintf("%-10s %s", f, zstyle.MutedText.Render(f.Describe()))
		if i == m.cursor {
			s += "  " + accentStyle.Render("▸") + " " + line + "\n"
		} else {
			s += "    " + line + "\n"
		}
	}

	s += "\n"
	label := zstyle.MutedText.Render(fmt.Sprintf("%-10s", "directory"))
	if m.editing {
		s += "  " + accentStyle.Render("▸") + " " + label + " " + m.dir.View() + "\n"
	} else {
		s += "    " + label + " " + m.dir.View() + "\n"
	}

	s += "\n"

	// always reserve a line for flash to prevent layout shift
	switch {
	case m.flash != "" && m.flashErr:
		s += "  " + zstyle.StatusErr.Render(m.flash) + "\n"
	case m.flash != "":
		s += "  " + zstyle.StatusOK.Render(m.flash) + "\n"
	default:
		s += "\n"
	}

	return s
}
