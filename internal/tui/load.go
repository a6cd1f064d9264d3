package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zstyle"
)

type loadField int

const (
	loadPath loadField = iota
	loadURI
	loadFieldCount
)

var loadLabels = [loadFieldCount]string{
	"image path",
	"uri",
}

// loadModel asks for an image path or a pasted otpauth URI.
type loadModel struct {
	version string
	inputs  []textinput.Model
	focus   int
	loading bool
	errMsg  string
}

func newLoadModel(version string) loadModel {
	inputs := make([]textinput.Model, loadFieldCount)

	for i := range inputs {
		ti := textinput.New()
		ti.CharLimit = 4096
		ti.Width = 60
		inputs[i] = ti
	}

	inputs[loadPath].Placeholder = "screenshot.png or a folder of images"
	inputs[loadURI].Placeholder = "otpauth-migration://offline?data=..."

	inputs[0].Focus()

	return loadModel{version: version, inputs: inputs}
}

func (m loadModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m loadModel) Update(msg tea.Msg) (loadModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}

		if m.loading {
			return m, nil
		}

		switch {
		case key.Matches(msg, zstyle.KeyTab), msg.Type == tea.KeyShiftTab,
			msg.Type == tea.KeyDown, msg.Type == tea.KeyUp:
			return m.nextField(), nil
		}

		if key.Matches(msg, zstyle.KeyEnter) {
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m loadModel) submit() (loadModel, tea.Cmd) {
	path := strings.TrimSpace(m.inputs[loadPath].Value())
	uri := strings.TrimSpace(m.inputs[loadURI].Value())

	if path == "" && uri == "" {
		m.errMsg = "enter an image path or a uri"
		return m, nil
	}

	m.errMsg = ""
	return m, func() tea.Msg {
		return loadRequestMsg{path: path, uri: uri}
	}
}

// nextField toggles focus; with two fields forward and back coincide.
func (m loadModel) nextField() loadModel {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + 1) % int(loadFieldCount)
	m.inputs[m.focus].Focus()
	return m
}

func (m loadModel) View() string {
	indent := lipgloss.NewStyle().MarginLeft(2)
	logo := indent.Render(
		zstyle.StyledLogo(lipgloss.NewStyle().Foreground(accent)),
	)
	toolName := indent.Render(zstyle.MutedText.Render("zotp " + m.version))
	accentStyle := lipgloss.NewStyle().Foreground(accent).Bold(true)

	s := fmt.Sprintf("\n%s\n%s\n\n", logo, toolName)
	s += "  " + zstyle.Subtitle.Render("load google authenticator export") + "\n\n"

	for i, input := range m.inputs {
		label := zstyle.MutedText.Render(fmt.Sprintf("  %-12s", loadLabels[i]))
		if i == m.focus {
			s += accentStyle.Render("▸") + " " + label + input.View() + "\n"
		} else {
			s += "  " + label + input.View() + "\n"
		}
	}

	s += "\n  " + zstyle.MutedText.Render("a uri takes precedence over the path") + "\n"

	switch {
	case m.loading:
		s += "\n  " + zstyle.StatusWarn.Render("decoding...")
	case m.errMsg != "":
		s += "\n  " + zstyle.StatusErr.Render(m.errMsg)
	default:
		s += "\n"
	}

	s += "\n\n" + zstyle.RenderFooter(helpFor(viewLoad)) + "\n"
	return s
}
