package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zotp/internal/account"
	"github.com/zarlcorp/zotp/internal/otpcode"
)

const barWidth = account.Period

// accountsModel shows the decoded accounts with live codes.
type accountsModel struct {
	accounts []account.Account
	codes    []string
	cursor   int
	flash    string
	now      func() time.Time
	copyFn   func(string) error
}

// tickMsg triggers a code refresh.
type tickMsg struct{}

func newAccountsModel(accounts []account.Account, now func() time.Time, copyFn func(string) error) accountsModel {
	m := accountsModel{accounts: accounts, now: now, copyFn: copyFn}
	m.refresh()
	return m
}

// refresh recomputes every code from the current time.
func (m *accountsModel) refresh() {
	t := m.now()
	m.codes = make([]string, len(m.accounts))
	for i, a := range m.accounts {
		m.codes[i] = otpcode.Generate(a, t)
	}
}

func (m accountsModel) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m accountsModel) Update(msg tea.Msg) (accountsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		m.refresh()
		return m, tick()

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	return m, nil
}

func (m accountsModel) handleKey(msg tea.KeyMsg) (accountsModel, tea.Cmd) {
	if key.Matches(msg, zstyle.KeyQuit) {
		return m, tea.Quit
	}

	if key.Matches(msg, zstyle.KeyBack) {
		return m, func() tea.Msg { return navigateMsg{view: viewLoad} }
	}

	if len(m.accounts) == 0 {
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyUp) {
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyDown) {
		if m.cursor < len(m.accounts)-1 {
			m.cursor++
		}
		return m, nil
	}

	switch msg.String() {
	case "c":
		code := otpcode.Generate(m.accounts[m.cursor], m.now())
		if code == otpcode.Placeholder {
			m.flash = "no code for this account"
			return m, clearFlashAfter()
		}
		return m.copyValue(code, "code copied")

	case "s":
		return m.copyValue(m.accounts[m.cursor].Secret, "secret copied")

	case "x":
		return m, func() tea.Msg { return navigateMsg{view: viewExport} }
	}

	return m, nil
}

func (m accountsModel) copyValue(text, done string) (accountsModel, tea.Cmd) {
	if err := m.copyFn(text); err != nil {
		m.flash = "copy: " + err.Error()
		return m, clearFlashAfter()
	}
	m.flash = done
	return m, clearFlashAfter()
}

func (m accountsModel) View() string {
	accentStyle := lipgloss.NewStyle().Foreground(accent).Bold(true)

	s := "\n"

	if len(m.accounts) == 0 {
		s += "  " + zstyle.MutedText.Render("no accounts") + "\n\n\n"
		return s
	}

	head := fmt.Sprintf("%-18s %-28s %-34s %s", "issuer", "account", "secret", "code")
	s += "    " + zstyle.MutedText.Render(head) + "\n"

	for i, a := range m.accounts {
		line := fmt.Sprintf("%-18s %-28s %-34s ",
			truncate(a.Issuer, 18),
			truncate(a.Name, 28),
			truncate(a.Secret, 34),
		)
		code := m.codes[i]
		if code == otpcode.Placeholder {
			line += zstyle.StatusErr.Render(code)
		} else {
			line += zstyle.Highlight.Render(code)
		}
		if a.Type == account.HOTP {
			line += " " + zstyle.MutedText.Render(fmt.Sprintf("hotp #%d", a.Counter))
		}

		if i == m.cursor {
			s += "  " + accentStyle.Render("▸") + " " + line + "\n"
		} else {
			s += "    " + line + "\n"
		}
	}

	s += "\n  " + countdown(otpcode.Remaining(m.now())) + "\n"

	s += "\n"

	// always reserve a line for flash to prevent layout shift
	if m.flash != "" {
		s += "  " + zstyle.StatusOK.Render(m.flash) + "\n"
	} else {
		s += "\n"
	}

	return s
}

// countdown renders the seconds left in the TOTP window as a bar.
func countdown(remaining int) string {
	bar := strings.Repeat("█", remaining) + strings.Repeat("░", barWidth-remaining)
	label := fmt.Sprintf("%2ds", remaining)
	if remaining <= 5 {
		return zstyle.StatusWarn.Render(bar) + " " + zstyle.StatusWarn.Render(label)
	}
	return zstyle.StatusOK.Render(bar) + " " + zstyle.MutedText.Render(label)
}
