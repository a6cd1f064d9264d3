// Package tui implements the root Bubble Tea model for zotp.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zfilesystem"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zotp/internal/account"
	"github.com/zarlcorp/zotp/internal/export"
	"github.com/zarlcorp/zotp/internal/migration"
	"github.com/zarlcorp/zotp/internal/scan"
)

type viewID int

const (
	viewLoad viewID = iota
	viewAccounts
	viewExport
)

// accent is the zotp brand color.
var accent = lipgloss.Color("#5FD7AF")

var errNoAccounts = errors.New("no otp accounts found")

// Options configures the TUI.
type Options struct {
	ExportDir string
	Workers   int
	// Copy writes text to the clipboard. Nil uses the system clipboard.
	Copy func(string) error
	// Now returns the current time. Nil uses time.Now.
	Now func() time.Time
}

// Model is the root TUI model.
type Model struct {
	version string
	opts    Options

	accounts []account.Account
	source   string

	active       viewID
	load         loadModel
	accountsView accountsModel
	export       exportModel

	// terminal dimensions
	width  int
	height int
}

// navigateMsg tells the root model to switch views.
type navigateMsg struct {
	view viewID
}

// loadRequestMsg asks the root to decode accounts from a path or URI.
type loadRequestMsg struct {
	path string
	uri  string
}

// accountsLoadedMsg carries the result of a load.
type accountsLoadedMsg struct {
	accounts []account.Account
	source   string
	err      error
}

// exportRequestMsg asks the root to write the loaded accounts.
type exportRequestMsg struct {
	format export.Format
	dir    string
}

// exportDoneMsg reports the outcome of an export.
type exportDoneMsg struct {
	dir   string
	files []string
	err   error
}

// flashMsg clears a transient status line.
type flashMsg struct{}

// New creates the root TUI model.
func New(version string, opts Options) Model {
	if opts.Workers < 1 {
		opts.Workers = scan.DefaultWorkers
	}
	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}
	if opts.Copy == nil {
		opts.Copy = copyToClipboard
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return Model{
		version: version,
		opts:    opts,
		active:  viewLoad,
		load:    newLoadModel(version),
	}
}

func (m Model) Init() tea.Cmd {
	return m.load.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case navigateMsg:
		return m.navigate(msg.view)

	case loadRequestMsg:
		m.load.loading = true
		return m, loadCmd(msg, m.opts.Workers)

	case accountsLoadedMsg:
		return m.handleLoaded(msg)

	case exportRequestMsg:
		return m.handleExport(msg)
	}

	return m.updateActive(msg)
}

func (m Model) View() string {
	// load includes the logo, render directly
	if m.active == viewLoad {
		return m.load.View()
	}

	var content string
	switch m.active {
	case viewAccounts:
		content = m.accountsView.View()
	case viewExport:
		content = m.export.View()
	}

	header := renderHeader(viewTitle(m.active), m.source)
	sep := zstyle.RenderSeparator(m.width)
	footer := zstyle.RenderFooter(helpFor(m.active))

	return "\n" + header + "\n" + sep + "\n" + content + "\n" + footer + "\n"
}

func renderHeader(title, source string) string {
	name := lipgloss.NewStyle().Foreground(accent).Bold(true).Render("zotp")
	s := "  " + name + "  " + zstyle.Title.Render(title)
	if source != "" {
		s += "  " + zstyle.MutedText.Render(truncate(source, 48))
	}
	return s
}

// viewTitle returns the display title for each view.
func viewTitle(id viewID) string {
	switch id {
	case viewAccounts:
		return "Accounts"
	case viewExport:
		return "Export"
	}
	return ""
}

// helpFor returns keybinding pairs for each view's footer.
func helpFor(id viewID) []zstyle.HelpPair {
	switch id {
	case viewLoad:
		return []zstyle.HelpPair{
			{Key: "tab", Desc: "next"},
			{Key: "enter", Desc: "load"},
			{Key: "ctrl+c", Desc: "quit"},
		}
	case viewAccounts:
		return []zstyle.HelpPair{
			{Key: "j/k", Desc: "navigate"},
			{Key: "c", Desc: "copy code"},
			{Key: "s", Desc: "copy secret"},
			{Key: "x", Desc: "export"},
			{Key: "esc", Desc: "back"},
			{Key: "q", Desc: "quit"},
		}
	case viewExport:
		return []zstyle.HelpPair{
			{Key: "j/k", Desc: "format"},
			{Key: "tab", Desc: "directory"},
			{Key: "enter", Desc: "export"},
			{Key: "esc", Desc: "back"},
		}
	}
	return nil
}

func (m Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.active {
	case viewLoad:
		m.load, cmd = m.load.Update(msg)
	case viewAccounts:
		m.accountsView, cmd = m.accountsView.Update(msg)
	case viewExport:
		m.export, cmd = m.export.Update(msg)
	}

	return m, cmd
}

func (m Model) navigate(view viewID) (tea.Model, tea.Cmd) {
	switch view {
	case viewLoad:
		m.load = newLoadModel(m.version)
		m.active = viewLoad
		return m, tea.Batch(m.load.Init(), tea.ClearScreen)

	case viewAccounts:
		m.accountsView = newAccountsModel(m.accounts, m.opts.Now, m.opts.Copy)
		m.active = viewAccounts
		return m, tea.Batch(m.accountsView.Init(), tea.ClearScreen)

	case viewExport:
		m.export = newExportModel(m.opts.ExportDir, len(m.accounts))
		m.active = viewExport
		return m, tea.Batch(m.export.Init(), tea.ClearScreen)
	}

	return m, nil
}

func (m Model) handleLoaded(msg accountsLoadedMsg) (tea.Model, tea.Cmd) {
	m.load.loading = false
	if msg.err != nil {
		slog.Warn("tui: load", "source", msg.source, "err", msg.err)
		m.load.errMsg = msg.err.Error()
		return m, nil
	}

	m.accounts = msg.accounts
	m.source = msg.source
	return m.navigate(viewAccounts)
}

func (m Model) handleExport(msg exportRequestMsg) (tea.Model, tea.Cmd) {
	files, err := writeExport(msg.dir, msg.format, m.accounts)
	m.export, _ = m.export.Update(exportDoneMsg{dir: msg.dir, files: files, err: err})
	return m, clearFlashAfter()
}

func writeExport(dir string, format export.Format, accounts []account.Account) ([]string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	fsys := zfilesystem.NewOSFileSystem(dir)
	return export.Write(fsys, format, accounts)
}

// loadCmd decodes accounts off the UI goroutine. A URI wins over a path
// when both are given.
func loadCmd(req loadRequestMsg, workers int) tea.Cmd {
	return func() tea.Msg {
		uri := strings.TrimSpace(req.uri)
		path := strings.TrimSpace(req.path)

		var (
			accounts []account.Account
			source   string
			err      error
		)
		if uri != "" {
			source = "uri"
			accounts, err = migration.DecodeURI(uri)
			accounts = account.Dedupe(accounts)
		} else {
			source = path
			accounts, err = scan.Extract(context.Background(), path, workers)
		}
		if err == nil && len(accounts) == 0 {
			err = errNoAccounts
		}
		return accountsLoadedMsg{accounts: accounts, source: source, err: err}
	}
}

// Accounts returns the currently loaded accounts.
func (m Model) Accounts() []account.Account {
	return m.accounts
}

func clearFlashAfter() tea.Cmd {
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return flashMsg{}
	})
}

func truncate(s string, max int) string {
	if len([]rune(s)) <= max {
		return s
	}
	return string([]rune(s)[:max-1]) + "…"
}
