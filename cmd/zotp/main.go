package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zapp"
	"github.com/zarlcorp/zotp/internal/cli"
	"github.com/zarlcorp/zotp/internal/config"
	"github.com/zarlcorp/zotp/internal/tui"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "zotp: config: %v\n", err)
		os.Exit(1)
	}

	interactive := len(os.Args) < 2
	closeLog, err := setupLogging(cfg, interactive)
	if err != nil {
		fmt.Fprintf(os.Stderr, "zotp: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	app := zapp.New(zapp.WithName("zotp"))

	ctx, cancel := zapp.SignalContext(context.Background())
	defer cancel()

	if !interactive {
		code := runCLI(ctx, cfg, os.Args[1], os.Args[2:])
		_ = app.Close()
		if code != 0 {
			closeLog()
			os.Exit(code)
		}
		return
	}

	if err := runTUI(cfg); err != nil {
		slog.Error("tui", "err", err)
		_ = app.Close()
		closeLog()
		os.Exit(1)
	}

	if err := app.Close(); err != nil {
		slog.Error("shutdown", "err", err)
		closeLog()
		os.Exit(1)
	}
}

// setupLogging installs the default slog handler. The TUI owns the
// terminal, so without a log file its logs are discarded.
func setupLogging(cfg *config.Config, interactive bool) (func(), error) {
	var w io.Writer = os.Stderr
	closeFn := func() {}

	switch {
	case cfg.LogFile != "":
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	case interactive:
		w = io.Discard
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.LogLevel})))
	return closeFn, nil
}

func runCLI(ctx context.Context, cfg *config.Config, cmd string, args []string) int {
	env := cli.Env{
		Out:       os.Stdout,
		ExportDir: cfg.ExportDir,
		Workers:   cfg.ScanWorkers,
	}

	var err error
	switch cmd {
	case "version":
		fmt.Printf("zotp %s\n", version)
	case "decode":
		err = cli.CmdDecode(env, args)
	case "extract":
		err = cli.CmdExtract(ctx, env, args)
	case "codes":
		err = cli.CmdCodes(ctx, env, args)
	case "export":
		err = cli.CmdExport(ctx, env, args)
	default:
		fmt.Fprintf(os.Stderr, "zotp: unknown command %q\n", cmd)
		return 1
	}

	if err != nil {
		if errors.Is(err, cli.ErrUsage) {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		slog.Debug("command failed", "cmd", cmd, "err", err)
		fmt.Fprintf(os.Stderr, "zotp: %v\n", err)
		return 1
	}
	return 0
}

func runTUI(cfg *config.Config) error {
	m := tui.New(version, tui.Options{
		ExportDir: cfg.ExportDir,
		Workers:   cfg.ScanWorkers,
	})
	p := tea.NewProgram(m)
	_, err := p.Run()
	return err
}
