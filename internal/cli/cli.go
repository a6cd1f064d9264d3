// Package cli implements zotp's command-line subcommands.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zarlcorp/core/pkg/zfilesystem"
	"github.com/zarlcorp/zotp/internal/account"
	"github.com/zarlcorp/zotp/internal/export"
	"github.com/zarlcorp/zotp/internal/migration"
	"github.com/zarlcorp/zotp/internal/otpcode"
	"github.com/zarlcorp/zotp/internal/scan"
	"golang.org/x/term"
)

// ErrUsage reports a malformed command line.
var ErrUsage = errors.New("usage")

// now is replaced in tests.
var now = time.Now

// Env carries what the subcommands need from the process.
type Env struct {
	Out       io.Writer
	ExportDir string
	Workers   int
}

// CmdDecode decodes a migration or otpauth URI and prints its accounts.
func CmdDecode(env Env, args []string) error {
	pos := positional(args)
	if len(pos) != 1 {
		return fmt.Errorf("%w: zotp decode <uri> [--json]", ErrUsage)
	}

	accounts, err := migration.DecodeURI(pos[0])
	if err != nil {
		return err
	}

	return printAccounts(env.Out, account.Dedupe(accounts), hasFlag(args, "--json"))
}

// CmdExtract scans an image or a directory of images and prints the
// accounts found.
func CmdExtract(ctx context.Context, env Env, args []string) error {
	pos := positional(args)
	if len(pos) != 1 {
		return fmt.Errorf("%w: zotp extract <path> [--json]", ErrUsage)
	}

	accounts, err := scan.Extract(ctx, pos[0], env.Workers)
	if err != nil {
		return err
	}

	return printAccounts(env.Out, accounts, hasFlag(args, "--json"))
}

// CmdCodes prints the current code of every account. With --watch and a
// terminal on stdout it redraws every second until ctx is done.
func CmdCodes(ctx context.Context, env Env, args []string) error {
	pos := positional(args)
	if len(pos) != 1 {
		return fmt.Errorf("%w: zotp codes <uri|path> [--watch]", ErrUsage)
	}

	accounts, err := loadAccounts(ctx, pos[0], env.Workers)
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		fmt.Fprintln(env.Out, "no accounts found")
		return nil
	}

	if !hasFlag(args, "--watch") || !isTerminal(env.Out) {
		printCodes(env.Out, accounts, now())
		return nil
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		// clear screen, cursor home
		fmt.Fprint(env.Out, "\033[H\033[2J")
		printCodes(env.Out, accounts, now())

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// CmdExport writes accounts from a URI or image path in the given format.
func CmdExport(ctx context.Context, env Env, args []string) error {
	pos := positional(args)
	if len(pos) < 2 || len(pos) > 3 {
		return fmt.Errorf("%w: zotp export <%s> <uri|path> [dir]", ErrUsage, formatList())
	}

	format, err := export.ParseFormat(pos[0])
	if err != nil {
		return err
	}

	dir := env.ExportDir
	if len(pos) == 3 {
		dir = pos[2]
	}

	accounts, err := loadAccounts(ctx, pos[1], env.Workers)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	fsys := zfilesystem.NewOSFileSystem(dir)
	files, err := export.Write(fsys, format, accounts)
	if err != nil {
		return err
	}

	for _, f := range files {
		fmt.Fprintln(env.Out, filepath.Join(dir, f))
	}
	return nil
}

// loadAccounts treats target as a URI when it has a scheme and as an image
// path otherwise.
func loadAccounts(ctx context.Context, target string, workers int) ([]account.Account, error) {
	if strings.Contains(target, "://") {
		accounts, err := migration.DecodeURI(target)
		if err != nil {
			return nil, err
		}
		return account.Dedupe(accounts), nil
	}
	return scan.Extract(ctx, target, workers)
}

func printAccounts(w io.Writer, accounts []account.Account, asJSON bool) error {
	if asJSON {
		if accounts == nil {
			accounts = []account.Account{}
		}
		return printJSON(w, accounts)
	}

	if len(accounts) == 0 {
		fmt.Fprintln(w, "no accounts found")
		return nil
	}

	for i, a := range accounts {
		if i > 0 {
			fmt.Fprintln(w)
		}
		printAccount(w, a)
	}
	return nil
}

func printAccount(w io.Writer, a account.Account) {
	fmt.Fprintf(w, "  issuer:    %s\n", a.Issuer)
	fmt.Fprintf(w, "  account:   %s\n", a.Name)
	fmt.Fprintf(w, "  secret:    %s\n", a.Secret)
	fmt.Fprintf(w, "  type:      %s\n", a.Type)
	fmt.Fprintf(w, "  algorithm: %s\n", a.Algorithm)
	fmt.Fprintf(w, "  digits:    %d\n", a.Digits)
	if a.Type == account.HOTP {
		fmt.Fprintf(w, "  counter:   %d\n", a.Counter)
	}
	fmt.Fprintf(w, "  uri:       %s\n", a.URI())
}

func printCodes(w io.Writer, accounts []account.Account, t time.Time) {
	for _, a := range accounts {
		fmt.Fprintf(w, "  %-20s %-30s %s\n",
			truncate(a.Issuer, 20),
			truncate(a.Name, 30),
			otpcode.Generate(a, t),
		)
	}
	fmt.Fprintf(w, "\n  %ds remaining\n", otpcode.Remaining(t))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func formatList() string {
	names := make([]string, len(export.Formats))
	for i, f := range export.Formats {
		names[i] = string(f)
	}
	return strings.Join(names, "|")
}

func positional(args []string) []string {
	var pos []string
	for _, a := range args {
		if !strings.HasPrefix(a, "--") {
			pos = append(pos, a)
		}
	}
	return pos
}

func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if strings.EqualFold(a, flag) {
			return true
		}
	}
	return false
}

func truncate(s string, max int) string {
	if len([]rune(s)) <= max {
		return s
	}
	return string([]rune(s)[:max-1]) + "…"
}
