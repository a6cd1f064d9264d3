// Package export writes decoded accounts in formats other authenticator
// and password apps can import.
package export

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/zarlcorp/core/pkg/zfilesystem"
	"github.com/zarlcorp/zotp/internal/account"
)

// Format names an export target.
type Format string

const (
	Bitwarden Format = "bitwarden"
	Apple     Format = "apple"
	Aegis     Format = "aegis"
	QR        Format = "qr"
	Migration Format = "migration"
)

// Formats lists every export target in menu order.
var Formats = []Format{Bitwarden, Apple, Aegis, QR, Migration}

var (
	ErrUnknownFormat = errors.New("export: unknown format")
	ErrNoAccounts    = errors.New("export: no accounts")
)

// Output file names for the single-file formats.
const (
	BitwardenFile = "bitwarden_export.csv"
	AppleFile     = "apple_passwords_export.csv"
	AegisFile     = "aegis_export.json"
	MigrationFile = "google_authenticator_migration.png"
)

// Describe returns a one-line description of f for menus and help text.
func (f Format) Describe() string {
	switch f {
	case Bitwarden:
		return "Bitwarden CSV"
	case Apple:
		return "Apple Passwords CSV"
	case Aegis:
		return "Aegis JSON vault (unencrypted)"
	case QR:
		return "one QR code PNG per account"
	case Migration:
		return "Google Authenticator migration QR"
	}
	return string(f)
}

// ParseFormat resolves a format name, ignoring case.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Write exports accounts in format to fsys and returns the names of the
// files written, relative to the root of fsys.
func Write(fsys zfilesystem.ReadWriteFileFS, format Format, accounts []account.Account) ([]string, error) {
	if len(accounts) == 0 {
		return nil, ErrNoAccounts
	}

	if format == QR {
		files, err := writeQRCodes(fsys, accounts)
		if err != nil {
			return nil, err
		}
		slog.Debug("export: wrote qr codes", "accounts", len(accounts), "files", len(files))
		return files, nil
	}

	var (
		name string
		data []byte
		err  error
	)
	switch format {
	case Bitwarden:
		name = BitwardenFile
		data, err = bitwardenCSV(accounts)
	case Apple:
		name = AppleFile
		data, err = appleCSV(accounts)
	case Aegis:
		name = AegisFile
		data, err = aegisJSON(accounts)
	case Migration:
		name = MigrationFile
		data, err = migrationPNG(accounts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", format, err)
	}

	if err := fsys.WriteFile(name, data, 0o600); err != nil {
		return nil, fmt.Errorf("export %s: write %s: %w", format, name, err)
	}

	slog.Debug("export: wrote accounts", "format", format, "accounts", len(accounts), "file", name)
	return []string{name}, nil
}
