package export

import (
	"bytes"
	"encoding/csv"

	"github.com/zarlcorp/zotp/internal/account"
)

var bitwardenHeader = []string{
	"folder", "favorite", "type", "name", "notes", "fields",
	"reprompt", "login_uri", "login_username", "login_password", "login_totp",
}

var appleHeader = []string{"Title", "URL", "Username", "Password", "Notes", "OTPAuth"}

// bitwardenCSV renders one login item (type 1) per account with the
// otpauth URI in login_totp.
func bitwardenCSV(accounts []account.Account) ([]byte, error) {
	rows := make([][]string, 0, len(accounts))
	for _, a := range accounts {
		rows = append(rows, []string{"", "", "1", a.Label(), "", "", "", "", a.Name, "", a.URI()})
	}
	return renderCSV(bitwardenHeader, rows)
}

func appleCSV(accounts []account.Account) ([]byte, error) {
	rows := make([][]string, 0, len(accounts))
	for _, a := range accounts {
		rows = append(rows, []string{a.Label(), "", a.Name, "", "", a.URI()})
	}
	return renderCSV(appleHeader, rows)
}

func renderCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
