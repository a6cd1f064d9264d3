package export

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/zarlcorp/zotp/internal/account"
)

// Aegis plaintext vault layout. Slots and params stay null in an
// unencrypted export.
type aegisVault struct {
	Version int         `json:"version"`
	Header  aegisHeader `json:"header"`
	DB      aegisDB     `json:"db"`
}

type aegisHeader struct {
	Slots  *json.RawMessage `json:"slots"`
	Params *json.RawMessage `json:"params"`
}

type aegisDB struct {
	Version int          `json:"version"`
	Entries []aegisEntry `json:"entries"`
}

type aegisEntry struct {
	Type   string    `json:"type"`
	UUID   string    `json:"uuid"`
	Name   string    `json:"name"`
	Issuer string    `json:"issuer"`
	Info   aegisInfo `json:"info"`
}

type aegisInfo struct {
	Secret  string  `json:"secret"`
	Algo    string  `json:"algo"`
	Digits  int     `json:"digits"`
	Period  int     `json:"period"`
	Counter *uint64 `json:"counter,omitempty"`
}

func aegisJSON(accounts []account.Account) ([]byte, error) {
	entries := make([]aegisEntry, 0, len(accounts))
	for _, a := range accounts {
		e := aegisEntry{
			Type:   string(otpType(a)),
			UUID:   uuid.NewString(),
			Name:   a.Name,
			Issuer: a.Issuer,
			Info: aegisInfo{
				Secret: a.Secret,
				Algo:   string(algorithm(a)),
				Digits: account.NormalizeDigits(a.Digits),
				Period: account.Period,
			},
		}
		if e.Type == string(account.HOTP) {
			counter := a.Counter
			e.Info.Counter = &counter
		}
		entries = append(entries, e)
	}

	vault := aegisVault{
		Version: 2,
		DB:      aegisDB{Version: 3, Entries: entries},
	}
	return json.MarshalIndent(vault, "", "  ")
}

func otpType(a account.Account) account.Type {
	if a.Type == "" {
		return account.DefaultType
	}
	return a.Type
}

func algorithm(a account.Account) account.Algorithm {
	if a.Algorithm == "" {
		return account.DefaultAlgorithm
	}
	return a.Algorithm
}
