// Package account defines the OTP account record shared by the decoder,
// the code generator, and the export writers.
package account

import "strings"

// Algorithm is the HMAC hash used to derive codes.
type Algorithm string

const (
	SHA1   Algorithm = "SHA1"
	SHA256 Algorithm = "SHA256"
	SHA512 Algorithm = "SHA512"
	MD5    Algorithm = "MD5"
)

// Type distinguishes time-based from counter-based accounts.
type Type string

const (
	TOTP Type = "totp"
	HOTP Type = "hotp"
)

// defaults applied when the source leaves a field unspecified
const (
	DefaultAlgorithm = SHA1
	DefaultDigits    = 6
	DefaultType      = TOTP

	// Period is the fixed TOTP step in seconds.
	Period = 30
)

// Account is a decoded OTP account. It is passed by value and never
// mutated after construction.
type Account struct {
	Name      string    `json:"name"`
	Issuer    string    `json:"issuer"`
	Secret    string    `json:"secret"` // base32, no padding
	Algorithm Algorithm `json:"algorithm"`
	Digits    int       `json:"digits"`
	Type      Type      `json:"type"`
	Counter   uint64    `json:"counter"`
}

// Key identifies an account for deduplication.
type Key struct {
	Issuer string
	Name   string
}

// Key returns the (issuer, name) identity of the account.
func (a Account) Key() Key {
	return Key{Issuer: a.Issuer, Name: a.Name}
}

// Label returns "Issuer (name)", or just the name when there is no issuer.
func (a Account) Label() string {
	if a.Issuer != "" {
		return a.Issuer + " (" + a.Name + ")"
	}
	return a.Name
}

// ParseAlgorithm maps a case-insensitive algorithm name to an Algorithm,
// falling back to SHA1 for empty or unknown names.
func ParseAlgorithm(s string) Algorithm {
	switch Algorithm(strings.ToUpper(strings.TrimSpace(s))) {
	case SHA256:
		return SHA256
	case SHA512:
		return SHA512
	case MD5:
		return MD5
	default:
		return DefaultAlgorithm
	}
}

// ParseType maps "totp"/"hotp" to a Type, falling back to TOTP.
func ParseType(s string) Type {
	if Type(strings.ToLower(strings.TrimSpace(s))) == HOTP {
		return HOTP
	}
	return DefaultType
}

// NormalizeDigits returns d when it is 6, 7 or 8 and the default otherwise.
func NormalizeDigits(d int) int {
	switch d {
	case 6, 7, 8:
		return d
	default:
		return DefaultDigits
	}
}
