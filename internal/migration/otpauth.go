package migration

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pquerna/otp"
	"github.com/zarlcorp/zotp/internal/account"
)

// ParseOTPAuth decodes a single-account otpauth:// URI. Only a missing
// secret is an error; absent optional parameters take their defaults.
func ParseOTPAuth(uri string) (account.Account, error) {
	s := strings.TrimSpace(uri)
	if !hasPrefixFold(s, StandardScheme) {
		return account.Account{}, fmt.Errorf("%w: not an %s uri", ErrDecode, StandardScheme)
	}

	key, err := otp.NewKeyFromURL(s)
	if err != nil {
		return account.Account{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	// Key exposes the query but not the parsed path, so parse once more
	// for the label and the counter.
	u, err := url.Parse(s)
	if err != nil {
		return account.Account{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	q := u.Query()

	secret := key.Secret()
	if secret == "" {
		return account.Account{}, fmt.Errorf("%w: missing secret", ErrDecode)
	}

	labelIssuer, name := splitLabel(strings.TrimPrefix(u.Path, "/"))

	var counter uint64
	if c, err := strconv.ParseUint(q.Get("counter"), 10, 64); err == nil {
		counter = c
	}

	return account.Account{
		Name:      name,
		Issuer:    resolveIssuer(labelIssuer, q.Get("issuer")),
		Secret:    secret,
		Algorithm: account.ParseAlgorithm(key.Algorithm().String()),
		Digits:    account.NormalizeDigits(int(key.Digits())),
		Type:      account.ParseType(key.Type()),
		Counter:   counter,
	}, nil
}

// splitLabel splits "Issuer:name" on the first colon. A label without a
// colon is all name.
func splitLabel(label string) (issuer, name string) {
	before, after, found := strings.Cut(label, ":")
	if !found {
		return "", label
	}
	return before, strings.TrimLeft(after, " ")
}

// resolveIssuer prefers a non-empty issuer query parameter over the
// label prefix.
func resolveIssuer(fromLabel, fromQuery string) string {
	if fromQuery != "" {
		return fromQuery
	}
	return fromLabel
}

// DecodeURI decodes any supported input: an otpauth:// URI yields one
// account, a migration URI or raw base64 payload yields its records.
func DecodeURI(input string) ([]account.Account, error) {
	s := strings.TrimSpace(input)
	if hasPrefixFold(s, StandardScheme) {
		a, err := ParseOTPAuth(s)
		if err != nil {
			return nil, err
		}
		return []account.Account{a}, nil
	}

	encoded, err := Resolve(s)
	if err != nil {
		return nil, err
	}
	return Decode(encoded)
}
