// Package migration decodes authenticator export payloads and standard
// otpauth:// URIs into accounts.
package migration

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// URI scheme prefixes recognized by the decoder.
const (
	MigrationScheme = "otpauth-migration://"
	StandardScheme  = "otpauth://"
)

// dataParam carries the base64 payload in a migration URI.
const dataParam = "data"

var (
	// ErrMalformedURI is returned when a migration URI has no data parameter.
	ErrMalformedURI = errors.New("migration: malformed uri")

	// ErrDecode is returned when a payload or otpauth URI cannot be decoded.
	ErrDecode = errors.New("migration: decode failed")
)

// Resolve returns the base64 payload carried by input. Migration URIs have
// their data parameter extracted and percent-decoded; anything else is
// returned as-is, trimmed, on the assumption that it is already the
// encoded payload.
func Resolve(input string) (string, error) {
	s := strings.TrimSpace(input)
	if !hasPrefixFold(s, MigrationScheme) {
		return s, nil
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedURI, err)
	}

	data, ok, err := queryValue(u.RawQuery, dataParam)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedURI, err)
	}
	if !ok || data == "" {
		return "", fmt.Errorf("%w: no %q parameter", ErrMalformedURI, dataParam)
	}

	return data, nil
}

// queryValue finds the first value for key in a raw query string. Values
// are path-unescaped so a literal '+' in base64 text survives.
func queryValue(rawQuery, key string) (string, bool, error) {
	for _, pair := range strings.Split(rawQuery, "&") {
		k, v, _ := strings.Cut(pair, "=")
		if k != key {
			continue
		}
		val, err := url.PathUnescape(v)
		if err != nil {
			return "", false, fmt.Errorf("unescape %s: %w", key, err)
		}
		return val, true, nil
	}
	return "", false, nil
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
