package account

import (
	"strconv"
	"strings"
)

// URI builds the standards-based otpauth:// URI for the account. The label
// is "issuer:name" with the colon left unescaped. Query parameters keep a
// fixed order so output is stable across runs.
func (a Account) URI() string {
	typ := a.Type
	if typ == "" {
		typ = DefaultType
	}
	alg := a.Algorithm
	if alg == "" {
		alg = DefaultAlgorithm
	}

	label := escapeLabel(a.Issuer + ":" + a.Name)

	params := [][2]string{
		{"secret", a.Secret},
		{"issuer", a.Issuer},
		{"algorithm", string(alg)},
		{"digits", strconv.Itoa(NormalizeDigits(a.Digits))},
	}
	if typ == HOTP {
		params = append(params, [2]string{"counter", strconv.FormatUint(a.Counter, 10)})
	} else {
		params = append(params, [2]string{"period", strconv.Itoa(Period)})
	}

	var b strings.Builder
	b.WriteString("otpauth://")
	b.WriteString(string(typ))
	b.WriteString("/")
	b.WriteString(label)
	for i, p := range params {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(p[0])
		b.WriteByte('=')
		b.WriteString(escapeValue(p[1]))
	}
	return b.String()
}

// escapeLabel percent-encodes the label, keeping ':' between issuer and
// name readable.
func escapeLabel(s string) string {
	return escape(s, ":")
}

// escapeValue percent-encodes a query value, leaving '/' intact.
func escapeValue(s string) string {
	return escape(s, "/")
}

// escape percent-encodes every byte of s outside the unreserved set and
// the extra safe characters.
func escape(s, safe string) string {
	const hex = "0123456789ABCDEF"

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) || strings.IndexByte(safe, c) >= 0 {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '_', c == '.', c == '~':
		return true
	}
	return false
}
