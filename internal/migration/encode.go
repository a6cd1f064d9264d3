package migration

import (
	"encoding/base32"
	"encoding/base64"
	"fmt"
	"hash/crc32"
	"net/url"
	"strings"

	"github.com/zarlcorp/zotp/internal/account"
	"google.golang.org/protobuf/encoding/protowire"
)

const payloadVersion = 1

// Encode builds a single-batch migration URI holding every account, the
// inverse of DecodeURI for migration input.
func Encode(accounts []account.Account) (string, error) {
	var params []byte
	for _, a := range accounts {
		rec, err := encodeParameters(a)
		if err != nil {
			return "", fmt.Errorf("encode %s: %w", a.Label(), err)
		}
		params = protowire.AppendTag(params, fieldOTPParameters, protowire.BytesType)
		params = protowire.AppendBytes(params, rec)
	}

	b := params
	b = appendVarintField(b, fieldVersion, payloadVersion)
	b = appendVarintField(b, fieldBatchSize, 1)
	b = appendVarintField(b, fieldBatchIndex, 0)
	b = appendVarintField(b, fieldBatchID, uint64(crc32.ChecksumIEEE(params)&0x7fffffff))

	data := base64.StdEncoding.EncodeToString(b)
	return MigrationScheme + "offline?" + dataParam + "=" + url.QueryEscape(data), nil
}

func encodeParameters(a account.Account) ([]byte, error) {
	secret, err := decodeSecret(a.Secret)
	if err != nil {
		return nil, err
	}

	var b []byte
	b = protowire.AppendTag(b, paramSecret, protowire.BytesType)
	b = protowire.AppendBytes(b, secret)
	b = protowire.AppendTag(b, paramName, protowire.BytesType)
	b = protowire.AppendString(b, a.Name)
	b = protowire.AppendTag(b, paramIssuer, protowire.BytesType)
	b = protowire.AppendString(b, a.Issuer)
	b = appendVarintField(b, paramAlgorithm, reverse(algorithms, a.Algorithm, 1))
	b = appendVarintField(b, paramDigits, reverse(digitCounts, account.NormalizeDigits(a.Digits), 1))
	b = appendVarintField(b, paramType, reverse(otpTypes, a.Type, 2))
	if a.Type == account.HOTP {
		b = appendVarintField(b, paramCounter, a.Counter)
	}
	return b, nil
}

// decodeSecret turns base32 secret text back into raw bytes, tolerating
// lower case, spaces and missing padding.
func decodeSecret(s string) ([]byte, error) {
	clean := strings.ToUpper(strings.Join(strings.Fields(s), ""))
	clean = strings.TrimRight(clean, "=")
	if clean == "" {
		return nil, fmt.Errorf("empty secret")
	}
	b, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("secret: %w", err)
	}
	return b, nil
}

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

// reverse finds the lowest wire code mapping to v, skipping the
// unspecified code 0.
func reverse[V comparable](table map[uint64]V, v V, fallback uint64) uint64 {
	best := uint64(0)
	for code, tv := range table {
		if code == 0 || tv != v {
			continue
		}
		if best == 0 || code < best {
			best = code
		}
	}
	if best == 0 {
		return fallback
	}
	return best
}
