package migration

import (
	"encoding/base32"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/zarlcorp/core/pkg/zcrypto"
	"github.com/zarlcorp/zotp/internal/account"
	"google.golang.org/protobuf/encoding/protowire"
)

// MigrationPayload field numbers.
const (
	fieldOTPParameters protowire.Number = 1
	fieldVersion       protowire.Number = 2
	fieldBatchSize     protowire.Number = 3
	fieldBatchIndex    protowire.Number = 4
	fieldBatchID       protowire.Number = 5
)

// OtpParameters field numbers.
const (
	paramSecret    protowire.Number = 1
	paramName      protowire.Number = 2
	paramIssuer    protowire.Number = 3
	paramAlgorithm protowire.Number = 4
	paramDigits    protowire.Number = 5
	paramType      protowire.Number = 6
	paramCounter   protowire.Number = 7
)

// enum tables; codes not listed resolve to the account defaults
var (
	algorithms = map[uint64]account.Algorithm{
		0: account.SHA1, // unspecified
		1: account.SHA1,
		2: account.SHA256,
		3: account.SHA512,
		4: account.MD5,
	}

	digitCounts = map[uint64]int{
		0: 6, // unspecified
		1: 6,
		2: 8,
		3: 7,
	}

	otpTypes = map[uint64]account.Type{
		0: account.TOTP, // unspecified
		1: account.HOTP,
		2: account.TOTP,
	}
)

// secretEncoding is the canonical secret text form: base32 without padding.
var secretEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Batch describes where a payload sits in a multi-QR export.
type Batch struct {
	Version int32 `json:"version"`
	Size    int32 `json:"batch_size"`
	Index   int32 `json:"batch_index"`
	ID      int32 `json:"batch_id"`
}

// Payload is a fully decoded migration payload.
type Payload struct {
	Accounts []account.Account `json:"accounts"`
	Batch    Batch             `json:"batch"`
}

// Decode parses a base64 migration payload into accounts in wire order.
func Decode(encoded string) ([]account.Account, error) {
	p, err := DecodePayload(encoded)
	if err != nil {
		return nil, err
	}
	return p.Accounts, nil
}

// DecodePayload parses a base64 migration payload, keeping batch metadata.
func DecodePayload(encoded string) (Payload, error) {
	raw, err := decodeBase64(encoded)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: base64: %v", ErrDecode, err)
	}
	defer zcrypto.Erase(raw)

	p, err := parsePayload(raw)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	slog.Debug("decoded migration payload",
		"accounts", len(p.Accounts),
		"batch_index", p.Batch.Index,
		"batch_size", p.Batch.Size,
	)
	return p, nil
}

// decodeBase64 accepts standard and URL-safe alphabets, padded or not.
func decodeBase64(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")

	var firstErr error
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		b, err := enc.DecodeString(s)
		if err == nil {
			return b, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}

func parsePayload(b []byte) (Payload, error) {
	var p Payload
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Payload{}, fmt.Errorf("payload tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldOTPParameters && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Payload{}, fmt.Errorf("otp parameters: %w", protowire.ParseError(n))
			}
			a, err := parseParameters(v)
			if err != nil {
				return Payload{}, fmt.Errorf("record %d: %w", len(p.Accounts), err)
			}
			p.Accounts = append(p.Accounts, a)
			b = b[n:]

		case num >= fieldVersion && num <= fieldBatchID && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Payload{}, fmt.Errorf("field %d: %w", num, protowire.ParseError(n))
			}
			setBatchField(&p.Batch, num, int32(v))
			b = b[n:]

		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Payload{}, fmt.Errorf("field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return p, nil
}

func setBatchField(batch *Batch, num protowire.Number, v int32) {
	switch num {
	case fieldVersion:
		batch.Version = v
	case fieldBatchSize:
		batch.Size = v
	case fieldBatchIndex:
		batch.Index = v
	case fieldBatchID:
		batch.ID = v
	}
}

func parseParameters(b []byte) (account.Account, error) {
	a := account.Account{
		Algorithm: account.DefaultAlgorithm,
		Digits:    account.DefaultDigits,
		Type:      account.DefaultType,
	}

	var secret []byte
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return account.Account{}, fmt.Errorf("tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case typ == protowire.BytesType && num >= paramSecret && num <= paramIssuer:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return account.Account{}, fmt.Errorf("field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]

			switch num {
			case paramSecret:
				secret = v
			case paramName:
				if !utf8.Valid(v) {
					return account.Account{}, fmt.Errorf("name is not valid utf-8")
				}
				a.Name = string(v)
			case paramIssuer:
				if !utf8.Valid(v) {
					return account.Account{}, fmt.Errorf("issuer is not valid utf-8")
				}
				a.Issuer = string(v)
			}

		case typ == protowire.VarintType && num >= paramAlgorithm && num <= paramCounter:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return account.Account{}, fmt.Errorf("field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]

			switch num {
			case paramAlgorithm:
				a.Algorithm = lookup(algorithms, v, account.DefaultAlgorithm)
			case paramDigits:
				a.Digits = lookup(digitCounts, v, account.DefaultDigits)
			case paramType:
				a.Type = lookup(otpTypes, v, account.DefaultType)
			case paramCounter:
				a.Counter = v
			}

		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return account.Account{}, fmt.Errorf("field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}

	if len(secret) == 0 {
		return account.Account{}, fmt.Errorf("empty secret")
	}
	a.Secret = secretEncoding.EncodeToString(secret)

	return a, nil
}

func lookup[V any](table map[uint64]V, code uint64, fallback V) V {
	if v, ok := table[code]; ok {
		return v
	}
	return fallback
}
