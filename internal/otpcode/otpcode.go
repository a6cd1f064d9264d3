// Package otpcode derives HOTP (RFC 4226) and TOTP (RFC 6238) codes for
// decoded accounts.
package otpcode

import (
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
	"github.com/zarlcorp/zotp/internal/account"
)

// Placeholder is shown in place of a code that could not be computed.
const Placeholder = "------"

// Generate returns the current code for a, or Placeholder if the code
// cannot be computed.
func Generate(a account.Account, now time.Time) string {
	code, err := Compute(a, now)
	if err != nil {
		return Placeholder
	}
	return code
}

// Compute returns the code for a at now. For HOTP accounts now is ignored
// and the stored counter is used.
func Compute(a account.Account, now time.Time) (code string, err error) {
	defer func() {
		// the hash constructors panic on algorithms they do not know
		if r := recover(); r != nil {
			code, err = "", fmt.Errorf("otpcode: %v", r)
		}
	}()

	alg, err := algorithm(a.Algorithm)
	if err != nil {
		return "", err
	}

	code, err = hotp.GenerateCodeCustom(a.Secret, Counter(a, now), hotp.ValidateOpts{
		Digits:    otp.Digits(account.NormalizeDigits(a.Digits)),
		Algorithm: alg,
	})
	if err != nil {
		return "", fmt.Errorf("otpcode: %s: %w", a.Label(), err)
	}
	return code, nil
}

// Counter returns the moving factor: the stored counter for HOTP, the
// 30-second window index for TOTP.
func Counter(a account.Account, now time.Time) uint64 {
	if a.Type == account.HOTP {
		return a.Counter
	}
	sec := now.Unix()
	if sec < 0 {
		return 0
	}
	return uint64(sec) / account.Period
}

// Remaining returns the whole seconds left in the TOTP window containing
// now, from 30 down to 1.
func Remaining(now time.Time) int {
	return account.Period - int(now.Unix()%account.Period)
}

func algorithm(a account.Algorithm) (otp.Algorithm, error) {
	switch account.Algorithm(strings.ToUpper(string(a))) {
	case account.SHA1, "":
		return otp.AlgorithmSHA1, nil
	case account.SHA256:
		return otp.AlgorithmSHA256, nil
	case account.SHA512:
		return otp.AlgorithmSHA512, nil
	case account.MD5:
		return otp.AlgorithmMD5, nil
	}
	return 0, fmt.Errorf("otpcode: unsupported algorithm %q", a)
}
