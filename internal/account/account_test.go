package account

import (
	"strings"
	"testing"
)

func testAccount() Account {
	return Account{
		Name:      "user@example.com",
		Issuer:    "GitHub",
		Secret:    "JBSWY3DPEHPK3PXP",
		Algorithm: SHA1,
		Digits:    6,
		Type:      TOTP,
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		name   string
		issuer string
		acct   string
		want   string
	}{
		{"with issuer", "GitHub", "alice", "GitHub (alice)"},
		{"without issuer", "", "alice", "alice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Account{Name: tt.acct, Issuer: tt.issuer}
			if got := a.Label(); got != tt.want {
				t.Errorf("Label() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		in   string
		want Algorithm
	}{
		{"SHA1", SHA1},
		{"sha256", SHA256},
		{"Sha512", SHA512},
		{"md5", MD5},
		{"", SHA1},
		{"whirlpool", SHA1},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseAlgorithm(tt.in); got != tt.want {
				t.Errorf("ParseAlgorithm(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseType(t *testing.T) {
	if got := ParseType("HOTP"); got != HOTP {
		t.Errorf("ParseType(HOTP) = %s, want hotp", got)
	}
	if got := ParseType("totp"); got != TOTP {
		t.Errorf("ParseType(totp) = %s, want totp", got)
	}
	if got := ParseType("steam"); got != TOTP {
		t.Errorf("ParseType(steam) = %s, want totp", got)
	}
}

func TestNormalizeDigits(t *testing.T) {
	for d, want := range map[int]int{0: 6, 5: 6, 6: 6, 7: 7, 8: 8, 9: 6} {
		if got := NormalizeDigits(d); got != want {
			t.Errorf("NormalizeDigits(%d) = %d, want %d", d, got, want)
		}
	}
}

func TestURITOTP(t *testing.T) {
	got := testAccount().URI()
	want := "otpauth://totp/GitHub:user%40example.com?secret=JBSWY3DPEHPK3PXP&issuer=GitHub&algorithm=SHA1&digits=6&period=30"
	if got != want {
		t.Errorf("URI()\n got  %s\n want %s", got, want)
	}
}

func TestURIHOTP(t *testing.T) {
	a := testAccount()
	a.Type = HOTP
	a.Counter = 42
	a.Digits = 8
	a.Algorithm = SHA256

	got := a.URI()
	if !strings.HasPrefix(got, "otpauth://hotp/") {
		t.Errorf("URI() = %s, want hotp scheme", got)
	}
	if !strings.HasSuffix(got, "&algorithm=SHA256&digits=8&counter=42") {
		t.Errorf("URI() = %s, want counter and no period", got)
	}
	if strings.Contains(got, "period=") {
		t.Errorf("hotp URI should not carry a period: %s", got)
	}
}

func TestURIEscapesLabelAndValues(t *testing.T) {
	a := Account{
		Name:   "me & you",
		Issuer: "Acme/Corp",
		Secret: "ABC",
	}
	got := a.URI()

	if !strings.Contains(got, "/Acme%2FCorp:me%20%26%20you?") {
		t.Errorf("label not escaped: %s", got)
	}
	if !strings.Contains(got, "issuer=Acme/Corp&") {
		t.Errorf("issuer value should keep '/': %s", got)
	}
	if !strings.Contains(got, "algorithm=SHA1&digits=6&period=30") {
		t.Errorf("zero-value fields should render defaults: %s", got)
	}
}

func TestDedupe(t *testing.T) {
	first := Account{Issuer: "Svc", Name: "a", Secret: "FIRST"}
	dup := Account{Issuer: "Svc", Name: "a", Secret: "SECOND"}
	other := Account{Issuer: "Other", Name: "a", Secret: "THIRD"}
	noIssuer := Account{Name: "a", Secret: "FOURTH"}

	got := Dedupe([]Account{first, other, dup, noIssuer})

	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	wantSecrets := []string{"FIRST", "THIRD", "FOURTH"}
	for i, w := range wantSecrets {
		if got[i].Secret != w {
			t.Errorf("got[%d].Secret = %s, want %s", i, got[i].Secret, w)
		}
	}
}

func TestDedupeEmpty(t *testing.T) {
	if got := Dedupe(nil); got != nil {
		t.Errorf("Dedupe(nil) = %v, want nil", got)
	}
}
