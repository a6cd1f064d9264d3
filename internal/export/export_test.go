package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"image/png"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zarlcorp/core/pkg/zfilesystem"
	"github.com/zarlcorp/zotp/internal/account"
	"github.com/zarlcorp/zotp/internal/migration"
	"github.com/zarlcorp/zotp/internal/scan"
)

var sampleAccounts = []account.Account{
	{
		Name:      "alice@example.com",
		Issuer:    "GitHub",
		Secret:    "JBSWY3DPEHPK3PXP",
		Algorithm: account.SHA1,
		Digits:    6,
		Type:      account.TOTP,
	},
	{
		Name:      "bob@example.com",
		Issuer:    "Google",
		Secret:    "NBSWY3DP",
		Algorithm: account.SHA256,
		Digits:    8,
		Type:      account.TOTP,
	},
}

func readCSV(t *testing.T, fsys *zfilesystem.MemFS, name string) [][]string {
	t.Helper()
	data, err := fsys.ReadFile(name)
	require.NoError(t, err)
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteBitwarden(t *testing.T) {
	fsys := zfilesystem.NewMemFS()

	files, err := Write(fsys, Bitwarden, sampleAccounts)
	require.NoError(t, err)
	assert.Equal(t, []string{BitwardenFile}, files)

	rows := readCSV(t, fsys, BitwardenFile)
	require.Len(t, rows, 3)
	assert.Equal(t, bitwardenHeader, rows[0])
	assert.Equal(t, "1", rows[1][2])
	assert.Equal(t, "GitHub (alice@example.com)", rows[1][3])
	assert.Equal(t, "alice@example.com", rows[1][8])
	assert.Equal(t, sampleAccounts[0].URI(), rows[1][10])
	assert.Contains(t, rows[2][10], "algorithm=SHA256&digits=8")
}

func TestWriteApple(t *testing.T) {
	fsys := zfilesystem.NewMemFS()

	_, err := Write(fsys, Apple, sampleAccounts)
	require.NoError(t, err)

	rows := readCSV(t, fsys, AppleFile)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Title", "URL", "Username", "Password", "Notes", "OTPAuth"}, rows[0])
	assert.Equal(t, "GitHub (alice@example.com)", rows[1][0])
	assert.Equal(t, "alice@example.com", rows[1][2])
	assert.Contains(t, rows[1][5], "otpauth://totp/")
	assert.Contains(t, rows[1][5], "period=30")
}

func TestWriteAppleNoIssuer(t *testing.T) {
	fsys := zfilesystem.NewMemFS()
	acct := account.Account{Name: "user@test.com", Secret: "ABCD"}

	_, err := Write(fsys, Apple, []account.Account{acct})
	require.NoError(t, err)

	rows := readCSV(t, fsys, AppleFile)
	assert.Equal(t, "user@test.com", rows[1][0])
}

func TestWriteAegis(t *testing.T) {
	fsys := zfilesystem.NewMemFS()
	accounts := append([]account.Account{}, sampleAccounts...)
	accounts = append(accounts, account.Account{
		Name: "counter", Issuer: "Svc", Secret: "ABCD", Type: account.HOTP, Counter: 5,
	})

	_, err := Write(fsys, Aegis, accounts)
	require.NoError(t, err)

	data, err := fsys.ReadFile(AegisFile)
	require.NoError(t, err)

	var vault map[string]any
	require.NoError(t, json.Unmarshal(data, &vault))

	assert.EqualValues(t, 2, vault["version"])
	header := vault["header"].(map[string]any)
	assert.Contains(t, header, "slots")
	assert.Nil(t, header["slots"])
	assert.Nil(t, header["params"])

	db := vault["db"].(map[string]any)
	assert.EqualValues(t, 3, db["version"])
	entries := db["entries"].([]any)
	require.Len(t, entries, 3)

	first := entries[0].(map[string]any)
	assert.Equal(t, "totp", first["type"])
	assert.Equal(t, "GitHub", first["issuer"])
	_, err = uuid.Parse(first["uuid"].(string))
	assert.NoError(t, err)
	info := first["info"].(map[string]any)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", info["secret"])
	assert.EqualValues(t, 30, info["period"])
	assert.NotContains(t, info, "counter")

	assert.Equal(t, "SHA256", entries[1].(map[string]any)["info"].(map[string]any)["algo"])

	hotp := entries[2].(map[string]any)
	assert.Equal(t, "hotp", hotp["type"])
	hotpInfo := hotp["info"].(map[string]any)
	assert.EqualValues(t, 5, hotpInfo["counter"])
	assert.Equal(t, "SHA1", hotpInfo["algo"])
	assert.EqualValues(t, 6, hotpInfo["digits"])

	assert.NotEqual(t, first["uuid"], hotp["uuid"])
}

func TestWriteQRCodes(t *testing.T) {
	fsys := zfilesystem.NewMemFS()

	files, err := Write(fsys, QR, sampleAccounts)
	require.NoError(t, err)
	assert.Equal(t, []string{"GitHub (alice@example.com).png", "Google (bob@example.com).png"}, files)

	for i, name := range files {
		data, err := fsys.ReadFile(name)
		require.NoError(t, err)
		img, err := png.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, []string{sampleAccounts[i].URI()}, scan.ScanImage(img))
	}
}

func TestWriteQRCodesCollidingNames(t *testing.T) {
	fsys := zfilesystem.NewMemFS()
	accounts := []account.Account{
		{Name: "a:b", Secret: "ABCD"},
		{Name: "a/b", Secret: "EFGH"},
	}

	files, err := Write(fsys, QR, accounts)
	require.NoError(t, err)
	assert.Equal(t, []string{"a_b.png", "a_b-2.png"}, files)
}

func TestWriteMigration(t *testing.T) {
	fsys := zfilesystem.NewMemFS()

	files, err := Write(fsys, Migration, sampleAccounts)
	require.NoError(t, err)
	assert.Equal(t, []string{MigrationFile}, files)

	data, err := fsys.ReadFile(MigrationFile)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	uris := scan.ScanImage(img)
	require.Len(t, uris, 1)

	decoded, err := migration.DecodeURI(uris[0])
	require.NoError(t, err)
	assert.Equal(t, sampleAccounts, decoded)
}

func TestWriteErrors(t *testing.T) {
	fsys := zfilesystem.NewMemFS()

	_, err := Write(fsys, Bitwarden, nil)
	assert.ErrorIs(t, err, ErrNoAccounts)

	_, err = Write(fsys, Format("keepass"), sampleAccounts)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"bitwarden", Bitwarden},
		{"Apple", Apple},
		{" AEGIS ", Aegis},
		{"qr", QR},
		{"migration", Migration},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseFormat("1password")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`a<b>c:d"e`, "a_b_c_d_e"},
		{"...hidden", "hidden"},
		{"Issuer (me@x.com)", "Issuer (me@x.com)"},
		{"tab\there", "tab_here"},
		{" . ", "account"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFilename(tt.in), tt.in)
	}
}

func TestQRImageHasQuietZone(t *testing.T) {
	img, err := QRImage("otpauth://totp/x?secret=ABCD")
	require.NoError(t, err)

	b := img.Bounds()
	require.GreaterOrEqual(t, b.Dx(), QRSize)
	r, g, bl, _ := img.At(b.Min.X, b.Min.Y).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, bl})
}
