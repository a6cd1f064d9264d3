package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"regexp"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/zarlcorp/core/pkg/zfilesystem"
	"github.com/zarlcorp/zotp/internal/account"
	"github.com/zarlcorp/zotp/internal/migration"
)

// QRSize is the target edge length in pixels of a rendered code, before
// the quiet zone. Modules are whole pixels so the result may be smaller.
const QRSize = 256

// quietZone is the white border width in modules.
const quietZone = 4

// QRImage renders content as a QR code with a white quiet zone around it.
func QRImage(content string) (image.Image, error) {
	code, err := qr.Encode(content, qr.M, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}

	modules := code.Bounds().Dx()
	px := max(QRSize/modules, 1)
	edge := modules * px

	scaled, err := barcode.Scale(code, edge, edge)
	if err != nil {
		return nil, fmt.Errorf("scale qr: %w", err)
	}

	border := quietZone * px
	img := image.NewGray(image.Rect(0, 0, edge+2*border, edge+2*border))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(border, border, border+edge, border+edge), scaled, scaled.Bounds().Min, draw.Src)
	return img, nil
}

func qrPNG(content string) ([]byte, error) {
	img, err := QRImage(content)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// writeQRCodes writes one PNG per account holding its otpauth URI, named
// after the sanitized display label. Colliding names get a numeric suffix.
func writeQRCodes(fsys zfilesystem.ReadWriteFileFS, accounts []account.Account) ([]string, error) {
	used := make(map[string]bool)
	files := make([]string, 0, len(accounts))
	for _, a := range accounts {
		data, err := qrPNG(a.URI())
		if err != nil {
			return nil, fmt.Errorf("export qr %s: %w", a.Label(), err)
		}

		name := uniqueName(used, SanitizeFilename(a.Label()))
		if err := fsys.WriteFile(name, data, 0o600); err != nil {
			return nil, fmt.Errorf("export qr: write %s: %w", name, err)
		}
		files = append(files, name)
	}
	return files, nil
}

func uniqueName(used map[string]bool, base string) string {
	name := base + ".png"
	for i := 2; used[strings.ToLower(name)]; i++ {
		name = fmt.Sprintf("%s-%d.png", base, i)
	}
	used[strings.ToLower(name)] = true
	return name
}

// migrationPNG renders every account into a single migration QR code the
// vendor app can scan to re-import.
func migrationPNG(accounts []account.Account) ([]byte, error) {
	uri, err := migration.Encode(accounts)
	if err != nil {
		return nil, err
	}
	return qrPNG(uri)
}

var illegalFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// SanitizeFilename replaces characters that are illegal in file names with
// underscores and trims leading and trailing dots and spaces.
func SanitizeFilename(name string) string {
	name = illegalFilenameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, ". ")
	if name == "" {
		return "account"
	}
	return name
}
