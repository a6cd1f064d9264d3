// Package scan reads OTP QR codes from image files and turns them into
// decoded accounts.
package scan

import (
	"bytes"
	"image"
	"log/slog"
	"os"
	"strings"

	// decoders for every extension in ImageExtensions
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/h2non/filetype"
	"github.com/makiuchi-d/gozxing"
	multiqr "github.com/makiuchi-d/gozxing/multi/qrcode"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/zarlcorp/zotp/internal/migration"
)

// schemes a barcode must start with to be kept
var schemes = []string{migration.MigrationScheme, migration.StandardScheme}

// ScanFile returns the OTP URIs encoded in the barcodes of the image at
// path. Unreadable files, non-images and non-OTP barcodes yield nothing.
func ScanFile(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Debug("scan: read image", "path", path, "err", err)
		return nil
	}

	if !filetype.IsImage(data) {
		slog.Debug("scan: not an image", "path", path)
		return nil
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		slog.Debug("scan: decode image", "path", path, "err", err)
		return nil
	}

	uris := ScanImage(img)
	slog.Debug("scan: scanned image", "path", path, "format", format, "uris", len(uris))
	return uris
}

// ScanImage returns the OTP URIs encoded in the barcodes of img.
func ScanImage(img image.Image) []string {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		slog.Debug("scan: binarize image", "err", err)
		return nil
	}

	var uris []string
	for _, text := range readBarcodes(bmp) {
		if !isOTPURI(text) {
			slog.Debug("scan: skipping non-otp barcode", "len", len(text))
			continue
		}
		uris = append(uris, text)
	}
	return uris
}

// readBarcodes returns the text of every QR code found. The multi reader
// handles exports split across several codes in one picture; the single
// reader is a fallback for images it cannot segment.
func readBarcodes(bmp *gozxing.BinaryBitmap) []string {
	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}

	results, err := multiqr.NewQRCodeMultiReader().DecodeMultiple(bmp, hints)
	if err == nil && len(results) > 0 {
		texts := make([]string, 0, len(results))
		for _, r := range results {
			texts = append(texts, r.GetText())
		}
		return texts
	}

	r, err := qrcode.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		return nil
	}
	return []string{r.GetText()}
}

func isOTPURI(text string) bool {
	for _, s := range schemes {
		if strings.HasPrefix(text, s) {
			return true
		}
	}
	return false
}
