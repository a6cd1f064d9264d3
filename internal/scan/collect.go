package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/zarlcorp/zotp/internal/account"
	"github.com/zarlcorp/zotp/internal/migration"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the number of images scanned concurrently.
const DefaultWorkers = 4

// ImageExtensions lists the file extensions Collect considers, lower case.
var ImageExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".gif", ".webp", ".tiff"}

// ErrPathNotFound is returned when the extraction target does not exist.
var ErrPathNotFound = errors.New("scan: path not found")

// IsImagePath reports whether path has a recognized image extension.
func IsImagePath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range ImageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Collect scans every image file directly inside dir and returns the
// distinct OTP URIs found. Files are visited in name order and the first
// occurrence of a URI fixes its position, however the scans interleave.
func Collect(ctx context.Context, dir string, workers int) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("collect %s: %w", dir, err)
	}

	// ReadDir sorts by name
	var paths []string
	for _, e := range entries {
		if !IsImagePath(e.Name()) {
			continue
		}
		p := filepath.Join(dir, e.Name())
		info, err := os.Stat(p)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		paths = append(paths, p)
	}

	if workers < 1 {
		workers = 1
	}

	results := make([][]string, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = ScanFile(p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("collect %s: %w", dir, err)
	}

	return mergeUnique(results), nil
}

// mergeUnique flattens per-file results in order, dropping repeats.
func mergeUnique(results [][]string) []string {
	seen := make(map[string]bool)
	var uris []string
	for _, r := range results {
		for _, uri := range r {
			if seen[uri] {
				continue
			}
			seen[uri] = true
			uris = append(uris, uri)
		}
	}
	return uris
}

// Extract scans path, a single image or a directory of images, decodes
// every OTP URI found and returns the accounts deduplicated by issuer and
// name.
func Extract(ctx context.Context, path string, workers int) ([]account.Account, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
		}
		return nil, fmt.Errorf("extract %s: %w", path, err)
	}

	var uris []string
	switch {
	case info.IsDir():
		uris, err = Collect(ctx, path, workers)
		if err != nil {
			return nil, err
		}
	case info.Mode().IsRegular():
		uris = ScanFile(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}

	var accounts []account.Account
	for _, uri := range uris {
		decoded, err := migration.DecodeURI(uri)
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", path, err)
		}
		accounts = append(accounts, decoded...)
	}

	return account.Dedupe(accounts), nil
}
