package snaploader

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// tar archives carry "ustar" at this offset of the first header block
const tarMagicOffset = 257

// extractFromGzip decompresses a gzip file. A tarball is searched for the
// first snapshot; any other payload is returned as the snapshot itself.
func extractFromGzip(path string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open gzip: %w", err)
	}
	defer gz.Close()

	// A tar stream may hold more than one snapshot worth of data, so only
	// the single-file case is bounded here
	data, err := io.ReadAll(io.LimitReader(gz, maxSnapshotSize*4+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decompress gzip: %w", err)
	}

	if isTar(data) {
		return extractFromTar(bytes.NewReader(data))
	}
	if len(data) > maxSnapshotSize {
		return nil, "", ErrFileTooLarge
	}

	name := gz.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return data, filepath.Base(name), nil
}

func isTar(data []byte) bool {
	return len(data) >= tarMagicOffset+5 && string(data[tarMagicOffset:tarMagicOffset+5]) == "ustar"
}

// extractFromTar extracts the first snapshot from a tar stream
func extractFromTar(r io.Reader) ([]byte, string, error) {
	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, "", fmt.Errorf("failed to read tar entry: %w", err)
		}

		if header.Typeflag != tar.TypeReg || !isSnapshotFile(header.Name) {
			continue
		}

		data, err := limitedRead(tr)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", header.Name, err)
		}
		return data, filepath.Base(header.Name), nil
	}

	return nil, "", ErrNoSnapshotFile
}
