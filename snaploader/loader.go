// Package snaploader handles loading PPU snapshot files from various sources,
// including compressed archives (ZIP, 7z, gzip, tar.gz, RAR).
package snaploader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/user-none/egba/emu"
)

// Magic bytes for format detection
var (
	magicSnapshot = []byte("eGBAPPUState")
	magicZIP      = []byte{0x50, 0x4B, 0x03, 0x04}
	magicZIPEnd   = []byte{0x50, 0x4B, 0x05, 0x06} // empty zip
	magic7z       = []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}
	magicGzip     = []byte{0x1F, 0x8B}
	magicRAR      = []byte{0x52, 0x61, 0x72, 0x21} // "Rar!"
)

// SnapshotExt is the file extension of a raw snapshot.
const SnapshotExt = ".egbs"

// Maximum snapshot size (1MB safety limit)
const maxSnapshotSize = 1024 * 1024

// ErrNoSnapshotFile is returned when no snapshot is found in an archive
var ErrNoSnapshotFile = errors.New("no " + SnapshotExt + " file found in archive")

// ErrUnsupportedFormat is returned for unrecognized file formats
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrFileTooLarge is returned when extracted content exceeds size limit
var ErrFileTooLarge = errors.New("file exceeds maximum size limit")

// formatType represents the detected container format
type formatType int

const (
	formatUnknown formatType = iota
	formatRawSnapshot
	formatZIP
	format7z
	formatGzip
	formatRAR
)

func (f formatType) String() string {
	switch f {
	case formatRawSnapshot:
		return "raw"
	case formatZIP:
		return "zip"
	case format7z:
		return "7z"
	case formatGzip:
		return "gzip"
	case formatRAR:
		return "rar"
	}
	return "unknown"
}

// extractors pulls the first snapshot out of each container format and
// returns its data and file name.
var extractors = map[formatType]func(path string) ([]byte, string, error){
	formatRawSnapshot: readRaw,
	formatZIP:         extractFromZIP,
	format7z:          extractFrom7z,
	formatGzip:        extractFromGzip,
	formatRAR:         extractFromRAR,
}

// Snapshot is a verified PPU snapshot and where it came from.
type Snapshot struct {
	Data   []byte
	Name   string // file name of the snapshot itself, for display
	Source string // container format: raw, zip, 7z, gzip or rar
}

// LoadSnapshot loads a snapshot from a file path, extracting it from an
// archive when needed. The snapshot header and checksum are verified before
// it is returned, so Data can be handed straight to PPU.Deserialize.
func LoadSnapshot(path string) (*Snapshot, error) {
	format, err := detectFileFormat(path)
	if err != nil {
		return nil, err
	}

	extract, ok := extractors[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	data, name, err := extract(path)
	if err != nil {
		return nil, err
	}
	if err := emu.VerifyState(data); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return &Snapshot{Data: data, Name: name, Source: format.String()}, nil
}

// detectFileFormat sniffs the first bytes of path.
func detectFileFormat(path string) (formatType, error) {
	f, err := os.Open(path)
	if err != nil {
		return formatUnknown, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	header := make([]byte, 16)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return formatUnknown, fmt.Errorf("failed to read file header: %w", err)
	}
	return detectFormat(header[:n], path), nil
}

func readRaw(path string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	data, err := limitedRead(f)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read snapshot: %w", err)
	}
	return data, filepath.Base(path), nil
}

// detectFormat determines the file format based on magic bytes and extension
func detectFormat(header []byte, path string) formatType {
	switch {
	case bytes.HasPrefix(header, magicSnapshot):
		return formatRawSnapshot
	case bytes.HasPrefix(header, magicZIP), bytes.HasPrefix(header, magicZIPEnd):
		return formatZIP
	case bytes.HasPrefix(header, magicRAR):
		return formatRAR
	case bytes.HasPrefix(header, magic7z):
		return format7z
	case bytes.HasPrefix(header, magicGzip):
		return formatGzip
	}

	// Fall back to extension
	switch strings.ToLower(filepath.Ext(path)) {
	case SnapshotExt:
		return formatRawSnapshot
	case ".zip":
		return formatZIP
	case ".7z":
		return format7z
	case ".gz", ".tgz":
		return formatGzip
	case ".rar":
		return formatRAR
	}

	return formatUnknown
}

// isSnapshotFile checks if a filename has the snapshot extension (case-insensitive)
func isSnapshotFile(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), SnapshotExt)
}

// limitedRead reads from r up to maxSnapshotSize bytes, returning an error if exceeded
func limitedRead(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxSnapshotSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxSnapshotSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}
