// Package fsio reads and writes tracked file content. Only text files
// are versioned; encoding problems surface as READ_ERROR instead of
// silently becoming a new version.
package fsio

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/zeebo/xxh3"

	"github.com/ekm507/chroni/internal/errors"
)

// probeSize is how much of a file the text sniff inspects.
const probeSize = 1024

// ReadText reads a file's content as UTF-8 text.
// Fails with READ_ERROR when the file is missing, unreadable, binary,
// or not valid UTF-8.
func ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.NewReadError(path, err)
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return "", errors.NewReadError(path, fmt.Errorf("binary content"))
	}
	if !utf8.Valid(data) {
		return "", errors.NewReadError(path, fmt.Errorf("invalid UTF-8"))
	}
	return string(data), nil
}

// WriteText writes restored content back to the working file, creating
// parent directories as needed.
func WriteText(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewInternal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// HashText computes the xxh3-128 hex digest of content. Used as the
// cheap no-change test before any delta work.
func HashText(content string) string {
	return fmt.Sprintf("%x", xxh3.Hash128([]byte(content)).Bytes())
}

// IsTextFile sniffs whether path looks like a text file: a regular file
// whose first kilobyte has no NUL bytes and decodes as UTF-8.
func IsTextFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}

	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, probeSize)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		// Zero-length files read as text.
		return info.Size() == 0
	}
	chunk := buf[:n]

	if bytes.IndexByte(chunk, 0) >= 0 {
		return false
	}
	// The probe may cut a multi-byte rune at the end; trim up to three
	// trailing continuation bytes before validating.
	for i := 0; i < 3 && len(chunk) > 0 && !utf8.Valid(chunk); i++ {
		chunk = chunk[:len(chunk)-1]
	}
	return utf8.Valid(chunk)
}

// TextFilesInDir walks a directory recursively and returns all text
// files, skipping the excluded directory names.
func TextFilesInDir(root string, excludedDirs []string) ([]string, error) {
	excluded := make(map[string]bool, len(excludedDirs))
	for _, d := range excludedDirs {
		excluded[d] = true
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtree: skip, don't abort the walk.
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if excluded[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if IsTextFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	return files, nil
}

// ResolvePath canonicalizes a path to its absolute form; this is the
// stable identity key for a tracked item.
func ResolvePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.NewInvalidRequest(fmt.Sprintf("cannot resolve path %q: %v", path, err))
	}
	return filepath.Clean(abs), nil
}
