package statestore

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// File permission constants.
const (
	// dirPermissions is the permission mode for the record directory.
	dirPermissions = 0750

	// filePermissions is the permission mode for record files. The records
	// are an operator interface, so group/world read is deliberate.
	filePermissions = 0644
)

// Slot is one durable text record holding a single token.
//
// A Slot is constructed with the set of tokens it recognises. Anything else
// found in the file (including a missing or unreadable file) reads as absent.
//
// Thread Safety:
//   - Safe for concurrent readers. Writes rely on atomic rename, so a
//     concurrent reader sees either the old or the new token, never a
//     partial write.
type Slot struct {
	path    string
	allowed []string
}

// NewSlot creates a Slot backed by the file at path, recognising the given
// tokens.
//
// Parameters:
//   - path: Filesystem path of the record
//   - allowed: The tokens this slot recognises (e.g. "open", "closed")
func NewSlot(path string, allowed ...string) *Slot {
	return &Slot{
		path:    path,
		allowed: allowed,
	}
}

// Read returns the token currently held by the record.
//
// Only the first line of the file is considered, matching the
// newline-terminated record format. Trailing whitespace is stripped.
//
// Returns:
//   - string: The token, when present and recognised
//   - error: ErrAbsent if the file is missing, unreadable, or holds an
//     unrecognised token
func (s *Slot) Read() (string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrAbsent, s.path)
	}
	defer f.Close() //nolint:errcheck // Read-only handle

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return "", fmt.Errorf("%w: %s is empty", ErrAbsent, s.path)
	}

	value := strings.TrimSpace(scanner.Text())
	if !slices.Contains(s.allowed, value) {
		return "", fmt.Errorf("%w: %s holds unrecognised value %q", ErrAbsent, s.path, value)
	}

	return value, nil
}

// Write durably replaces the record with the given token.
//
// The token is written newline-terminated to a temporary file in the same
// directory and renamed over the record, so a reader never observes a
// half-written value.
//
// Parameters:
//   - value: The token to persist; must be in the slot's allowed set
//
// Returns:
//   - error: ErrInvalidValue for a token outside the allowed set, or the
//     underlying filesystem error
func (s *Slot) Write(value string) error {
	if !slices.Contains(s.allowed, value) {
		return fmt.Errorf("%w: %q", ErrInvalidValue, value)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return fmt.Errorf("creating record directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp record: %w", err)
	}
	tmpPath := tmp.Name()

	// Clean up the temp file on any failure path.
	cleanup := func() {
		tmp.Close()        //nolint:errcheck // Best effort on error path
		os.Remove(tmpPath) //nolint:errcheck // Best effort on error path
	}

	if _, err := tmp.WriteString(value + "\n"); err != nil {
		cleanup()
		return fmt.Errorf("writing record: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("syncing record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath) //nolint:errcheck // Best effort on error path
		return fmt.Errorf("closing record: %w", err)
	}

	if err := os.Chmod(tmpPath, filePermissions); err != nil {
		os.Remove(tmpPath) //nolint:errcheck // Best effort on error path
		return fmt.Errorf("setting record permissions: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath) //nolint:errcheck // Best effort on error path
		return fmt.Errorf("replacing record: %w", err)
	}

	return nil
}

// Path returns the filesystem path backing this slot.
func (s *Slot) Path() string {
	return s.path
}
