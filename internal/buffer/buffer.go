package buffer

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var (
	ErrEmpty      = errors.New("file is empty")
	ErrOutOfRange = errors.New("offset out of range")
)

// Buffer holds a whole file in memory. Its length never changes after load;
// edits overwrite bytes in place.
type Buffer struct {
	filename     string
	data         []byte
	originalHash string
	modified     bool
}

func New(filename string, data []byte) (*Buffer, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	return &Buffer{
		filename:     filename,
		data:         data,
		originalHash: hashOf(data),
	}, nil
}

func Open(filename string) (*Buffer, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}

	b, err := New(filename, data)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filename, err)
	}
	return b, nil
}

func hashOf(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (b *Buffer) Filename() string {
	return b.filename
}

func (b *Buffer) Modified() bool {
	return b.modified
}

func (b *Buffer) Len() int {
	return len(b.data)
}

// Bytes returns the live backing slice. Callers must not retain it across edits.
func (b *Buffer) Bytes() []byte {
	return b.data
}

func (b *Buffer) Get(offset int) (byte, error) {
	if offset < 0 || offset >= len(b.data) {
		return 0, fmt.Errorf("%w: %d (length %d)", ErrOutOfRange, offset, len(b.data))
	}
	return b.data[offset], nil
}

func (b *Buffer) Set(offset int, value byte) error {
	if offset < 0 || offset >= len(b.data) {
		return fmt.Errorf("%w: %d (length %d)", ErrOutOfRange, offset, len(b.data))
	}
	b.data[offset] = value
	b.modified = true
	return nil
}

// ChangedOnDisk reports whether the file differs from what was last loaded or saved.
func (b *Buffer) ChangedOnDisk() (bool, error) {
	if b.filename == "" {
		return false, nil
	}

	data, err := os.ReadFile(b.filename)
	if err != nil {
		return false, err
	}
	return hashOf(data) != b.originalHash, nil
}

func (b *Buffer) Save() error {
	if b.filename == "" {
		return fmt.Errorf("no filename set")
	}

	if err := writeAtomic(b.filename, b.data); err != nil {
		return err
	}

	b.originalHash = hashOf(b.data)
	b.modified = false
	return nil
}

// writeAtomic writes data to a sibling temp file and renames it over path,
// so the target is either fully replaced or left untouched. Symlinks are
// followed to the real file. A file with other hard links is rewritten in
// place, since a rename would detach it from them.
func writeAtomic(path string, data []byte) error {
	if real, err := filepath.EvalSymlinks(path); err == nil {
		path = real
	}

	perm := os.FileMode(0644)
	if fi, err := os.Stat(path); err == nil {
		perm = fi.Mode().Perm()
		if linkCount(fi) > 1 {
			return writeInPlace(path, data, perm)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func writeInPlace(path string, data []byte, perm os.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// Find returns the first offset >= from where pattern starts, or -1.
func (b *Buffer) Find(pattern []byte, from int) int {
	if len(pattern) == 0 || from < 0 || from >= len(b.data) {
		return -1
	}
	i := bytes.Index(b.data[from:], pattern)
	if i < 0 {
		return -1
	}
	return from + i
}

// FindLast returns the last offset < before where pattern starts, or -1.
func (b *Buffer) FindLast(pattern []byte, before int) int {
	if len(pattern) == 0 || before <= 0 {
		return -1
	}
	// A match starting at before-1 may extend past before.
	end := before - 1 + len(pattern)
	if end > len(b.data) {
		end = len(b.data)
	}
	return bytes.LastIndex(b.data[:end], pattern)
}

func (b *Buffer) CountMatches(pattern []byte) int {
	if len(pattern) == 0 || len(b.data) == 0 {
		return 0
	}

	count := 0
	for i := 0; i <= len(b.data)-len(pattern); i++ {
		if bytes.Equal(b.data[i:i+len(pattern)], pattern) {
			count++
		}
	}
	return count
}
