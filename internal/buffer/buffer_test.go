package buffer

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestNewRejectsEmpty(t *testing.T) {
	if _, err := New("x.bin", nil); !errors.Is(err, ErrEmpty) {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
}

func TestGetSet(t *testing.T) {
	b, err := New("x.bin", []byte{0x41, 0x42, 0x43})
	if err != nil {
		t.Fatal(err)
	}

	if err := b.Set(1, 0xFF); err != nil {
		t.Fatal(err)
	}
	if val, err := b.Get(1); err != nil || val != 0xFF {
		t.Errorf("expected 0xFF at offset 1, got %02X (%v)", val, err)
	}
	if !b.Modified() {
		t.Error("expected Modified to be true")
	}
	if b.Len() != 3 {
		t.Errorf("expected length 3, got %d", b.Len())
	}
}

func TestGetSetOutOfRange(t *testing.T) {
	b, _ := New("x.bin", []byte{0x01, 0x02})

	for _, off := range []int{-1, 2, 100} {
		if _, err := b.Get(off); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Get(%d): expected ErrOutOfRange, got %v", off, err)
		}
		if err := b.Set(off, 0); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Set(%d): expected ErrOutOfRange, got %v", off, err)
		}
	}
	if b.Modified() {
		t.Error("rejected writes must not mark the buffer modified")
	}
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.bin"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestOpenEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.bin")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); !errors.Is(err, ErrEmpty) {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
}

func TestOpenAndSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	testData := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	if err := os.WriteFile(path, testData, 0600); err != nil {
		t.Fatal(err)
	}

	b, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if b.Len() != 5 {
		t.Errorf("expected length 5, got %d", b.Len())
	}

	b.Set(2, 0xFF)
	if err := b.Save(); err != nil {
		t.Fatal(err)
	}
	if b.Modified() {
		t.Error("expected Modified to be false after save")
	}

	b2, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b2.Bytes(), b.Bytes()) {
		t.Errorf("reloaded %v, want %v", b2.Bytes(), b.Bytes())
	}
	if b2.Len() != b.Len() {
		t.Errorf("reloaded length %d, want %d", b2.Len(), b.Len())
	}

	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode().Perm() != 0600 {
		t.Errorf("expected mode 0600 preserved, got %v", fi.Mode().Perm())
	}
}

func TestSaveFailureLeavesTargetIntact(t *testing.T) {
	dir := t.TempDir()
	b, _ := New(filepath.Join(dir, "missing", "data.bin"), []byte{0x01})

	if err := b.Save(); err == nil {
		t.Fatal("expected error saving into a missing directory")
	}
	if val, _ := b.Get(0); val != 0x01 {
		t.Errorf("buffer changed after failed save: %02X", val)
	}
}

func TestSaveThroughSymlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.bin")
	link := filepath.Join(dir, "link.bin")
	if err := os.WriteFile(target, []byte{0x01, 0x02, 0x03}, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	b, err := Open(link)
	if err != nil {
		t.Fatal(err)
	}
	b.Set(0, 0xFF)
	if err := b.Save(); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte{0xFF, 0x02, 0x03}) {
		t.Errorf("target = % X, want FF 02 03", got)
	}
	fi, err := os.Lstat(link)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode()&os.ModeSymlink == 0 {
		t.Error("save replaced the symlink with a regular file")
	}
	if changed, err := b.ChangedOnDisk(); err != nil || changed {
		t.Errorf("ChangedOnDisk() = %v, %v after save", changed, err)
	}
}

func TestSaveKeepsHardLinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("link counts are not reported on windows")
	}
	dir := t.TempDir()
	first := filepath.Join(dir, "first.bin")
	second := filepath.Join(dir, "second.bin")
	if err := os.WriteFile(first, []byte{0x01, 0x02, 0x03}, 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.Link(first, second); err != nil {
		t.Skipf("hard links unavailable: %v", err)
	}

	b, err := Open(first)
	if err != nil {
		t.Fatal(err)
	}
	b.Set(2, 0xAA)
	if err := b.Save(); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{first, second} {
		got, err := os.ReadFile(name)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, []byte{0x01, 0x02, 0xAA}) {
			t.Errorf("%s = % X, want 01 02 AA", filepath.Base(name), got)
		}
	}
	fi1, _ := os.Stat(first)
	fi2, _ := os.Stat(second)
	if !os.SameFile(fi1, fi2) {
		t.Error("save split the hard links apart")
	}
	if fi1.Mode().Perm() != 0600 {
		t.Errorf("mode = %v, want 0600", fi1.Mode().Perm())
	}
}

func TestChangedOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	os.WriteFile(path, []byte("abc"), 0644)

	b, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if changed, err := b.ChangedOnDisk(); err != nil || changed {
		t.Errorf("expected unchanged, got %v (%v)", changed, err)
	}

	os.WriteFile(path, []byte("abd"), 0644)
	if changed, err := b.ChangedOnDisk(); err != nil || !changed {
		t.Errorf("expected changed, got %v (%v)", changed, err)
	}
}

func TestFind(t *testing.T) {
	b, _ := New("x", []byte("Hello, World! World"))

	if pos := b.Find([]byte("World"), 0); pos != 7 {
		t.Errorf("expected position 7, got %d", pos)
	}
	if pos := b.Find([]byte("World"), 8); pos != 14 {
		t.Errorf("expected position 14, got %d", pos)
	}
	if pos := b.Find([]byte("xyz"), 0); pos != -1 {
		t.Errorf("expected -1 for not found, got %d", pos)
	}
	if pos := b.Find(nil, 0); pos != -1 {
		t.Errorf("expected -1 for empty pattern, got %d", pos)
	}
}

func TestFindLast(t *testing.T) {
	b, _ := New("x", []byte("abcabcabc"))

	tests := []struct {
		before int
		want   int
	}{
		{9, 6},
		{6, 3},
		{4, 3},
		{3, 0},
		{1, 0},
		{0, -1},
	}
	for _, tt := range tests {
		if got := b.FindLast([]byte("abc"), tt.before); got != tt.want {
			t.Errorf("FindLast(before=%d) = %d, want %d", tt.before, got, tt.want)
		}
	}
}

func TestCountMatches(t *testing.T) {
	b, _ := New("x", []byte("ababab"))

	if count := b.CountMatches([]byte("ab")); count != 3 {
		t.Errorf("expected 3 matches, got %d", count)
	}
	if count := b.CountMatches([]byte("aba")); count != 2 {
		t.Errorf("expected 2 overlapping matches, got %d", count)
	}
}
