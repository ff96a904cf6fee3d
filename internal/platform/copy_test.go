package platform

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestCopyFile_KeepsMode(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "src")
	dst := filepath.Join(tmp, "dst")
	if err := os.WriteFile(src, []byte("payload"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dst, []byte("older and longer content"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile failed: %v", err)
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "payload" {
		t.Errorf("dst content = %q, want %q", data, "payload")
	}
	if runtime.GOOS != "windows" {
		info, _ := os.Stat(dst)
		if perm := info.Mode().Perm(); perm != 0755 {
			t.Errorf("dst permissions = %o, want 755", perm)
		}
	}
}

func TestCopyFile_MissingSource(t *testing.T) {
	tmp := t.TempDir()
	if err := CopyFile(filepath.Join(tmp, "nope"), filepath.Join(tmp, "dst")); err == nil {
		t.Error("expected error for missing source")
	}
}

func TestCopyFile_FailureLeavesDestination(t *testing.T) {
	tmp := t.TempDir()
	dst := filepath.Join(tmp, "dst")
	if err := os.WriteFile(dst, []byte("old-binary"), 0755); err != nil {
		t.Fatal(err)
	}

	// A directory opens but is not a file that can be copied.
	if err := CopyFile(tmp, dst); err == nil {
		t.Fatal("expected error copying a directory")
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "old-binary" {
		t.Errorf("dst content = %q, want old-binary", data)
	}
	if _, err := os.Stat(dst + SwapSuffix); !os.IsNotExist(err) {
		t.Error("swap file should not exist")
	}
}

func TestCopyFile_RenameFailureRemovesSwap(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("rename semantics differ on Windows")
	}
	tmp := t.TempDir()
	src := filepath.Join(tmp, "src")
	os.WriteFile(src, []byte("payload"), 0755)
	// A non-empty directory cannot be replaced by a file.
	dst := filepath.Join(tmp, "dst")
	if err := os.MkdirAll(filepath.Join(dst, "busy"), 0755); err != nil {
		t.Fatal(err)
	}

	if err := CopyFile(src, dst); err == nil {
		t.Fatal("expected rename error")
	}
	if _, err := os.Stat(dst + SwapSuffix); !os.IsNotExist(err) {
		t.Error("swap file should be removed after a failed rename")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk error") }

func TestWriteSynced_ReadError(t *testing.T) {
	out, err := os.Create(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatal(err)
	}
	if err := writeSynced(out, failingReader{}); err == nil {
		t.Fatal("expected read error")
	}
	if err := out.Close(); err == nil {
		t.Error("file should already be closed")
	}
}

func TestRemoveIfExists(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "f")
	if err := RemoveIfExists(path); err != nil {
		t.Errorf("missing file should not be an error: %v", err)
	}
	os.WriteFile(path, []byte("x"), 0644)
	if err := RemoveIfExists(path); err != nil {
		t.Fatalf("RemoveIfExists failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file should be gone")
	}
}
