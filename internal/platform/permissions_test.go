package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestChmod(t *testing.T) {
	path := filepath.Join(t.TempDir(), "java")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Chmod(path, 0o600); err != nil {
		t.Fatalf("Chmod failed: %v", err)
	}
	if runtime.GOOS == "windows" {
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("permissions = %o, want %o", perm, 0o600)
	}
}

func TestMakeExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no execute bits on Windows")
	}
	tests := []struct {
		name string
		from os.FileMode
		want os.FileMode
	}{
		{"world readable", 0o644, 0o755},
		{"owner only", 0o600, 0o700},
		{"already executable", 0o755, 0o755},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "java")
			if err := os.WriteFile(path, []byte("x"), tt.from); err != nil {
				t.Fatal(err)
			}
			if err := os.Chmod(path, tt.from); err != nil {
				t.Fatal(err)
			}
			if err := MakeExecutable(path); err != nil {
				t.Fatalf("MakeExecutable failed: %v", err)
			}
			info, err := os.Stat(path)
			if err != nil {
				t.Fatal(err)
			}
			if perm := info.Mode().Perm(); perm != tt.want {
				t.Errorf("permissions = %o, want %o", perm, tt.want)
			}
		})
	}
}

func TestMakeExecutable_Missing(t *testing.T) {
	if err := MakeExecutable(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing file")
	}
}
