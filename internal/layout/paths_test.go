package layout

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultRoot_EnvOverride(t *testing.T) {
	t.Setenv("UPMC_INSTALL_DIR", "/tmp/test-install")
	root, err := DefaultRoot()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if root != "/tmp/test-install" {
		t.Errorf("expected /tmp/test-install, got %s", root)
	}
}

func TestDefaultRoot_Documents(t *testing.T) {
	t.Setenv("UPMC_INSTALL_DIR", "")
	root, err := DefaultRoot()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if !strings.HasPrefix(root, filepath.Join(home, "Documents")) {
		t.Errorf("expected root under Documents, got %s", root)
	}
}

func TestLayoutPaths(t *testing.T) {
	l := New("/games/pack")
	tests := []struct {
		got, want string
	}{
		{l.LocalState(), filepath.Join("/games/pack", "updater", "local.json")},
		{l.Channel(), filepath.Join("/games/pack", "updater", "channel.json")},
		{l.SettingsMarker(), filepath.Join("/games/pack", "updater", ".settings_installed")},
		{l.Mods(), filepath.Join("/games/pack", ".minecraft", "mods")},
		{l.VersionDir("1.21.11"), filepath.Join("/games/pack", ".minecraft", "versions", "1.21.11")},
		{l.ContentTool(), filepath.Join("/games/pack", "updater", "packwiz-installer-bootstrap.jar")},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %s, want %s", tt.got, tt.want)
		}
	}
}

func TestCheck_FixCreatesSkeleton(t *testing.T) {
	l := New(t.TempDir())
	var buf bytes.Buffer

	problems, err := Check(&buf, l, true)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	// Skeleton fixed; launcher, jars and local record are still missing.
	if problems != 4 {
		t.Errorf("expected 4 remaining problems, got %d\n%s", problems, buf.String())
	}
	for _, dir := range l.Skeleton() {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("expected %s to be created", dir)
		}
	}
	if !strings.Contains(buf.String(), "[FIX ]") {
		t.Errorf("expected fix lines in output:\n%s", buf.String())
	}
}
