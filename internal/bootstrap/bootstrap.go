// Package bootstrap performs the first-run install: it creates the directory
// skeleton and downloads every component that is missing from the install
// root. Components that already exist are never downloaded again, so an
// interrupted first run resumes where it stopped.
package bootstrap

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/chenjicheng/upmc/internal/archive"
	"github.com/chenjicheng/upmc/internal/branding"
	"github.com/chenjicheng/upmc/internal/download"
	"github.com/chenjicheng/upmc/internal/failure"
	"github.com/chenjicheng/upmc/internal/layout"
	"github.com/chenjicheng/upmc/internal/manifest"
	"github.com/chenjicheng/upmc/internal/platform"
	"github.com/chenjicheng/upmc/internal/progress"
	"github.com/chenjicheng/upmc/internal/resolver"
	"github.com/chenjicheng/upmc/internal/retry"
)

// Needs reports whether any component required to run is missing.
func Needs(l layout.Layout) bool {
	for _, p := range []string{l.Launcher(), l.ContentTool(), l.Installer()} {
		if !layout.Exists(p) {
			return true
		}
	}
	return false
}

// IsBootstrapped reports whether the launcher is installed, which is enough
// to play offline.
func IsBootstrapped(l layout.Layout) bool {
	return layout.Exists(l.Launcher())
}

// Bootstrapper downloads missing components.
type Bootstrapper struct {
	layout layout.Layout
	client *download.Client
	policy retry.Policy
}

// New creates a Bootstrapper.
func New(l layout.Layout, client *download.Client, policy retry.Policy) *Bootstrapper {
	return &Bootstrapper{layout: l, client: client, policy: policy}
}

// Run installs whatever is missing. Progress is reported in the 12-50 band.
func (b *Bootstrapper) Run(ctx context.Context, remote resolver.RemoteState, report progress.Func) error {
	l := b.layout

	report(12, "Creating directories...")
	for _, dir := range l.Skeleton() {
		if err := os.MkdirAll(dir, layout.DirPerm); err != nil {
			return failure.WrapPath(err, failure.Filesystem, "creating directory", dir)
		}
	}

	if err := b.installRuntime(ctx, remote, report); err != nil {
		return fmt.Errorf("installing Java runtime: %w", err)
	}
	if err := b.installLauncher(ctx, remote, report); err != nil {
		return fmt.Errorf("installing launcher: %w", err)
	}
	report(38, "Launcher ready")

	jars := []struct {
		key   string
		dest  string
		label string
		from  int
		to    int
	}{
		{manifest.KeyContentTool, l.ContentTool(), "content sync tool", 39, 42},
		{manifest.KeyComponentInstaller, l.Installer(), "Fabric installer", 43, 46},
	}
	for _, j := range jars {
		if layout.Exists(j.dest) {
			continue
		}
		u, err := requireURL(remote, j.key, j.label)
		if err != nil {
			return err
		}
		report(j.from, "Downloading "+j.label+"...")
		if err := b.fetch(ctx, u, j.dest, j.label, j.from, j.to, report); err != nil {
			return fmt.Errorf("installing %s: %w", j.label, err)
		}
	}
	report(46, "Tools ready")

	if !layout.Exists(l.LauncherSetup()) {
		report(47, "Configuring launcher...")
		if err := os.WriteFile(l.LauncherSetup(), []byte(LauncherSetup(branding.DisplayName())), layout.FilePerm); err != nil {
			return failure.WrapPath(err, failure.Filesystem, "writing", l.LauncherSetup())
		}
	}

	if err := b.installSettings(ctx, remote, report); err != nil {
		return fmt.Errorf("installing default settings: %w", err)
	}

	report(50, "First-run install complete")
	return nil
}

func (b *Bootstrapper) installRuntime(ctx context.Context, remote resolver.RemoteState, report progress.Func) error {
	u := remote.Download(manifest.KeyRuntime)
	if u == "" || layout.Exists(b.layout.BundledJava()) {
		return nil
	}

	report(13, "Downloading Java runtime...")
	zipPath := filepath.Join(b.layout.Updater(), "runtime-download.zip")
	err := b.fetchArchive(ctx, u, zipPath, "Java runtime", 13, 28, report, func() error {
		report(29, "Extracting Java runtime...")
		// A previous attempt may have left part of another archive behind.
		if err := os.RemoveAll(b.layout.Runtime()); err != nil {
			return failure.WrapPath(err, failure.Filesystem, "clearing", b.layout.Runtime())
		}
		res, err := archive.ExtractStripPrefix(zipPath, b.layout.Runtime())
		if err != nil {
			return err
		}
		log.WithField("files", res.Written).Info("Java runtime extracted")
		return archive.RequireMarker(b.layout.Runtime(), layout.JavaBinary(), failure.ComponentRuntimeMissing)
	})
	if err != nil {
		return err
	}
	java := b.layout.BundledJava()
	if err := platform.MakeExecutable(java); err != nil {
		return failure.WrapPath(err, failure.Filesystem, "marking executable", java)
	}
	return nil
}

func (b *Bootstrapper) installLauncher(ctx context.Context, remote resolver.RemoteState, report progress.Func) error {
	if layout.Exists(b.layout.Launcher()) {
		return nil
	}
	u, err := requireURL(remote, manifest.KeyLauncher, "launcher")
	if err != nil {
		return err
	}

	report(31, "Downloading launcher...")
	if !isZipURL(u) {
		return b.fetch(ctx, u, b.layout.Launcher(), "launcher", 31, 37, report)
	}

	zipPath := filepath.Join(b.layout.Updater(), "launcher-download.zip")
	return b.fetchArchive(ctx, u, zipPath, "launcher", 31, 36, report, func() error {
		report(37, "Extracting launcher...")
		if _, err := archive.ExtractStripPrefix(zipPath, b.layout.Root); err != nil {
			return err
		}
		return archive.RequireMarker(b.layout.Root, layout.LauncherExe, failure.Filesystem)
	})
}

// installSettings applies the default settings archive once. The marker is
// written even when no archive is configured so that a settings archive
// added later never overwrites an established install.
func (b *Bootstrapper) installSettings(ctx context.Context, remote resolver.RemoteState, report progress.Func) error {
	marker := b.layout.SettingsMarker()
	if layout.Exists(marker) {
		return nil
	}

	if u := remote.Download(manifest.KeySettings); u != "" {
		report(48, "Downloading default settings...")
		zipPath := filepath.Join(b.layout.Updater(), "settings-download.zip")
		err := b.fetchArchive(ctx, u, zipPath, "default settings", 48, 49, report, func() error {
			report(49, "Applying default settings...")
			res, err := archive.ExtractMerge(zipPath, b.layout.Game())
			if err != nil {
				return err
			}
			log.WithFields(log.Fields{"written": res.Written, "kept": res.Skipped}).Info("default settings applied")
			return nil
		})
		if err != nil {
			return err
		}
	}

	if err := os.WriteFile(marker, []byte("installed"), layout.FilePerm); err != nil {
		return failure.WrapPath(err, failure.Filesystem, "writing", marker)
	}
	return nil
}

func (b *Bootstrapper) fetch(ctx context.Context, u, dest, label string, from, to int, report progress.Func) error {
	cb := progress.Bytes(report, "Downloading "+label+"...", from, to)
	return retry.Run(ctx, b.policy, "downloading "+label, func() error {
		_, err := b.client.ToFile(ctx, u, dest, cb)
		return err
	})
}

// fetchArchive downloads u to zipPath and runs unpack on it as one retried
// unit, so a corrupt archive is downloaded again. The archive is removed
// once the unit finishes, whether or not it succeeded.
func (b *Bootstrapper) fetchArchive(ctx context.Context, u, zipPath, label string, from, to int, report progress.Func, unpack func() error) error {
	defer os.Remove(zipPath)
	cb := progress.Bytes(report, "Downloading "+label+"...", from, to)
	return retry.Run(ctx, b.policy, "installing "+label, func() error {
		if _, err := b.client.ToFile(ctx, u, zipPath, cb); err != nil {
			return err
		}
		if err := unpack(); err != nil {
			os.Remove(zipPath)
			return err
		}
		return nil
	})
}

func requireURL(remote resolver.RemoteState, key, what string) (string, error) {
	u := remote.Download(key)
	if u == "" {
		return "", failure.Errorf(failure.RemoteDataMalformed,
			"the %s is missing and the server manifest has no downloads.%s", what, key)
	}
	return u, nil
}

func isZipURL(raw string) bool {
	p := raw
	if parsed, err := url.Parse(raw); err == nil {
		p = parsed.Path
	}
	return strings.EqualFold(filepath.Ext(p), ".zip")
}
