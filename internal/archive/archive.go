// Package archive installs zip archives into the install root.
//
// ExtractStripPrefix flattens runtime and tool archives whose top-level
// folder name is not known in advance. ExtractMerge installs settings
// archives without touching files the player already has.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/chenjicheng/upmc/internal/failure"
)

// Result counts what an extraction did.
type Result struct {
	Written int
	Skipped int
}

// entryName normalizes a zip entry name to forward slashes without a
// leading "./".
func entryName(f *zip.File) string {
	name := strings.ReplaceAll(f.Name, `\`, "/")
	return strings.TrimPrefix(name, "./")
}

// commonPrefix returns the first path segment shared by every entry, or ""
// when entries disagree, a file sits at the top level, or there are none.
func commonPrefix(files []*zip.File) string {
	prefix := ""
	for _, f := range files {
		name := entryName(f)
		if name == "" {
			continue
		}
		first, _, found := strings.Cut(name, "/")
		if first == "" || (!found && !f.FileInfo().IsDir()) {
			return ""
		}
		if prefix == "" {
			prefix = first
		} else if prefix != first {
			return ""
		}
	}
	return prefix
}

// target resolves an entry to a path inside dest, rejecting anything that
// would land outside it.
func target(dest, name string) (string, error) {
	clean := strings.TrimSuffix(name, "/")
	if clean == "" {
		return "", nil
	}
	if !filepath.IsLocal(filepath.FromSlash(clean)) {
		return "", failure.Errorf(failure.Filesystem, "archive entry %q escapes the destination directory", name)
	}
	return filepath.Join(dest, filepath.FromSlash(clean)), nil
}

func open(zipPath string) (*zip.ReadCloser, error) {
	r, err := zip.OpenReader(zipPath)
	if errors.Is(err, zip.ErrInsecurePath) {
		r.Close()
		return nil, failure.WrapPath(err, failure.Filesystem, "archive entry escapes the destination directory", zipPath)
	}
	if err != nil {
		return nil, failure.WrapPath(err, failure.DownloadVerificationFailed, "opening zip archive", zipPath)
	}
	return r, nil
}

// ExtractStripPrefix extracts zipPath into dest. When every entry shares one
// first path segment, that segment is removed from all output paths. Files
// are overwritten unconditionally.
func ExtractStripPrefix(zipPath, dest string) (Result, error) {
	var res Result
	r, err := open(zipPath)
	if err != nil {
		return res, err
	}
	defer r.Close()

	prefix := commonPrefix(r.File)
	if prefix != "" {
		log.WithField("prefix", prefix).Debugf("stripping common prefix from %s", filepath.Base(zipPath))
	}

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return res, failure.WrapPath(err, failure.Filesystem, "creating directory", dest)
	}

	for _, f := range r.File {
		name := entryName(f)
		if prefix != "" {
			name = strings.TrimPrefix(strings.TrimPrefix(name, prefix), "/")
		}
		out, err := target(dest, name)
		if err != nil {
			return res, err
		}
		if out == "" {
			continue
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(out, 0o755); err != nil {
				return res, failure.WrapPath(err, failure.Filesystem, "creating directory", out)
			}
			continue
		}
		if err := writeEntry(f, out); err != nil {
			return res, err
		}
		res.Written++
	}
	return res, nil
}

// ExtractMerge extracts zipPath into dest at literal entry paths, skipping
// any file that already exists. Every entry is checked for path traversal
// before anything is written.
func ExtractMerge(zipPath, dest string) (Result, error) {
	var res Result
	r, err := open(zipPath)
	if err != nil {
		return res, err
	}
	defer r.Close()

	targets := make([]string, len(r.File))
	for i, f := range r.File {
		out, err := target(dest, entryName(f))
		if err != nil {
			return res, err
		}
		targets[i] = out
	}

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return res, failure.WrapPath(err, failure.Filesystem, "creating directory", dest)
	}

	for i, f := range r.File {
		out := targets[i]
		if out == "" {
			continue
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(out, 0o755); err != nil {
				return res, failure.WrapPath(err, failure.Filesystem, "creating directory", out)
			}
			continue
		}
		if _, err := os.Lstat(out); err == nil {
			res.Skipped++
			continue
		}
		if err := writeEntry(f, out); err != nil {
			return res, err
		}
		res.Written++
	}
	return res, nil
}

func writeEntry(f *zip.File, out string) error {
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return failure.WrapPath(err, failure.Filesystem, "creating directory", filepath.Dir(out))
	}
	rc, err := f.Open()
	if err != nil {
		return failure.WrapPath(err, failure.DownloadVerificationFailed, "opening zip entry", f.Name)
	}
	defer rc.Close()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	w, err := os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return failure.WrapPath(err, failure.Filesystem, "creating file", out)
	}
	if _, err := io.Copy(w, rc); err != nil {
		w.Close()
		return failure.WrapPath(err, failure.DownloadVerificationFailed, "extracting", out)
	}
	if err := w.Close(); err != nil {
		return failure.WrapPath(err, failure.Filesystem, "closing", out)
	}
	return nil
}

// RequireMarker checks that rel exists under dest after an extraction. A
// missing marker is reported with kind, so the caller decides whether it is a
// missing runtime or a broken archive.
func RequireMarker(dest, rel string, kind failure.Kind) error {
	p := filepath.Join(dest, rel)
	if _, err := os.Stat(p); err != nil {
		return failure.WrapPath(fmt.Errorf("component missing after extraction: %w", err), kind, "checking", p)
	}
	return nil
}
