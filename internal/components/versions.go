package components

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"

	"github.com/chenjicheng/upmc/internal/failure"
)

// PurgeVersions removes every directory under versionsDir whose name is not
// in keep. Loose files are left alone. All removals are attempted; the
// failures are reported together.
func PurgeVersions(versionsDir string, keep ...string) error {
	entries, err := os.ReadDir(versionsDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return failure.WrapPath(err, failure.Filesystem, "reading versions directory", versionsDir)
	}

	kept := make(map[string]bool, len(keep))
	for _, k := range keep {
		kept[k] = true
	}

	var result *multierror.Error
	for _, e := range entries {
		if !e.IsDir() || kept[e.Name()] {
			continue
		}
		path := filepath.Join(versionsDir, e.Name())
		if err := os.RemoveAll(path); err != nil {
			result = multierror.Append(result, err)
			continue
		}
		log.Infof("removed old version %s", e.Name())
	}
	if err := result.ErrorOrNil(); err != nil {
		return failure.WrapPath(err, failure.Filesystem, "removing old versions", versionsDir)
	}
	return nil
}

// ClearMods deletes the *.jar files directly inside modsDir. They belong to
// the previous game version and are re-synced by packwiz.
func ClearMods(modsDir string) error {
	entries, err := os.ReadDir(modsDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return failure.WrapPath(err, failure.Filesystem, "reading mods directory", modsDir)
	}

	var result *multierror.Error
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".jar") {
			continue
		}
		if err := os.Remove(filepath.Join(modsDir, e.Name())); err != nil {
			result = multierror.Append(result, err)
			continue
		}
		removed++
	}
	log.WithField("count", removed).Info("cleared old mods")
	if err := result.ErrorOrNil(); err != nil {
		return failure.WrapPath(err, failure.Filesystem, "clearing mods", modsDir)
	}
	return nil
}
