package components

import (
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/chenjicheng/upmc/internal/failure"
	"github.com/chenjicheng/upmc/internal/layout"
)

const (
	isolationKey   = "VersionArgumentIndieV2:"
	isolationOn    = isolationKey + "True"
	isolationOff   = isolationKey + "False"
	launcherSubdir = "PCL"
	versionINI     = "Setup.ini"
)

// FixIsolation turns off per-version isolation for versionTag in the
// launcher's version settings, so the game uses .minecraft/mods where
// packwiz installs content. The launcher may re-enable it when it first sees
// a version, so this runs on every start.
func (i *Installer) FixIsolation(versionTag string) error {
	dir := filepath.Join(i.layout.VersionDir(versionTag), launcherSubdir)
	path := filepath.Join(dir, versionINI)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(dir, layout.DirPerm); err != nil {
			return failure.WrapPath(err, failure.Filesystem, "creating directory", dir)
		}
		return writeINI(path, isolationOff+"\n")
	}
	if err != nil {
		return failure.WrapPath(err, failure.Filesystem, "reading", path)
	}

	content := string(data)
	switch {
	case strings.Contains(content, isolationOn):
		log.WithField("version", versionTag).Info("disabling version isolation")
		return writeINI(path, strings.ReplaceAll(content, isolationOn, isolationOff))
	case strings.Contains(content, isolationKey):
		return nil
	default:
		if content != "" && !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		return writeINI(path, content+isolationOff+"\n")
	}
}

func writeINI(path, content string) error {
	if err := os.WriteFile(path, []byte(content), layout.FilePerm); err != nil {
		return failure.WrapPath(err, failure.Filesystem, "writing", path)
	}
	return nil
}
