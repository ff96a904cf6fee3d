package layout

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/chenjicheng/upmc/internal/branding"
)

// Directory and file names relative to the install root.
const (
	UpdaterDir         = "updater"
	GameDir            = ".minecraft"
	VersionsDir        = "versions"
	ModsDir            = "mods"
	ConfigDir          = "config"
	RuntimeDir         = "runtime"
	LogDir             = "logs"
	LauncherExe        = "Plain Craft Launcher 2.exe"
	LauncherSetupINI   = "Setup.ini"
	LocalStateFile     = "local.json"
	ChannelFile        = "channel.json"
	SettingsMarkerFile = ".settings_installed"
	SettingsFile       = "config.yaml"
	ContentToolJar     = "packwiz-installer-bootstrap.jar"
	InstallerJar       = "fabric-installer.jar"
)

// Permission constants.
const (
	DirPerm  os.FileMode = 0o755
	FilePerm os.FileMode = 0o644
)

// Layout resolves well-known paths inside one install root.
type Layout struct {
	Root string
}

// New returns the layout anchored at root.
func New(root string) Layout {
	return Layout{Root: root}
}

// DefaultRoot returns the install root. It checks the UPMC_INSTALL_DIR
// environment variable first, then falls back to ~/Documents/<install dir name>.
func DefaultRoot() (string, error) {
	if v := os.Getenv(branding.EnvVar("install_dir")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, "Documents", branding.InstallDirName()), nil
}

// Updater returns <root>/updater, home of the updater's own records.
func (l Layout) Updater() string { return filepath.Join(l.Root, UpdaterDir) }

// Game returns the managed game directory, <root>/.minecraft.
func (l Layout) Game() string { return filepath.Join(l.Root, GameDir) }

// Versions returns <root>/.minecraft/versions.
func (l Layout) Versions() string { return filepath.Join(l.Game(), VersionsDir) }

// Mods returns <root>/.minecraft/mods.
func (l Layout) Mods() string { return filepath.Join(l.Game(), ModsDir) }

// Runtime returns the bundled Java runtime directory.
func (l Layout) Runtime() string { return filepath.Join(l.Root, RuntimeDir) }

// BundledJava returns the java executable inside the bundled runtime.
func (l Layout) BundledJava() string {
	return filepath.Join(l.Runtime(), JavaBinary())
}

// Launcher returns the primary launcher executable.
func (l Layout) Launcher() string { return filepath.Join(l.Root, LauncherExe) }

// LauncherSetup returns the launcher's global Setup.ini.
func (l Layout) LauncherSetup() string { return filepath.Join(l.Root, LauncherSetupINI) }

// LocalState returns the local component version record.
func (l Layout) LocalState() string { return filepath.Join(l.Updater(), LocalStateFile) }

// Channel returns the persisted channel selection.
func (l Layout) Channel() string { return filepath.Join(l.Updater(), ChannelFile) }

// SettingsMarker returns the sentinel written once the first-run settings were applied.
func (l Layout) SettingsMarker() string { return filepath.Join(l.Updater(), SettingsMarkerFile) }

// Settings returns the optional operator settings file.
func (l Layout) Settings() string { return filepath.Join(l.Updater(), SettingsFile) }

// Logs returns the log directory.
func (l Layout) Logs() string { return filepath.Join(l.Updater(), LogDir) }

// ContentTool returns the packwiz bootstrap jar.
func (l Layout) ContentTool() string { return filepath.Join(l.Updater(), ContentToolJar) }

// Installer returns the Fabric installer jar.
func (l Layout) Installer() string { return filepath.Join(l.Updater(), InstallerJar) }

// VersionDir returns the folder of one installed version inside .minecraft/versions.
func (l Layout) VersionDir(id string) string { return filepath.Join(l.Versions(), id) }

// JavaBinary returns the runtime-relative path of the java executable.
func JavaBinary() string {
	if runtime.GOOS == "windows" {
		return filepath.Join("bin", "java.exe")
	}
	return filepath.Join("bin", "java")
}

// Exists reports whether path exists. Stat errors other than not-exist count as present
// so that a permission problem surfaces later as a real error instead of a reinstall.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !os.IsNotExist(err)
}
