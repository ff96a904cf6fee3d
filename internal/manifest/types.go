package manifest

import "fmt"

// Download keys of the server manifest. The same names are used in error
// messages so that operators can find the field to fix.
const (
	KeyRuntime            = "runtimeURL"
	KeyLauncher           = "launcherURL"
	KeyContentTool        = "contentToolURL"
	KeyComponentInstaller = "componentInstallerURL"
	KeySettings           = "settingsURL"
)

// Version keys of the content index.
const (
	VersionMinecraft = "minecraft"
	VersionFabric    = "fabric"
)

// Server is the small manifest fetched first on every run.
type Server struct {
	ContentIndexURL string    `json:"contentIndexURL"`
	Downloads       Downloads `json:"downloads"`
}

// Downloads lists the artifact URLs used by the first-run bootstrap. Any of
// them may be empty.
type Downloads struct {
	RuntimeURL            string `json:"runtimeURL,omitempty"`
	LauncherURL           string `json:"launcherURL,omitempty"`
	ContentToolURL        string `json:"contentToolURL,omitempty"`
	ComponentInstallerURL string `json:"componentInstallerURL,omitempty"`
	SettingsURL           string `json:"settingsURL,omitempty"`
}

// Map returns the downloads keyed by manifest key. Empty URLs are omitted.
func (d Downloads) Map() map[string]string {
	m := make(map[string]string, 5)
	add := func(k, v string) {
		if v != "" {
			m[k] = v
		}
	}
	add(KeyRuntime, d.RuntimeURL)
	add(KeyLauncher, d.LauncherURL)
	add(KeyContentTool, d.ContentToolURL)
	add(KeyComponentInstaller, d.ComponentInstallerURL)
	add(KeySettings, d.SettingsURL)
	return m
}

// ContentIndex is the part of the packwiz pack.toml the updater reads.
type ContentIndex struct {
	Name     string            `toml:"name"`
	Version  string            `toml:"version"`
	Versions map[string]string `toml:"versions"`
}

// UpdaterInfo is the per-channel self-update document.
type UpdaterInfo struct {
	Version     string  `json:"version"`
	DownloadURL string  `json:"download_url"`
	BuildID     *string `json:"build_id,omitempty"`
}

// String implements fmt.Stringer.
func (u UpdaterInfo) String() string {
	if u.BuildID != nil {
		return fmt.Sprintf("%s (build %s)", u.Version, *u.BuildID)
	}
	return u.Version
}
