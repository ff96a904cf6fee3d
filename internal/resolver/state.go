package resolver

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/chenjicheng/upmc/internal/failure"
	"github.com/chenjicheng/upmc/internal/layout"
	"github.com/chenjicheng/upmc/internal/manifest"
)

// RemoteState is the target state fetched once per run. It is never persisted.
type RemoteState struct {
	// Versions holds the component version tags from the content index,
	// e.g. {"minecraft": "1.21.11", "fabric": "0.18.4"}.
	Versions        map[string]string
	ContentIndexURL string
	// Downloads maps manifest download keys to URLs. Missing keys have no URL.
	Downloads map[string]string
}

// Minecraft returns the game version.
func (r RemoteState) Minecraft() string { return r.Versions[manifest.VersionMinecraft] }

// Fabric returns the loader version.
func (r RemoteState) Fabric() string { return r.Versions[manifest.VersionFabric] }

// VersionTag returns the name of the loader's version folder,
// "fabric-loader-<fabric>-<minecraft>".
func (r RemoteState) VersionTag() string {
	return VersionTag(r.Minecraft(), r.Fabric())
}

// Download returns the URL for a manifest download key, or "".
func (r RemoteState) Download(key string) string {
	return r.Downloads[key]
}

// VersionTag builds the loader version folder name.
func VersionTag(minecraft, fabric string) string {
	return fmt.Sprintf("fabric-loader-%s-%s", fabric, minecraft)
}

// LocalState records the component tags that were fully installed.
type LocalState struct {
	Versions map[string]string `json:"versions"`
}

// localFile is the on-disk form. The flat fields are read for installs made
// by older updaters and are never written.
type localFile struct {
	Versions      map[string]string `json:"versions,omitempty"`
	MCVersion     string            `json:"mc_version,omitempty"`
	FabricVersion string            `json:"fabric_version,omitempty"`
}

// LocalFromRemote returns the LocalState that records remote as installed.
func LocalFromRemote(remote RemoteState) LocalState {
	v := make(map[string]string, len(remote.Versions))
	for k, tag := range remote.Versions {
		v[k] = tag
	}
	return LocalState{Versions: v}
}

// ReadLocalState reads <root>/updater/local.json. A missing or unreadable
// file yields an empty state, which forces the upgrade path.
func ReadLocalState(l layout.Layout) LocalState {
	path := l.LocalState()
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.WithError(err).Warnf("reading %s, treating install as empty", path)
		} else {
			log.Debugf("%s not found, treating install as empty", path)
		}
		return LocalState{Versions: map[string]string{}}
	}

	var f localFile
	if err := json.Unmarshal(data, &f); err != nil {
		log.WithError(err).Warnf("%s is corrupt, treating install as empty", path)
		return LocalState{Versions: map[string]string{}}
	}

	state := LocalState{Versions: f.Versions}
	if state.Versions == nil {
		state.Versions = map[string]string{}
		if f.MCVersion != "" {
			state.Versions[manifest.VersionMinecraft] = f.MCVersion
		}
		if f.FabricVersion != "" {
			state.Versions[manifest.VersionFabric] = f.FabricVersion
		}
	}
	return state
}

// SaveLocalState writes the full record. It goes to a temp file first and is
// renamed over local.json so that a crash never leaves half a record.
func SaveLocalState(l layout.Layout, state LocalState) error {
	return writeJSON(l.LocalState(), state)
}

// NeedsComponentUpgrade reports whether any tracked version tag differs. The
// tracked keys are the union of both states' keys.
func NeedsComponentUpgrade(remote RemoteState, local LocalState) bool {
	for _, k := range unionKeys(remote.Versions, local.Versions) {
		if remote.Versions[k] != local.Versions[k] {
			return true
		}
	}
	return false
}

func unionKeys(a, b map[string]string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var keys []string
	for _, m := range []map[string]string{a, b} {
		for k := range m {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), layout.DirPerm); err != nil {
		return failure.WrapPath(err, failure.Filesystem, "creating directory", filepath.Dir(path))
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return failure.Wrap(err, failure.Internal, "encoding "+filepath.Base(path))
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, layout.FilePerm); err != nil {
		return failure.WrapPath(err, failure.Filesystem, "writing", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return failure.WrapPath(err, failure.Filesystem, "replacing", path)
	}
	return nil
}
