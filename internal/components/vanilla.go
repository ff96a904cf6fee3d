package components

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/chenjicheng/upmc/internal/failure"
	"github.com/chenjicheng/upmc/internal/layout"
	"github.com/chenjicheng/upmc/internal/retry"
)

type versionManifest struct {
	Versions []struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	} `json:"versions"`
}

type versionJSON struct {
	Downloads struct {
		Client struct {
			URL string `json:"url"`
		} `json:"client"`
	} `json:"downloads"`
}

// EnsureVanilla makes sure versions/<mc>/<mc>.json and <mc>.jar exist. The
// launcher needs the vanilla client next to the Fabric version that inherits
// from it. Nothing is fetched when both files are present.
func (i *Installer) EnsureVanilla(ctx context.Context, mcVersion string) error {
	dir := i.layout.VersionDir(mcVersion)
	jsonPath := filepath.Join(dir, mcVersion+".json")
	jarPath := filepath.Join(dir, mcVersion+".jar")

	if layout.Exists(jsonPath) && layout.Exists(jarPath) {
		return nil
	}
	if err := os.MkdirAll(dir, layout.DirPerm); err != nil {
		return failure.WrapPath(err, failure.Filesystem, "creating directory", dir)
	}

	if !layout.Exists(jsonPath) {
		if err := i.fetchVersionJSON(ctx, mcVersion, jsonPath); err != nil {
			return err
		}
	}

	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		return failure.WrapPath(err, failure.Filesystem, "reading", jsonPath)
	}
	var v versionJSON
	if err := json.Unmarshal(raw, &v); err != nil || v.Downloads.Client.URL == "" {
		// A broken file would block every later run; drop it so the next run refetches.
		os.Remove(jsonPath)
		return failure.Errorf(failure.RemoteDataMalformed, "version JSON for %s has no client download", mcVersion)
	}

	log.WithField("minecraft", mcVersion).Info("downloading vanilla client")
	return retry.Run(ctx, i.policy, "downloading Minecraft "+mcVersion+" client", func() error {
		_, err := i.client.ToFile(ctx, v.Downloads.Client.URL, jarPath, nil)
		return err
	})
}

func (i *Installer) fetchVersionJSON(ctx context.Context, mcVersion, dest string) error {
	if i.vanillaManifestURL == "" {
		return failure.New(failure.RemoteDataMalformed, "no vanilla version manifest URL configured")
	}

	var manifest versionManifest
	err := retry.Run(ctx, i.policy, "fetching Minecraft version manifest", func() error {
		return i.client.GetJSON(ctx, i.vanillaManifestURL, &manifest)
	})
	if err != nil {
		return err
	}

	url := ""
	for _, v := range manifest.Versions {
		if v.ID == mcVersion {
			url = v.URL
			break
		}
	}
	if url == "" {
		return failure.Errorf(failure.RemoteDataMalformed, "Minecraft version %s not found in the version manifest", mcVersion)
	}

	raw, err := retry.Do(ctx, i.policy, "fetching Minecraft "+mcVersion+" version JSON", func() ([]byte, error) {
		return i.client.GetBytes(ctx, url)
	})
	if err != nil {
		return err
	}
	if !json.Valid(raw) {
		return failure.Errorf(failure.RemoteDataMalformed, "version JSON for %s is not valid JSON", mcVersion)
	}

	tmp := dest + ".tmp"
	if err := os.WriteFile(tmp, raw, layout.FilePerm); err != nil {
		return failure.WrapPath(err, failure.Filesystem, "writing", tmp)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return failure.WrapPath(err, failure.Filesystem, "replacing", dest)
	}
	return nil
}
