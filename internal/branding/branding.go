// Package branding provides compile-time identity values for the updater.
//
// Server operators edit branding.yaml before building; Go's //go:embed bakes
// it into the binary so a single executable can be handed to players.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName              string `yaml:"cli_name"`
	DisplayName          string `yaml:"display_name"`
	Description          string `yaml:"description"`
	InstallDirName       string `yaml:"install_dir_name"`
	EnvPrefix            string `yaml:"env_prefix"`
	ManifestURL          string `yaml:"manifest_url"`
	UpdaterVersionURL    string `yaml:"updater_version_url"`
	UpdaterDevVersionURL string `yaml:"updater_dev_version_url"`
	VanillaManifestURL   string `yaml:"vanilla_manifest_url"`
	JavaDownloadURL      string `yaml:"java_download_url"`
}

func load() {
	once.Do(func() {
		// Hard defaults in case the embedded file is missing or empty.
		defaults = brand{
			CLIName:            "upmc",
			DisplayName:        "upmc",
			Description:        "Modpack installer and launcher updater",
			InstallDirName:     "upmc",
			EnvPrefix:          "UPMC",
			VanillaManifestURL: "https://piston-meta.mojang.com/mc/game/version_manifest_v2.json",
			JavaDownloadURL:    "https://adoptium.net/temurin/releases/?version=21",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "upmc").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name shown to players.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// InstallDirName returns the directory name created under the user's Documents folder.
func InstallDirName() string { load(); return defaults.InstallDirName }

// EnvPrefix returns the environment variable prefix (e.g., "UPMC").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// ManifestURL returns the default remote server manifest URL.
func ManifestURL() string { load(); return defaults.ManifestURL }

// UpdaterVersionURL returns the stable channel self-update document URL.
func UpdaterVersionURL() string { load(); return defaults.UpdaterVersionURL }

// UpdaterDevVersionURL returns the dev channel self-update document URL.
func UpdaterDevVersionURL() string { load(); return defaults.UpdaterDevVersionURL }

// VanillaManifestURL returns the Mojang version manifest URL.
func VanillaManifestURL() string { load(); return defaults.VanillaManifestURL }

// JavaDownloadURL returns the page opened when no Java runtime can be found.
func JavaDownloadURL() string { load(); return defaults.JavaDownloadURL }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("install_dir") → "UPMC_INSTALL_DIR".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
