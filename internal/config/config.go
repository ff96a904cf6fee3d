package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/viper"

	"github.com/chenjicheng/upmc/internal/branding"
	"github.com/chenjicheng/upmc/internal/retry"
)

const fileType = "yaml"

// Setting keys.
const (
	KeyManifestURL          = "manifest_url"
	KeyUpdaterVersionURL    = "updater_version_url"
	KeyUpdaterDevVersionURL = "updater_dev_version_url"
	KeyVanillaManifestURL   = "vanilla_manifest_url"
	KeyJavaDownloadURL      = "java_download_url"
	KeyHTTPTimeout          = "http_timeout"
	KeyDownloadTimeout      = "download_timeout"
	KeyRetryAttempts        = "retry_attempts"
	KeyRetryBaseDelay       = "retry_base_delay"
	KeyLogLevel             = "log_level"
)

// Settings is the resolved configuration for one run.
type Settings struct {
	ManifestURL          string
	UpdaterVersionURL    string
	UpdaterDevVersionURL string
	VanillaManifestURL   string
	JavaDownloadURL      string
	HTTPTimeout          time.Duration
	DownloadTimeout      time.Duration
	Retry                retry.Policy
	LogLevel             string
}

func defaults() map[string]any {
	def := retry.DefaultPolicy()
	return map[string]any{
		KeyManifestURL:          branding.ManifestURL(),
		KeyUpdaterVersionURL:    branding.UpdaterVersionURL(),
		KeyUpdaterDevVersionURL: branding.UpdaterDevVersionURL(),
		KeyVanillaManifestURL:   branding.VanillaManifestURL(),
		KeyJavaDownloadURL:      branding.JavaDownloadURL(),
		KeyHTTPTimeout:          "30s",
		KeyDownloadTimeout:      "600s",
		KeyRetryAttempts:        def.MaxAttempts,
		KeyRetryBaseDelay:       def.BaseDelay.String(),
		KeyLogLevel:             "info",
	}
}

// Keys returns every known setting key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(defaults()))
	for k := range defaults() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(fileType)
	v.SetEnvPrefix(branding.EnvPrefix())
	v.AutomaticEnv()
	for k, val := range defaults() {
		v.SetDefault(k, val)
	}
	return v
}

// Load reads the settings file at path (it need not exist) and the environment.
func Load(path string) (*Settings, error) {
	v := newViper(path)
	if err := read(v, path); err != nil {
		return nil, err
	}

	s := &Settings{
		ManifestURL:          v.GetString(KeyManifestURL),
		UpdaterVersionURL:    v.GetString(KeyUpdaterVersionURL),
		UpdaterDevVersionURL: v.GetString(KeyUpdaterDevVersionURL),
		VanillaManifestURL:   v.GetString(KeyVanillaManifestURL),
		JavaDownloadURL:      v.GetString(KeyJavaDownloadURL),
		HTTPTimeout:          v.GetDuration(KeyHTTPTimeout),
		DownloadTimeout:      v.GetDuration(KeyDownloadTimeout),
		Retry: retry.Policy{
			MaxAttempts: v.GetInt(KeyRetryAttempts),
			BaseDelay:   v.GetDuration(KeyRetryBaseDelay),
		},
		LogLevel: v.GetString(KeyLogLevel),
	}
	if s.Retry.MaxAttempts < 1 {
		return nil, fmt.Errorf("%s must be at least 1, got %d", KeyRetryAttempts, s.Retry.MaxAttempts)
	}
	if s.HTTPTimeout <= 0 || s.DownloadTimeout <= 0 {
		return nil, fmt.Errorf("%s and %s must be positive durations", KeyHTTPTimeout, KeyDownloadTimeout)
	}
	return s, nil
}

// Get returns a setting by key as a string. Unknown keys are an error.
func Get(path, key string) (string, error) {
	if !known(key) {
		return "", fmt.Errorf("unknown setting %q", key)
	}
	v := newViper(path)
	if err := read(v, path); err != nil {
		return "", err
	}
	return v.GetString(key), nil
}

// Set writes a setting to the file at path, creating it if needed.
func Set(path, key, value string) error {
	if !known(key) {
		return fmt.Errorf("unknown setting %q", key)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", filepath.Dir(path), err)
	}

	// Start from the file only so that defaults and env values are not persisted.
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(fileType)
	if err := read(v, path); err != nil {
		return err
	}
	v.Set(key, value)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func read(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	return nil
}

func known(key string) bool {
	_, ok := defaults()[key]
	return ok
}
