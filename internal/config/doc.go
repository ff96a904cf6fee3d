// Package config manages operator settings stored at <root>/updater/config.yaml.
// Every key can also be set through an UPMC_-prefixed environment variable;
// unset keys fall back to the branding defaults baked into the binary.
package config
