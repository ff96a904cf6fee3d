package updater

import (
	"github.com/chenjicheng/upmc/internal/manifest"
	"github.com/chenjicheng/upmc/internal/resolver"
)

// IsUpdateAvailable applies the channel rule: stable compares versions,
// dev compares build ids against the one recorded in cfg.
func IsUpdateAvailable(cfg resolver.ChannelConfig, currentVersion string, info *manifest.UpdaterInfo) bool {
	if info == nil {
		return false
	}
	if cfg.Channel == resolver.Dev {
		return resolver.IsDevBuildStale(info.BuildID, cfg.DevBuildID)
	}
	return resolver.IsRemoteNewer(currentVersion, info.Version)
}
