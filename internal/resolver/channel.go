package resolver

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/chenjicheng/upmc/internal/layout"
)

// Channel selects which updater build stream is followed.
type Channel string

const (
	// Stable follows releases and compares semantic versions.
	Stable Channel = "stable"
	// Dev follows the development branch and compares build ids.
	Dev Channel = "dev"
)

// ParseChannel accepts "stable" or "dev", case-insensitively.
func ParseChannel(s string) (Channel, error) {
	switch Channel(strings.ToLower(strings.TrimSpace(s))) {
	case Stable:
		return Stable, nil
	case Dev:
		return Dev, nil
	default:
		return "", fmt.Errorf("unknown channel %q (want stable or dev)", s)
	}
}

// ChannelConfig is the persisted channel selection.
type ChannelConfig struct {
	Channel    Channel `json:"channel"`
	DevBuildID *string `json:"dev_build_id,omitempty"`
}

// Select switches channels. Leaving Dev forgets the installed dev build id
// so that a later switch back to Dev always re-downloads.
func (c *ChannelConfig) Select(ch Channel) {
	if ch == Stable {
		c.DevBuildID = nil
	}
	c.Channel = ch
}

// SetDevBuildID records the dev build that was just installed.
func (c *ChannelConfig) SetDevBuildID(id string) {
	c.DevBuildID = &id
}

// ShortBuildID returns the first seven characters of the dev build id, or "".
func (c ChannelConfig) ShortBuildID() string {
	if c.DevBuildID == nil {
		return ""
	}
	id := *c.DevBuildID
	if len(id) > 7 {
		return id[:7]
	}
	return id
}

// ReadChannelConfig reads <root>/updater/channel.json. Any problem yields the
// default, Stable with no build id.
func ReadChannelConfig(l layout.Layout) ChannelConfig {
	def := ChannelConfig{Channel: Stable}
	data, err := os.ReadFile(l.Channel())
	if err != nil {
		return def
	}
	var c ChannelConfig
	if err := json.Unmarshal(data, &c); err != nil {
		log.WithError(err).Warnf("%s is corrupt, using stable channel", l.Channel())
		return def
	}
	ch, err := ParseChannel(string(c.Channel))
	if err != nil {
		log.WithError(err).Warn("ignoring persisted channel")
		return def
	}
	c.Channel = ch
	if ch == Stable {
		c.DevBuildID = nil
	}
	return c
}

// SaveChannelConfig writes channel.json.
func SaveChannelConfig(l layout.Layout, c ChannelConfig) error {
	return writeJSON(l.Channel(), c)
}
