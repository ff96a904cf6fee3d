package resolver

import (
	"github.com/Masterminds/semver/v3"
	log "github.com/sirupsen/logrus"
)

// IsRemoteNewer reports whether remote is a strictly higher
// MAJOR.MINOR.PATCH than current. Anything that is not three dotted
// integers, including a "v" prefix or a pre-release suffix, makes the
// comparison false.
func IsRemoteNewer(current, remote string) bool {
	cv, cerr := parseStrict(current)
	rv, rerr := parseStrict(remote)
	if cerr != nil || rerr != nil {
		log.WithFields(log.Fields{
			"current": current,
			"remote":  remote,
		}).Warn("unparseable updater version, skipping self-update")
		return false
	}
	return rv.GreaterThan(cv)
}

// IsDevBuildStale reports whether the remote dev build differs from the
// installed one. A remote without a build id never triggers an update.
func IsDevBuildStale(remoteBuildID, localBuildID *string) bool {
	if remoteBuildID == nil || *remoteBuildID == "" {
		return false
	}
	if localBuildID == nil {
		return true
	}
	return *remoteBuildID != *localBuildID
}

type versionError string

func (e versionError) Error() string { return "not a MAJOR.MINOR.PATCH version: " + string(e) }

func parseStrict(s string) (*semver.Version, error) {
	v, err := semver.StrictNewVersion(s)
	if err != nil {
		return nil, err
	}
	if v.Prerelease() != "" || v.Metadata() != "" {
		return nil, versionError(s)
	}
	return v, nil
}
