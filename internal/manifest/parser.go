package manifest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/chenjicheng/upmc/internal/failure"
)

// ParseServer validates and decodes the server manifest.
func ParseServer(data []byte) (*Server, error) {
	if err := validateAs(SchemaServer, data); err != nil {
		return nil, err
	}
	var s Server
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, failure.Wrap(err, failure.RemoteDataMalformed, "decoding server manifest")
	}
	return &s, nil
}

// ParseUpdaterInfo validates and decodes a self-update document.
func ParseUpdaterInfo(data []byte) (*UpdaterInfo, error) {
	if err := validateAs(SchemaUpdater, data); err != nil {
		return nil, err
	}
	var info UpdaterInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, failure.Wrap(err, failure.RemoteDataMalformed, "decoding updater version document")
	}
	if info.BuildID != nil && strings.TrimSpace(*info.BuildID) == "" {
		info.BuildID = nil
	}
	return &info, nil
}

// ParseContentIndex decodes a packwiz pack.toml and returns its [versions]
// table. Both minecraft and fabric must be present and non-empty.
func ParseContentIndex(data []byte) (*ContentIndex, error) {
	var idx ContentIndex
	if _, err := toml.Decode(string(data), &idx); err != nil {
		return nil, failure.Wrap(err, failure.RemoteDataMalformed, "parsing content index")
	}
	for _, key := range []string{VersionMinecraft, VersionFabric} {
		if strings.TrimSpace(idx.Versions[key]) == "" {
			return nil, failure.Errorf(failure.RemoteDataMalformed, "content index has no %s version in [versions]", key)
		}
	}
	return &idx, nil
}

func validateAs(schemaName string, data []byte) error {
	result, err := Validate(schemaName, data)
	if err != nil {
		return failure.Wrap(err, failure.RemoteDataMalformed, "validating "+schemaName)
	}
	if !result.Valid {
		return failure.Wrap(fmt.Errorf("%s", result.String()), failure.RemoteDataMalformed, "validating "+schemaName)
	}
	return nil
}
