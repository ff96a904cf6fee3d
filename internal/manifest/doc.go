// Package manifest decodes the remote documents that describe the target
// state: the server manifest (JSON), the content index it points to (TOML),
// and the per-channel updater version document (JSON). JSON documents are
// validated against embedded JSON schemas before decoding so that a broken
// server file is reported with the offending field instead of a zero value.
package manifest
