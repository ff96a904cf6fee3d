// Package resolver decides what the install root should look like. It fetches
// the remote target state, reads and writes the local records under
// <root>/updater, and owns the comparison rules: component tags by equality,
// stable updater versions by strict MAJOR.MINOR.PATCH ordering and dev
// builds by build id.
package resolver
