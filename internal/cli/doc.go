// Package cli defines the Cobra command tree for upmc. Running the root
// command performs a full update and starts the launcher; the subcommands
// inspect and adjust the install. Commands delegate to internal packages and
// only handle flags, wiring and output.
package cli
