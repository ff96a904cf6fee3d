// Package components installs and maintains the game-side pieces of the
// install root: the Fabric loader (through its installer jar), the vanilla
// client it builds on, per-version launcher settings, and the modpack
// content (through packwiz). Operations that run on every start are no-ops
// when the install is already in the wanted state.
package components
