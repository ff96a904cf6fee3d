// Package layout defines the directory convention of an install root: where
// the launcher, the game directory, the tool jars and the updater's own
// records live. All other packages resolve paths through a Layout.
package layout
