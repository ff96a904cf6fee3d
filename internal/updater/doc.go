// Package updater implements self-update for the upmc executable. It checks
// the per-channel version document, downloads and verifies the new build next
// to the running executable, and hands the swap to a helper copy of itself
// that waits for this process to exit, replaces the executable and restarts
// it. Leftovers from a previous swap are removed at startup.
package updater
