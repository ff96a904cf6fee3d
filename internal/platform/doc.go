// Package platform hides the operating-system differences the updater cares
// about: permission bits, file copies that keep the executable bit, and the
// magic bytes that identify a native executable for the running OS.
package platform
