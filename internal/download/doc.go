// Package download fetches remote documents and artifacts over HTTP.
//
// Small documents are read into memory under the short request timeout.
// Artifacts stream to "<dest>.part" under the long download timeout and are
// renamed over dest only after the body was read completely, so an
// interrupted transfer never leaves a truncated file at its final path.
package download
