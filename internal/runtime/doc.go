// Package runtime runs the external programs the updater depends on: Java
// tools that install the loader and sync content, and detached launches of
// the launcher and the replacement helper. The Runner interface lets tests
// substitute fakes for every process the pipeline starts.
package runtime
