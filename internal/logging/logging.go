// Package logging configures logrus for the updater. Entries go to a rotating
// file under the install root so that a failed run can be inspected later and
// sent to the server admins.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log file names inside the log directory. The replacement helper can run
// while the previous process still writes FileName, so it gets its own file.
const (
	FileName       = "upmc.log"
	HelperFileName = "upmc-helper.log"
)

var (
	mu      sync.Mutex
	logPath string
	rotator *lumberjack.Logger
)

// Init parses level, points logrus at <dir>/<name> and, when verbose is set,
// mirrors entries to stderr.
func Init(dir, name, level string, verbose bool) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parsing log level %q: %w", level, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating log directory %s: %w", dir, err)
	}

	mu.Lock()
	defer mu.Unlock()

	if rotator != nil {
		_ = rotator.Close()
	}
	logPath = filepath.Join(dir, name)
	rotator = &lumberjack.Logger{
		Filename:   filepath.ToSlash(logPath),
		MaxSize:    5, // MB
		MaxBackups: 3,
		MaxAge:     14, // days
	}

	var out io.Writer = rotator
	if verbose {
		out = io.MultiWriter(rotator, os.Stderr)
	}
	log.SetOutput(out)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		DisableColors:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetLevel(lvl)
	return nil
}

// Path returns the active log file, or "" before Init.
func Path() string {
	mu.Lock()
	defer mu.Unlock()
	return logPath
}

// ReadAll returns the current log file contents. Missing files yield "".
func ReadAll() string {
	p := Path()
	if p == "" {
		return ""
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return ""
	}
	return string(data)
}

// Close flushes and releases the log file.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if rotator == nil {
		return nil
	}
	err := rotator.Close()
	rotator = nil
	log.SetOutput(os.Stderr)
	return err
}
