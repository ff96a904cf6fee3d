package platform

import (
	"fmt"
	"os"
	"runtime"
)

// Chmod sets permission bits. Windows has no Unix permission bits, so it is
// a no-op there.
func Chmod(path string, mode os.FileMode) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	return os.Chmod(path, mode)
}

// MakeExecutable adds the execute bits wherever read is granted. Archives
// built on Windows carry no Unix modes, so extracted binaries need this.
func MakeExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	perm := info.Mode().Perm()
	return Chmod(path, perm|(perm&0o444)>>2)
}
