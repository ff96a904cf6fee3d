package platform

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"runtime"
)

// ExecutableMagic returns the accepted two-byte headers of a native
// executable for goos. An unknown OS accepts any non-empty file.
func ExecutableMagic(goos string) [][]byte {
	switch goos {
	case "windows":
		return [][]byte{[]byte("MZ")}
	case "darwin":
		// Mach-O 64-bit little-endian and universal (fat) binaries.
		return [][]byte{{0xcf, 0xfa}, {0xca, 0xfe}}
	case "linux", "freebsd", "openbsd", "netbsd":
		return [][]byte{{0x7f, 'E'}}
	default:
		return nil
	}
}

// CheckExecutable verifies that path is non-empty and starts with one of the
// magic headers for the running OS.
func CheckExecutable(path string) error {
	return checkExecutable(path, ExecutableMagic(runtime.GOOS))
}

func checkExecutable(path string, magics [][]byte) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	head := make([]byte, 2)
	n, err := io.ReadFull(f, head)
	if n == 0 {
		return fmt.Errorf("%s is empty", path)
	}
	if err != nil && len(magics) > 0 {
		return fmt.Errorf("%s is too short to be an executable", path)
	}
	if len(magics) == 0 {
		return nil
	}
	for _, m := range magics {
		if bytes.Equal(head, m) {
			return nil
		}
	}
	return fmt.Errorf("%s does not look like a %s executable (header %x)", path, runtime.GOOS, head[:n])
}
