package platform

import (
	"fmt"
	"io"
	"os"
)

// SwapSuffix names the sibling file CopyFile writes before renaming it over
// the destination.
const SwapSuffix = ".swap"

// CopyFile copies src over dst, keeping src's permission bits. The data is
// written to dst+SwapSuffix, synced and renamed into place, so dst is either
// fully replaced or left untouched.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("copying %s: not a regular file", src)
	}

	swap := dst + SwapSuffix
	out, err := os.OpenFile(swap, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("creating %s: %w", swap, err)
	}
	if err := writeSynced(out, in); err != nil {
		os.Remove(swap)
		return fmt.Errorf("copying to %s: %w", swap, err)
	}

	// OpenFile only applies the mode on creation.
	if err := Chmod(swap, info.Mode().Perm()); err != nil {
		os.Remove(swap)
		return err
	}
	if err := os.Rename(swap, dst); err != nil {
		os.Remove(swap)
		return fmt.Errorf("renaming %s to %s: %w", swap, dst, err)
	}
	return nil
}

func writeSynced(out *os.File, in io.Reader) error {
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// RemoveIfExists deletes path. A missing path is not an error.
func RemoveIfExists(path string) error {
	err := os.Remove(path)
	if err == nil || os.IsNotExist(err) {
		return nil
	}
	return err
}
