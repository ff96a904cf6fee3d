//go:build !windows

package runtime

import "syscall"

func hiddenAttr() *syscall.SysProcAttr {
	return nil
}

// detachedAttr puts the child in its own session so that it outlives this
// process and its terminal.
func detachedAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}
