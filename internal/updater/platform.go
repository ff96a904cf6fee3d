package updater

import (
	"context"
	"strconv"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/chenjicheng/upmc/internal/platform"
)

// HelperCommand is the hidden subcommand that runs the replacement helper.
const HelperCommand = "replace-helper"

// Sibling file suffixes used during a swap.
const (
	stagedSuffix = ".new"
	oldSuffix    = ".old"
	helperSuffix = ".helper"
)

// StagedPath is where a downloaded build waits to be swapped in.
func StagedPath(exe string) string { return exe + stagedSuffix }

// OldPath is the backup name used by earlier swap schemes.
func OldPath(exe string) string { return exe + oldSuffix }

// HelperPath is the copy of the running executable that performs the swap.
func HelperPath(exe string) string { return exe + helperSuffix }

// SwapPath is the partial copy written while a swap is in progress.
func SwapPath(exe string) string { return exe + platform.SwapSuffix }

// HelperArgs returns the arguments that start the helper for one swap.
func HelperArgs(pid int, source, target string) []string {
	return []string{
		HelperCommand,
		"--pid", strconv.Itoa(pid),
		"--source", source,
		"--target", target,
	}
}

const pollInterval = 100 * time.Millisecond

// waitForExit polls until pid is gone or timeout expires. A timeout is
// returned as context.DeadlineExceeded.
func waitForExit(ctx context.Context, pid int32, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		alive, err := process.PidExistsWithContext(ctx, pid)
		if err != nil {
			return err
		}
		if !alive {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
