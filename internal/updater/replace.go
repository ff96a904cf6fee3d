package updater

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"

	"github.com/chenjicheng/upmc/internal/platform"
	"github.com/chenjicheng/upmc/internal/runtime"
)

// scheduleReplace copies the running executable to HelperPath and starts it
// detached. The helper takes over once this process exits.
func (a *Agent) scheduleReplace(staged string) error {
	helper := HelperPath(a.exe)
	if err := platform.CopyFile(a.exe, helper); err != nil {
		return fmt.Errorf("preparing helper: %w", err)
	}
	cmd := runtime.Cmd{Path: helper, Args: HelperArgs(a.pid, staged, a.exe), Env: a.env}
	if err := a.runner.Start(cmd); err != nil {
		platform.RemoveIfExists(helper)
		return fmt.Errorf("starting helper: %w", err)
	}
	log.WithField("helper", cmd.String()).Info("replacement helper started")
	return nil
}

// Helper replaces Target with Source once the process PID has exited, then
// starts Target.
type Helper struct {
	PID    int
	Source string
	Target string

	WaitTimeout  time.Duration
	Settle       time.Duration
	CopyAttempts int
	CopyDelay    time.Duration

	wait  func(ctx context.Context, pid int32, timeout time.Duration) error
	start func(path string) error
	sleep func(time.Duration)
}

// NewHelper returns a Helper with the standard timings. The target is
// started through runner.
func NewHelper(pid int, source, target string, runner runtime.Runner) *Helper {
	return &Helper{
		PID:          pid,
		Source:       source,
		Target:       target,
		WaitTimeout:  30 * time.Second,
		Settle:       500 * time.Millisecond,
		CopyAttempts: 3,
		CopyDelay:    time.Second,
		wait:         waitForExit,
		start: func(path string) error {
			return runner.Start(runtime.Cmd{Path: path})
		},
		sleep: time.Sleep,
	}
}

// Run performs the swap. The target is started whether or not the copy
// succeeded, so a failed update still leaves the player with a working
// program. The copy error, if any, is returned after the start.
func (h *Helper) Run(ctx context.Context) error {
	logger := log.WithFields(log.Fields{"pid": h.PID, "source": h.Source, "target": h.Target})

	if err := h.wait(ctx, int32(h.PID), h.WaitTimeout); err != nil {
		logger.WithError(err).Warn("previous process did not exit in time, replacing anyway")
	}
	h.sleep(h.Settle)

	copyErr := h.copyWithRetry(ctx)
	if copyErr != nil {
		logger.WithError(copyErr).Error("replacing executable failed, keeping the current build")
	} else {
		if err := platform.RemoveIfExists(h.Source); err != nil {
			logger.WithError(err).Warn("could not remove staged build")
		}
		logger.Info("executable replaced")
	}

	if err := h.start(h.Target); err != nil {
		logger.WithError(err).Error("restarting updater failed")
		if copyErr == nil {
			return fmt.Errorf("starting %s: %w", h.Target, err)
		}
	}
	return copyErr
}

func (h *Helper) copyWithRetry(ctx context.Context) error {
	attempts := h.CopyAttempts
	if attempts < 1 {
		attempts = 1
	}
	var b backoff.BackOff = backoff.NewConstantBackOff(h.CopyDelay)
	b = backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx)

	n := 0
	err := backoff.RetryNotify(func() error {
		n++
		return platform.CopyFile(h.Source, h.Target)
	}, b, func(err error, next time.Duration) {
		log.WithError(err).WithField("attempt", n).Warnf("copy failed, retrying in %s", next)
	})
	if err != nil {
		return fmt.Errorf("copying %s over %s after %d attempts: %w", h.Source, h.Target, n, err)
	}
	return nil
}
